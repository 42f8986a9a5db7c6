package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.InDelta(t, 0.35, cfg.Similarity.TagOverlap, 1e-9)
	assert.Equal(t, 10, cfg.Path.MaxPathDepth)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("PATH_MAX_DEPTH", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, 4, cfg.Path.MaxPathDepth)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := `
similarity:
  tag_overlap: 0.5
  dependency_distance: 0.2
  domain_proximity: 0.1
  level_alignment: 0.1
  content_type_similarity: 0.1
path:
  min_path_frequency: 3
  max_path_depth: 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	overrides, err := LoadOverrides(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, overrides.Similarity.TagOverlap, 1e-9)
	assert.Equal(t, 3, overrides.Path.MinPathFrequency)
	assert.Equal(t, 6, overrides.Path.MaxPathDepth)
}

func TestLoadOverrides_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("similarity: ["), 0o644))

	_, err := LoadOverrides(path)
	assert.Error(t, err)
}
