package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeOverrides(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOverridesWatcher_NotifiesListenersOnReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	writeOverrides(t, path, "path:\n  min_path_frequency: 2\n")

	watcher, err := NewOverridesWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	received := make(chan *Overrides, 1)
	watcher.OnChange(func(o *Overrides) { received <- o })

	writeOverrides(t, path, "path:\n  min_path_frequency: 7\n")
	watcher.handleChange()

	select {
	case overrides := <-received:
		assert.Equal(t, 7, overrides.Path.MinPathFrequency)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload notification received")
	}
	assert.Equal(t, 7, watcher.Current().Path.MinPathFrequency)
}

func TestOverridesWatcher_KeepsCurrentOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	writeOverrides(t, path, "path:\n  min_path_frequency: 2\n")

	watcher, err := NewOverridesWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	writeOverrides(t, path, "path: [not valid\n")
	watcher.handleChange()

	assert.Equal(t, 2, watcher.Current().Path.MinPathFrequency)
}
