package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmap-backend/domain/core/entities"
)

const fixtureYAML = `
nodes:
  - id: frontend
    name: Frontend
    level: domain
    domain_id: frontend
    child_ids: [react]
    domain:
      course_count: 1
      total_hours: 12
  - id: react
    name: React Fundamentals
    level: course
    parent_id: frontend
    domain_id: frontend
    estimated_hours: 12
    course:
      difficulty: beginner
      chapter_count: 4
      skills: [react, jsx]
connections:
  - from_id: frontend
    to_id: react
    type: contains
  - from_id: react
    to_id: hooks
    type: prerequisite
    label: needed first
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGraph(t *testing.T) {
	repo := NewGraphRepository(writeFixture(t, fixtureYAML), nil)

	nodes, connections, err := repo.LoadGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Len(t, connections, 2)

	course := nodes["react"]
	require.NotNil(t, course)
	assert.Equal(t, entities.LevelCourse, course.Level)
	assert.Equal(t, "frontend", course.ParentID)
	assert.Equal(t, entities.StatusActive, course.Status, "status defaults to active")
	require.NotNil(t, course.Course)
	assert.Equal(t, entities.DifficultyBeginner, course.Course.Difficulty)
	assert.Equal(t, []string{"react", "jsx"}, course.Course.Skills)

	assert.Equal(t, entities.ConnectionContains, connections[0].Type)
	assert.Equal(t, "needed first", connections[1].Label)
}

func TestLoadGraph_DuplicateID(t *testing.T) {
	fixture := `
nodes:
  - id: a
    name: A
    level: course
  - id: a
    name: A again
    level: course
`
	repo := NewGraphRepository(writeFixture(t, fixture), nil)

	_, _, err := repo.LoadGraph(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node id")
}

func TestLoadGraph_MissingFile(t *testing.T) {
	repo := NewGraphRepository(filepath.Join(t.TempDir(), "absent.yaml"), nil)

	_, _, err := repo.LoadGraph(context.Background())
	assert.Error(t, err)
}
