package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmap-backend/domain/core/entities"
	"skillmap-backend/domain/services"
	pkgerrors "skillmap-backend/pkg/errors"
)

type fixedStats struct {
	segments []entities.PathSegment
}

func (f *fixedStats) NodeStats(string) (entities.NodeStats, bool) { return entities.NodeStats{}, false }
func (f *fixedStats) Segments() []entities.PathSegment            { return f.segments }

func testAnalyzer() *services.PathAnalyzer {
	nodes := map[string]*entities.Node{
		"a": {ID: "a", Name: "Intro", Level: entities.LevelCourse, DomainID: "backend", EstimatedHours: 2},
		"b": {ID: "b", Name: "APIs", Level: entities.LevelCourse, DomainID: "backend", EstimatedHours: 4},
		"c": {ID: "c", Name: "Scaling", Level: entities.LevelCourse, DomainID: "backend", EstimatedHours: 6},
	}
	connections := []entities.Connection{
		{FromID: "a", ToID: "b", Type: entities.ConnectionNext},
		{FromID: "b", ToID: "c", Type: entities.ConnectionNext},
	}
	source := &fixedStats{segments: []entities.PathSegment{
		{FromID: "a", ToID: "b", Frequency: 12, SuccessRate: 0.9},
	}}
	return services.NewPathAnalyzer(nodes, connections, nil, services.DefaultPathAnalysisOptions(), source, nil)
}

func TestGetOptimalPath_Query(t *testing.T) {
	handler := NewPathQueryHandler(testAnalyzer(), nil, nil)

	result, err := handler.GetOptimalPath(context.Background(), &GetOptimalPathQuery{FromID: "a", ToID: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result.NodeIDs)
	assert.InDelta(t, 10.0, result.EstimatedHours, 1e-9)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestGetOptimalPath_Query_Errors(t *testing.T) {
	handler := NewPathQueryHandler(testAnalyzer(), nil, nil)

	_, err := handler.GetOptimalPath(context.Background(), &GetOptimalPathQuery{FromID: "a"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = handler.GetOptimalPath(context.Background(), &GetOptimalPathQuery{FromID: "a", ToID: "missing"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGetPopularNextSteps_Query(t *testing.T) {
	handler := NewPathQueryHandler(testAnalyzer(), nil, nil)

	steps, err := handler.GetPopularNextSteps(context.Background(), &GetNextStepsQuery{NodeID: "a"})
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "b", steps[0].NodeID)
	assert.Equal(t, 12, steps[0].Frequency)
	assert.InDelta(t, 0.9, steps[0].SuccessRate, 1e-9)
}

func TestGetCommonPrerequisites_Query(t *testing.T) {
	handler := NewPathQueryHandler(testAnalyzer(), nil, nil)

	steps, err := handler.GetCommonPrerequisites(context.Background(), &GetNextStepsQuery{NodeID: "b"})
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "a", steps[0].NodeID)

	_, err = handler.GetCommonPrerequisites(context.Background(), &GetNextStepsQuery{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestGetPathSuggestions_Query(t *testing.T) {
	handler := NewPathQueryHandler(testAnalyzer(), nil, nil)

	suggestions, err := handler.GetPathSuggestions(context.Background(), &GetPathSuggestionsQuery{
		CurrentID: "a",
		GoalID:    "c",
	})
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "popular", suggestions[0].Kind)
	assert.Equal(t, "b", suggestions[0].NodeID)

	_, err = handler.GetPathSuggestions(context.Background(), &GetPathSuggestionsQuery{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestGetCompletionStats_Query(t *testing.T) {
	handler := NewPathQueryHandler(testAnalyzer(), nil, nil)

	stats, err := handler.GetCompletionStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UniquePaths)
}
