package queries

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"skillmap-backend/domain/services"
	pkgerrors "skillmap-backend/pkg/errors"
	"skillmap-backend/pkg/observability"
)

// GetOptimalPathQuery asks for the best route between two nodes.
type GetOptimalPathQuery struct {
	FromID       string   `json:"from_id" validate:"required"`
	ToID         string   `json:"to_id" validate:"required"`
	CompletedIDs []string `json:"completed_ids"`
}

// OptimalPathResult describes the computed route.
type OptimalPathResult struct {
	NodeIDs        []string `json:"node_ids"`
	EstimatedHours float64  `json:"estimated_hours"`
	Confidence     float64  `json:"confidence"`
}

// GetPathSuggestionsQuery asks for composite next-step suggestions.
type GetPathSuggestionsQuery struct {
	CurrentID    string   `json:"current_id" validate:"required"`
	CompletedIDs []string `json:"completed_ids"`
	GoalID       string   `json:"goal_id"`
	Limit        int      `json:"limit"`
}

// PathSuggestionResult is one suggestion entry.
type PathSuggestionResult struct {
	Kind   string `json:"kind"`
	NodeID string `json:"node_id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// GetNextStepsQuery asks for ranked observed transitions out of (or into) a
// node.
type GetNextStepsQuery struct {
	NodeID string `json:"node_id" validate:"required"`
	Limit  int    `json:"limit"`
}

// PathStepResult is one ranked transition.
type PathStepResult struct {
	NodeID             string  `json:"node_id"`
	Name               string  `json:"name"`
	Frequency          int     `json:"frequency"`
	AverageTimeMinutes float64 `json:"average_time_minutes"`
	SuccessRate        float64 `json:"success_rate"`
}

// GetHiddenGemsQuery asks for underexplored high-value content.
type GetHiddenGemsQuery struct {
	CompletedIDs []string `json:"completed_ids"`
	Limit        int      `json:"limit"`
}

// HiddenGemResult is one hidden-gem entry.
type HiddenGemResult struct {
	NodeID   string  `json:"node_id"`
	Name     string  `json:"name"`
	GemScore float64 `json:"gem_score"`
	Reason   string  `json:"reason"`
}

// CompletionStatsResult mirrors the analyzer's aggregate statistics.
type CompletionStatsResult struct {
	TotalCompletions  int     `json:"total_completions"`
	UniquePaths       int     `json:"unique_paths"`
	AvgCompletionRate float64 `json:"avg_completion_rate"`
}

// PathQueryHandler serves the path-side read queries.
type PathQueryHandler struct {
	analyzer *services.PathAnalyzer
	validate *validator.Validate
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewPathQueryHandler creates a new handler.
func NewPathQueryHandler(
	analyzer *services.PathAnalyzer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PathQueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PathQueryHandler{
		analyzer: analyzer,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

// GetOptimalPath computes the best route between two nodes. Returns a
// not-found error when no connecting path exists.
func (h *PathQueryHandler) GetOptimalPath(ctx context.Context, q *GetOptimalPathQuery) (result *OptimalPathResult, err error) {
	start := time.Now()
	defer func() { h.observe("get_optimal_path", start, err) }()

	if err = h.validate.Struct(q); err != nil {
		return nil, pkgerrors.NewValidation(err.Error())
	}

	path := h.analyzer.ComputeOptimalPath(q.FromID, q.ToID, q.CompletedIDs)
	if path == nil {
		err = pkgerrors.NewNotFound("path between nodes")
		return nil, err
	}

	result = &OptimalPathResult{
		NodeIDs:        make([]string, 0, len(path.Nodes)),
		EstimatedHours: path.EstimatedHours,
		Confidence:     path.Confidence,
	}
	for _, node := range path.Nodes {
		result.NodeIDs = append(result.NodeIDs, node.ID)
	}

	return result, nil
}

// GetPathSuggestions composes next-step suggestions for a learner.
func (h *PathQueryHandler) GetPathSuggestions(ctx context.Context, q *GetPathSuggestionsQuery) (results []PathSuggestionResult, err error) {
	start := time.Now()
	defer func() { h.observe("get_path_suggestions", start, err) }()

	if err = h.validate.Struct(q); err != nil {
		return nil, pkgerrors.NewValidation(err.Error())
	}

	suggestions := h.analyzer.GetPathSuggestions(q.CurrentID, q.CompletedIDs, q.GoalID, q.Limit)
	results = make([]PathSuggestionResult, 0, len(suggestions))
	for _, s := range suggestions {
		results = append(results, PathSuggestionResult{
			Kind:   string(s.Kind),
			NodeID: s.Node.ID,
			Name:   s.Node.Name,
			Reason: s.Reason,
		})
	}

	return results, nil
}

// GetPopularNextSteps returns the most frequent observed transitions out of
// a node.
func (h *PathQueryHandler) GetPopularNextSteps(ctx context.Context, q *GetNextStepsQuery) (results []PathStepResult, err error) {
	start := time.Now()
	defer func() { h.observe("get_popular_next_steps", start, err) }()

	if err = h.validate.Struct(q); err != nil {
		return nil, pkgerrors.NewValidation(err.Error())
	}
	if q.Limit <= 0 {
		q.Limit = 5
	}

	return toStepResults(h.analyzer.GetPopularNextSteps(q.NodeID, q.Limit)), nil
}

// GetCommonPrerequisites returns the most frequent observed transitions into
// a node.
func (h *PathQueryHandler) GetCommonPrerequisites(ctx context.Context, q *GetNextStepsQuery) (results []PathStepResult, err error) {
	start := time.Now()
	defer func() { h.observe("get_common_prerequisites", start, err) }()

	if err = h.validate.Struct(q); err != nil {
		return nil, pkgerrors.NewValidation(err.Error())
	}
	if q.Limit <= 0 {
		q.Limit = 5
	}

	return toStepResults(h.analyzer.GetCommonPrerequisites(q.NodeID, q.Limit)), nil
}

func toStepResults(steps []services.PathStep) []PathStepResult {
	results := make([]PathStepResult, 0, len(steps))
	for _, step := range steps {
		results = append(results, PathStepResult{
			NodeID:             step.Node.ID,
			Name:               step.Node.Name,
			Frequency:          step.Segment.Frequency,
			AverageTimeMinutes: step.Segment.AverageTimeMinutes,
			SuccessRate:        step.Segment.SuccessRate,
		})
	}
	return results
}

// GetHiddenGems lists underexplored high-value content.
func (h *PathQueryHandler) GetHiddenGems(ctx context.Context, q *GetHiddenGemsQuery) (results []HiddenGemResult, err error) {
	start := time.Now()
	defer func() { h.observe("get_hidden_gems", start, err) }()

	if q.Limit <= 0 {
		q.Limit = 5
	}

	gems := h.analyzer.FindHiddenGems(q.CompletedIDs, q.Limit)
	results = make([]HiddenGemResult, 0, len(gems))
	for _, gem := range gems {
		results = append(results, HiddenGemResult{
			NodeID:   gem.Node.ID,
			Name:     gem.Node.Name,
			GemScore: gem.GemScore,
			Reason:   gem.Reason,
		})
	}

	return results, nil
}

// GetCompletionStats returns the analyzer's aggregate statistics.
func (h *PathQueryHandler) GetCompletionStats(ctx context.Context) (*CompletionStatsResult, error) {
	start := time.Now()
	defer func() { h.observe("get_completion_stats", start, nil) }()

	stats := h.analyzer.GetCompletionStats()
	return &CompletionStatsResult{
		TotalCompletions:  stats.TotalCompletions,
		UniquePaths:       stats.UniquePaths,
		AvgCompletionRate: stats.AvgCompletionRate,
	}, nil
}

func (h *PathQueryHandler) observe(operation string, start time.Time, err error) {
	if h.metrics != nil {
		h.metrics.ObserveQuery(operation, time.Since(start), err)
	}
}
