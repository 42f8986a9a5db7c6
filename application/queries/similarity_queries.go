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

// FindSimilarNodesQuery asks for content similar to a reference node.
type FindSimilarNodesQuery struct {
	NodeID        string   `json:"node_id" validate:"required"`
	Limit         int      `json:"limit"`
	MinSimilarity float64  `json:"min_similarity" validate:"gte=0,lte=1"`
	ExcludeIDs    []string `json:"exclude_ids"`
	SameLevel     bool     `json:"same_level"`
	SameDomain    bool     `json:"same_domain"`
}

// SimilarNodeResult is one entry of a similar-node response.
type SimilarNodeResult struct {
	NodeID       string  `json:"node_id"`
	Name         string  `json:"name"`
	Overall      float64 `json:"overall"`
	Relationship string  `json:"relationship"`
}

// FindSimilarNodesResult is the similar-node response.
type FindSimilarNodesResult struct {
	Nodes      []SimilarNodeResult `json:"nodes"`
	TotalFound int                 `json:"total_found"`
}

// GetRelationshipQuery asks how two nodes relate.
type GetRelationshipQuery struct {
	NodeID   string `json:"node_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// GetRelationshipResult carries a relationship classification.
type GetRelationshipResult struct {
	Relationship string `json:"relationship"`
}

// GetPrerequisiteGapsQuery asks for unmet prerequisites of a target node.
type GetPrerequisiteGapsQuery struct {
	NodeID       string   `json:"node_id" validate:"required"`
	CompletedIDs []string `json:"completed_ids"`
}

// PrerequisiteGapResult is one unmet prerequisite.
type PrerequisiteGapResult struct {
	NodeID      string  `json:"node_id"`
	Name        string  `json:"name"`
	Importance  float64 `json:"importance"`
	IsSkippable bool    `json:"is_skippable"`
	Reason      string  `json:"reason"`
}

// GetContextualNodesQuery asks for the immediate learning context of a node.
type GetContextualNodesQuery struct {
	NodeID string `json:"node_id" validate:"required"`
	Limit  int    `json:"limit"`
}

// ContextualNodeResult is one contextual neighbor.
type ContextualNodeResult struct {
	NodeID string  `json:"node_id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
}

// SimilarityQueryHandler serves the similarity-side read queries.
type SimilarityQueryHandler struct {
	calculator *services.SimilarityCalculator
	validate   *validator.Validate
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewSimilarityQueryHandler creates a new handler.
func NewSimilarityQueryHandler(
	calculator *services.SimilarityCalculator,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SimilarityQueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimilarityQueryHandler{
		calculator: calculator,
		validate:   validator.New(),
		metrics:    metrics,
		logger:     logger,
	}
}

// FindSimilarNodes executes a similar-node search.
func (h *SimilarityQueryHandler) FindSimilarNodes(ctx context.Context, q *FindSimilarNodesQuery) (result *FindSimilarNodesResult, err error) {
	start := time.Now()
	defer func() { h.observe("find_similar_nodes", start, err) }()

	if err = h.validate.Struct(q); err != nil {
		return nil, pkgerrors.NewValidation(err.Error())
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	matches := h.calculator.FindSimilarNodes(q.NodeID, services.FindSimilarOptions{
		Limit:         q.Limit,
		MinSimilarity: q.MinSimilarity,
		ExcludeIDs:    q.ExcludeIDs,
		SameLevel:     q.SameLevel,
		SameDomain:    q.SameDomain,
	})

	result = &FindSimilarNodesResult{Nodes: make([]SimilarNodeResult, 0, len(matches))}
	for _, m := range matches {
		result.Nodes = append(result.Nodes, SimilarNodeResult{
			NodeID:       m.Node.ID,
			Name:         m.Node.Name,
			Overall:      m.Score.Overall,
			Relationship: string(m.Relationship),
		})
	}
	result.TotalFound = len(result.Nodes)

	return result, nil
}

// GetRelationship classifies the relationship between two nodes.
func (h *SimilarityQueryHandler) GetRelationship(ctx context.Context, q *GetRelationshipQuery) (result *GetRelationshipResult, err error) {
	start := time.Now()
	defer func() { h.observe("get_relationship", start, err) }()

	if err = h.validate.Struct(q); err != nil {
		return nil, pkgerrors.NewValidation(err.Error())
	}

	rel := h.calculator.DetermineRelationship(q.NodeID, q.TargetID)
	return &GetRelationshipResult{Relationship: string(rel)}, nil
}

// GetPrerequisiteGaps lists unmet prerequisites for a target node.
func (h *SimilarityQueryHandler) GetPrerequisiteGaps(ctx context.Context, q *GetPrerequisiteGapsQuery) (results []PrerequisiteGapResult, err error) {
	start := time.Now()
	defer func() { h.observe("get_prerequisite_gaps", start, err) }()

	if err = h.validate.Struct(q); err != nil {
		return nil, pkgerrors.NewValidation(err.Error())
	}

	gaps := h.calculator.FindPrerequisiteGaps(q.NodeID, q.CompletedIDs)
	results = make([]PrerequisiteGapResult, 0, len(gaps))
	for _, gap := range gaps {
		results = append(results, PrerequisiteGapResult{
			NodeID:      gap.Node.ID,
			Name:        gap.Node.Name,
			Importance:  gap.Importance,
			IsSkippable: gap.IsSkippable,
			Reason:      gap.Reason,
		})
	}

	return results, nil
}

// GetContextualNodes lists the immediate learning context of a node.
func (h *SimilarityQueryHandler) GetContextualNodes(ctx context.Context, q *GetContextualNodesQuery) (results []ContextualNodeResult, err error) {
	start := time.Now()
	defer func() { h.observe("get_contextual_nodes", start, err) }()

	if err = h.validate.Struct(q); err != nil {
		return nil, pkgerrors.NewValidation(err.Error())
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	scored := h.calculator.GetContextualNodes(q.NodeID, q.Limit)
	results = make([]ContextualNodeResult, 0, len(scored))
	for _, s := range scored {
		results = append(results, ContextualNodeResult{
			NodeID: s.Node.ID,
			Name:   s.Node.Name,
			Score:  s.Score,
		})
	}

	return results, nil
}

func (h *SimilarityQueryHandler) observe(operation string, start time.Time, err error) {
	if h.metrics != nil {
		h.metrics.ObserveQuery(operation, time.Since(start), err)
	}
}
