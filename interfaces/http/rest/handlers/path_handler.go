package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"skillmap-backend/application/commands"
	"skillmap-backend/application/queries"
	"skillmap-backend/pkg/api"
)

// PathHandler handles path-related HTTP requests
type PathHandler struct {
	queries *queries.PathQueryHandler
	journey *commands.RecordJourneyEventHandler
	logger  *zap.Logger
}

// NewPathHandler creates a new path handler
func NewPathHandler(
	q *queries.PathQueryHandler,
	journey *commands.RecordJourneyEventHandler,
	logger *zap.Logger,
) *PathHandler {
	return &PathHandler{queries: q, journey: journey, logger: logger}
}

// GetPopularNextSteps handles GET /nodes/{id}/next-steps
func (h *PathHandler) GetPopularNextSteps(w http.ResponseWriter, r *http.Request) {
	query := &queries.GetNextStepsQuery{
		NodeID: chi.URLParam(r, "id"),
		Limit:  queryInt(r, "limit"),
	}

	steps, err := h.queries.GetPopularNextSteps(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"steps": steps})
}

// GetCommonPrerequisites handles GET /nodes/{id}/prerequisites
func (h *PathHandler) GetCommonPrerequisites(w http.ResponseWriter, r *http.Request) {
	query := &queries.GetNextStepsQuery{
		NodeID: chi.URLParam(r, "id"),
		Limit:  queryInt(r, "limit"),
	}

	steps, err := h.queries.GetCommonPrerequisites(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"steps": steps})
}

// GetOptimalPath handles GET /paths/optimal
func (h *PathHandler) GetOptimalPath(w http.ResponseWriter, r *http.Request) {
	query := &queries.GetOptimalPathQuery{
		FromID:       r.URL.Query().Get("from"),
		ToID:         r.URL.Query().Get("to"),
		CompletedIDs: queryList(r, "completed"),
	}

	path, err := h.queries.GetOptimalPath(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, path)
}

// GetPathSuggestions handles GET /paths/suggestions
func (h *PathHandler) GetPathSuggestions(w http.ResponseWriter, r *http.Request) {
	query := &queries.GetPathSuggestionsQuery{
		CurrentID:    r.URL.Query().Get("current"),
		CompletedIDs: queryList(r, "completed"),
		GoalID:       r.URL.Query().Get("goal"),
		Limit:        queryInt(r, "limit"),
	}

	suggestions, err := h.queries.GetPathSuggestions(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

// GetHiddenGems handles GET /paths/hidden-gems
func (h *PathHandler) GetHiddenGems(w http.ResponseWriter, r *http.Request) {
	query := &queries.GetHiddenGemsQuery{
		CompletedIDs: queryList(r, "completed"),
		Limit:        queryInt(r, "limit"),
	}

	gems, err := h.queries.GetHiddenGems(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"gems": gems})
}

// GetCompletionStats handles GET /paths/stats
func (h *PathHandler) GetCompletionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.GetCompletionStats(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}

// RecordJourneyEvent handles POST /journeys/events
func (h *PathHandler) RecordJourneyEvent(w http.ResponseWriter, r *http.Request) {
	var cmd commands.RecordJourneyEventCommand
	if err := decodeBody(r, &cmd); err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.journey.Handle(r.Context(), &cmd); err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}
