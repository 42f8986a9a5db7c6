// Package handlers contains the HTTP request handlers for the REST API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"skillmap-backend/application/queries"
	"skillmap-backend/pkg/api"
	pkgerrors "skillmap-backend/pkg/errors"
)

// SimilarityHandler handles similarity-related HTTP requests
type SimilarityHandler struct {
	queries *queries.SimilarityQueryHandler
	logger  *zap.Logger
}

// NewSimilarityHandler creates a new similarity handler
func NewSimilarityHandler(q *queries.SimilarityQueryHandler, logger *zap.Logger) *SimilarityHandler {
	return &SimilarityHandler{queries: q, logger: logger}
}

// FindSimilar handles GET /nodes/{id}/similar
func (h *SimilarityHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	minSimilarity, _ := strconv.ParseFloat(r.URL.Query().Get("min_similarity"), 64)

	query := &queries.FindSimilarNodesQuery{
		NodeID:        chi.URLParam(r, "id"),
		Limit:         queryInt(r, "limit"),
		MinSimilarity: minSimilarity,
		ExcludeIDs:    queryList(r, "exclude"),
		SameLevel:     r.URL.Query().Get("same_level") == "true",
		SameDomain:    r.URL.Query().Get("same_domain") == "true",
	}

	result, err := h.queries.FindSimilarNodes(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, result)
}

// GetRelationship handles GET /nodes/{id}/relationship/{targetId}
func (h *SimilarityHandler) GetRelationship(w http.ResponseWriter, r *http.Request) {
	query := &queries.GetRelationshipQuery{
		NodeID:   chi.URLParam(r, "id"),
		TargetID: chi.URLParam(r, "targetId"),
	}

	result, err := h.queries.GetRelationship(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, result)
}

// GetPrerequisiteGaps handles GET /nodes/{id}/gaps
func (h *SimilarityHandler) GetPrerequisiteGaps(w http.ResponseWriter, r *http.Request) {
	query := &queries.GetPrerequisiteGapsQuery{
		NodeID:       chi.URLParam(r, "id"),
		CompletedIDs: queryList(r, "completed"),
	}

	gaps, err := h.queries.GetPrerequisiteGaps(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"gaps": gaps})
}

// GetContextualNodes handles GET /nodes/{id}/contextual
func (h *SimilarityHandler) GetContextualNodes(w http.ResponseWriter, r *http.Request) {
	query := &queries.GetContextualNodesQuery{
		NodeID: chi.URLParam(r, "id"),
		Limit:  queryInt(r, "limit"),
	}

	nodes, err := h.queries.GetContextualNodes(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"nodes": nodes})
}

// Shared helpers

func queryInt(r *http.Request, name string) int {
	value, _ := strconv.Atoi(r.URL.Query().Get(name))
	return value
}

func queryList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return pkgerrors.NewValidation("invalid JSON body")
	}
	return nil
}

func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case pkgerrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, err.Error())
	case pkgerrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal error")
	}
}
