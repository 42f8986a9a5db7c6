// Package v1 wires the versioned REST API router.
package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skillmap-backend/interfaces/http/rest/handlers"
)

// RouterConfig carries the optional pieces of the router.
type RouterConfig struct {
	EnableCORS bool
	// Registry enables the /metrics endpoint when set.
	Registry *prometheus.Registry
}

// NewRouter creates the v1 API router
func NewRouter(
	similarityHandler *handlers.SimilarityHandler,
	pathHandler *handlers.PathHandler,
	cfg RouterConfig,
) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(versionHeaders)

		// Similarity endpoints
		r.Get("/nodes/{id}/similar", similarityHandler.FindSimilar)
		r.Get("/nodes/{id}/relationship/{targetId}", similarityHandler.GetRelationship)
		r.Get("/nodes/{id}/gaps", similarityHandler.GetPrerequisiteGaps)
		r.Get("/nodes/{id}/contextual", similarityHandler.GetContextualNodes)

		// Path endpoints
		r.Get("/nodes/{id}/next-steps", pathHandler.GetPopularNextSteps)
		r.Get("/nodes/{id}/prerequisites", pathHandler.GetCommonPrerequisites)
		r.Get("/paths/optimal", pathHandler.GetOptimalPath)
		r.Get("/paths/suggestions", pathHandler.GetPathSuggestions)
		r.Get("/paths/hidden-gems", pathHandler.GetHiddenGems)
		r.Get("/paths/stats", pathHandler.GetCompletionStats)

		// Journey endpoints
		r.Post("/journeys/events", pathHandler.RecordJourneyEvent)

		// Health check
		r.Get("/health", healthCheck)
	})

	if cfg.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	return router
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}
