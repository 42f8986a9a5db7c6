package commands

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"skillmap-backend/application/ports"
	"skillmap-backend/domain/events"
	"skillmap-backend/domain/services"
	pkgerrors "skillmap-backend/pkg/errors"
	"skillmap-backend/pkg/observability"
)

// RecordJourneyEventCommand records that a learner completed a node and
// where they are now.
type RecordJourneyEventCommand struct {
	LearnerID       string `json:"learner_id" validate:"required"`
	CompletedNodeID string `json:"completed_node_id" validate:"required"`
	CurrentNodeID   string `json:"current_node_id"`
}

// RecordJourneyEventHandler applies journey events to the analyzer,
// persists the updated journey and publishes a domain event.
type RecordJourneyEventHandler struct {
	analyzer *services.PathAnalyzer
	store    ports.JourneyStore
	bus      ports.EventBus
	validate *validator.Validate
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewRecordJourneyEventHandler creates a new handler. Store and bus may be
// nil when persistence or messaging are not configured.
func NewRecordJourneyEventHandler(
	analyzer *services.PathAnalyzer,
	store ports.JourneyStore,
	bus ports.EventBus,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RecordJourneyEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordJourneyEventHandler{
		analyzer: analyzer,
		store:    store,
		bus:      bus,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle applies the command. The in-process analyzer state is the source
// of truth; persistence failures are returned after the state change so
// callers can retry, and publish failures are logged but not fatal.
func (h *RecordJourneyEventHandler) Handle(ctx context.Context, cmd *RecordJourneyEventCommand) error {
	if err := h.validate.Struct(cmd); err != nil {
		return pkgerrors.NewValidation(err.Error())
	}

	h.analyzer.RecordJourneyEvent(cmd.LearnerID, cmd.CompletedNodeID, cmd.CurrentNodeID)
	if h.metrics != nil {
		h.metrics.RecordJourneyEvent()
	}

	if h.store != nil {
		if journey, ok := h.analyzer.Journey(cmd.LearnerID); ok {
			if err := h.store.SaveJourney(ctx, &journey); err != nil {
				return pkgerrors.Wrap(err, "failed to persist journey")
			}
			if n := len(journey.CompletedNodeIDs); n >= 2 {
				if seg, ok := h.analyzer.Segment(journey.CompletedNodeIDs[n-2], journey.CompletedNodeIDs[n-1]); ok {
					if err := h.store.SaveSegment(ctx, seg); err != nil {
						return pkgerrors.Wrap(err, "failed to persist path segment")
					}
				}
			}
		}
	}

	if h.bus != nil {
		event := events.NewJourneyRecorded(cmd.LearnerID, cmd.CompletedNodeID, cmd.CurrentNodeID)
		if err := h.bus.Publish(ctx, event); err != nil {
			h.logger.Warn("failed to publish journey event",
				zap.String("learnerId", cmd.LearnerID),
				zap.Error(err),
			)
		}
	}

	return nil
}
