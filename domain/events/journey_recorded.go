package events

import (
	"time"

	"github.com/google/uuid"
)

// SourceEngine identifies this subsystem on the event bus.
const SourceEngine = "skillmap.engine"

// DomainEvent is the minimal contract for events leaving the engine.
type DomainEvent interface {
	GetEventType() string
	GetAggregateID() string
	GetTimestamp() time.Time
}

// JourneyRecorded is emitted after a learner journey event has been applied.
type JourneyRecorded struct {
	EventID         string    `json:"event_id"`
	LearnerID       string    `json:"learner_id"`
	CompletedNodeID string    `json:"completed_node_id"`
	CurrentNodeID   string    `json:"current_node_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// NewJourneyRecorded creates a JourneyRecorded event.
func NewJourneyRecorded(learnerID, completedNodeID, currentNodeID string) JourneyRecorded {
	return JourneyRecorded{
		EventID:         uuid.NewString(),
		LearnerID:       learnerID,
		CompletedNodeID: completedNodeID,
		CurrentNodeID:   currentNodeID,
		OccurredAt:      time.Now(),
	}
}

// GetEventType returns the event type name.
func (e JourneyRecorded) GetEventType() string { return "JourneyRecorded" }

// GetAggregateID returns the learner the event belongs to.
func (e JourneyRecorded) GetAggregateID() string { return e.LearnerID }

// GetTimestamp returns when the event occurred.
func (e JourneyRecorded) GetTimestamp() time.Time { return e.OccurredAt }
