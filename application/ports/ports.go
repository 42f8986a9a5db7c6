// Package ports defines the boundary interfaces between the engine's
// application layer and its infrastructure adapters.
package ports

import (
	"context"

	"skillmap-backend/domain/core/entities"
	"skillmap-backend/domain/events"
)

// GraphRepository loads the content graph from wherever it lives. The
// engine treats the returned graph as immutable for its lifetime.
type GraphRepository interface {
	LoadGraph(ctx context.Context) (map[string]*entities.Node, []entities.Connection, error)
}

// JourneyStore persists learner journeys and path segments so recorded
// usage survives the process.
type JourneyStore interface {
	SaveJourney(ctx context.Context, journey *entities.LearnerJourney) error
	SaveSegment(ctx context.Context, segment entities.PathSegment) error
}

// EventBus publishes domain events to external consumers.
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}
