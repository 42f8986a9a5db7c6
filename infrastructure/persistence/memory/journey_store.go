package memory

import (
	"context"
	"sync"

	"skillmap-backend/domain/core/entities"
)

// JourneyStore is an in-memory JourneyStore for development and tests.
type JourneyStore struct {
	mu       sync.RWMutex
	journeys map[string]entities.LearnerJourney
	segments map[string]entities.PathSegment
}

// NewJourneyStore creates an empty store.
func NewJourneyStore() *JourneyStore {
	return &JourneyStore{
		journeys: make(map[string]entities.LearnerJourney),
		segments: make(map[string]entities.PathSegment),
	}
}

// SaveJourney stores a copy of the journey keyed by learner id.
func (s *JourneyStore) SaveJourney(ctx context.Context, journey *entities.LearnerJourney) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *journey
	copied.CompletedNodeIDs = append([]string(nil), journey.CompletedNodeIDs...)
	s.journeys[journey.LearnerID] = copied
	return nil
}

// SaveSegment stores the segment keyed by its transition.
func (s *JourneyStore) SaveSegment(ctx context.Context, segment entities.PathSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.segments[segment.Key()] = segment
	return nil
}

// Journey returns the stored journey for a learner, if any.
func (s *JourneyStore) Journey(learnerID string) (entities.LearnerJourney, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journey, ok := s.journeys[learnerID]
	return journey, ok
}

// Segment returns the stored segment for a transition, if any.
func (s *JourneyStore) Segment(fromID, toID string) (entities.PathSegment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	segment, ok := s.segments[entities.SegmentKey(fromID, toID)]
	return segment, ok
}
