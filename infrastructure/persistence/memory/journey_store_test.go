package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmap-backend/domain/core/entities"
)

func TestJourneyStore_SaveJourney(t *testing.T) {
	store := NewJourneyStore()

	journey := &entities.LearnerJourney{
		LearnerID:        "learner-1",
		CompletedNodeIDs: []string{"a", "b"},
		CurrentNodeID:    "c",
	}
	require.NoError(t, store.SaveJourney(context.Background(), journey))

	// Mutating the original does not affect the stored copy.
	journey.CompletedNodeIDs[0] = "mutated"

	stored, ok := store.Journey("learner-1")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, stored.CompletedNodeIDs)
	assert.Equal(t, "c", stored.CurrentNodeID)

	_, ok = store.Journey("unknown")
	assert.False(t, ok)
}

func TestJourneyStore_SaveSegment(t *testing.T) {
	store := NewJourneyStore()

	require.NoError(t, store.SaveSegment(context.Background(), entities.PathSegment{
		FromID:    "a",
		ToID:      "b",
		Frequency: 3,
	}))

	segment, ok := store.Segment("a", "b")
	require.True(t, ok)
	assert.Equal(t, 3, segment.Frequency)

	_, ok = store.Segment("b", "a")
	assert.False(t, ok)
}
