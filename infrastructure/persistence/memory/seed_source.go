package memory

import (
	"skillmap-backend/domain/core/entities"
)

// SeedStatisticsSource is a fixed, in-memory statistics source for
// development and tests.
type SeedStatisticsSource struct {
	stats    map[string]entities.NodeStats
	segments []entities.PathSegment
}

// NewSeedStatisticsSource creates a source over the given seed data.
func NewSeedStatisticsSource(stats map[string]entities.NodeStats, segments []entities.PathSegment) *SeedStatisticsSource {
	if stats == nil {
		stats = make(map[string]entities.NodeStats)
	}
	return &SeedStatisticsSource{stats: stats, segments: segments}
}

// NodeStats returns seeded statistics for one node.
func (s *SeedStatisticsSource) NodeStats(nodeID string) (entities.NodeStats, bool) {
	stats, ok := s.stats[nodeID]
	return stats, ok
}

// Segments returns all seeded segments.
func (s *SeedStatisticsSource) Segments() []entities.PathSegment {
	return append([]entities.PathSegment(nil), s.segments...)
}
