package entities

import "time"

// PathSegment aggregates statistics for one directed from->to transition.
// Segments are created lazily on the first observed transition and never
// deleted.
type PathSegment struct {
	FromID             string
	ToID               string
	Frequency          int
	AverageTimeMinutes float64
	SuccessRate        float64 // in [0,1]; 0 means unknown
}

// Key returns the canonical segment table key.
func (s PathSegment) Key() string {
	return SegmentKey(s.FromID, s.ToID)
}

// SegmentKey builds the canonical "from->to" segment table key.
func SegmentKey(fromID, toID string) string {
	return fromID + "->" + toID
}

// NodePathData is the denormalized per-node aggregate backing most path
// read queries. The ranked segment lists share pointers with the segment
// table, so frequency updates are visible without rebuilding.
type NodePathData struct {
	NodeID              string
	Completions         int
	AverageTime         float64
	PopularNextSteps    []*PathSegment
	CommonPrerequisites []*PathSegment
	CompletionRate      float64
	AverageRating       float64 // 0 means unrated
}

// NodeStats is the raw statistics tuple supplied by an external statistics
// source for one node.
type NodeStats struct {
	Completions    int
	AverageTime    float64
	CompletionRate float64
	AverageRating  float64
}

// LearnerJourney is one learner's ordered record of distinct completions
// plus their current position.
type LearnerJourney struct {
	LearnerID        string
	CompletedNodeIDs []string
	CurrentNodeID    string
	UpdatedAt        time.Time
}

// HasCompleted reports whether the journey already records the given node.
func (j *LearnerJourney) HasCompleted(nodeID string) bool {
	for _, id := range j.CompletedNodeIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}

// LastCompleted returns the most recent completion, or empty if none.
func (j *LearnerJourney) LastCompleted() string {
	if len(j.CompletedNodeIDs) == 0 {
		return ""
	}
	return j.CompletedNodeIDs[len(j.CompletedNodeIDs)-1]
}
