package services

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"skillmap-backend/domain/core/entities"
)

// PathAnalysisOptions configures the path analyzer.
type PathAnalysisOptions struct {
	// MinPathFrequency filters segments below this frequency out of the
	// ranked popular/common lists built at construction.
	MinPathFrequency int `yaml:"min_path_frequency"`
	// MaxPathDepth bounds the hop count of any path returned by
	// ComputeOptimalPath.
	MaxPathDepth int `yaml:"max_path_depth"`
	// IncludeCrossDomain is accepted but not consulted by any computation
	// yet.
	IncludeCrossDomain bool `yaml:"include_cross_domain"`
	// RecencyWeight is accepted but not consulted by any computation yet.
	RecencyWeight float64 `yaml:"recency_weight"`
}

// DefaultPathAnalysisOptions returns the default analyzer configuration.
func DefaultPathAnalysisOptions() PathAnalysisOptions {
	return PathAnalysisOptions{
		MinPathFrequency:   1,
		MaxPathDepth:       10,
		IncludeCrossDomain: true,
		RecencyWeight:      0.3,
	}
}

// PathStatisticsSource supplies observed path statistics at construction
// time. Real deployments back this with a store; tests use a seeded
// in-memory source.
type PathStatisticsSource interface {
	// NodeStats returns aggregate statistics for one node.
	NodeStats(nodeID string) (entities.NodeStats, bool)
	// Segments returns all known path segments.
	Segments() []entities.PathSegment
}

// PathStep is one resolved entry of a ranked segment list.
type PathStep struct {
	Node    *entities.Node
	Segment entities.PathSegment
}

// HiddenGem is an underexplored, high-value node.
type HiddenGem struct {
	Node        *entities.Node
	HiddenScore float64
	ValueScore  float64
	GemScore    float64
	Reason      string
}

// OptimalPath is the result of a shortest-path computation.
type OptimalPath struct {
	Nodes          []*entities.Node
	EstimatedHours float64
	Confidence     float64
}

// SuggestionKind labels the origin of a path suggestion.
type SuggestionKind string

const (
	SuggestionPopular   SuggestionKind = "popular"
	SuggestionOptimal   SuggestionKind = "optimal"
	SuggestionHiddenGem SuggestionKind = "hidden-gem"
)

// PathSuggestion is one composite next-step recommendation.
type PathSuggestion struct {
	Kind   SuggestionKind
	Node   *entities.Node
	Reason string
	// Path is populated for optimal suggestions only.
	Path []*entities.Node
}

// CompletionStats aggregates the analyzer's observed statistics.
type CompletionStats struct {
	TotalCompletions  int
	UniquePaths       int
	AvgCompletionRate float64
}

// PathAnalyzer answers next-step, gap, hidden-gem and optimal-route queries
// over the content graph. The segment table and learner journeys are its
// only mutable state; a single RWMutex serializes RecordJourneyEvent against
// the read queries.
type PathAnalyzer struct {
	nodes       map[string]*entities.Node
	connections []entities.Connection
	similarity  *SimilarityCalculator // accepted but not consulted by any computation yet
	opts        PathAnalysisOptions
	logger      *zap.Logger

	mu       sync.RWMutex
	pathData map[string]*entities.NodePathData
	segments map[string]*entities.PathSegment
	journeys map[string]*entities.LearnerJourney
}

// NewPathAnalyzer builds the per-node path data and the segment table from
// the given statistics source. A nil source yields empty statistics;
// segments referencing unknown nodes are skipped silently.
func NewPathAnalyzer(
	nodes map[string]*entities.Node,
	connections []entities.Connection,
	similarity *SimilarityCalculator,
	opts PathAnalysisOptions,
	source PathStatisticsSource,
	logger *zap.Logger,
) *PathAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &PathAnalyzer{
		nodes:       nodes,
		connections: connections,
		similarity:  similarity,
		opts:        opts,
		logger:      logger,
		pathData:    make(map[string]*entities.NodePathData, len(nodes)),
		segments:    make(map[string]*entities.PathSegment),
		journeys:    make(map[string]*entities.LearnerJourney),
	}

	for id := range nodes {
		data := &entities.NodePathData{NodeID: id}
		if source != nil {
			if stats, ok := source.NodeStats(id); ok {
				data.Completions = stats.Completions
				data.AverageTime = stats.AverageTime
				data.CompletionRate = stats.CompletionRate
				data.AverageRating = stats.AverageRating
			}
		}
		a.pathData[id] = data
	}

	if source != nil {
		for _, seg := range source.Segments() {
			if _, ok := nodes[seg.FromID]; !ok {
				continue
			}
			if _, ok := nodes[seg.ToID]; !ok {
				continue
			}
			copied := seg
			a.segments[copied.Key()] = &copied
		}
	}

	a.rebuildRankedLists()

	logger.Debug("path analyzer initialized",
		zap.Int("nodes", len(nodes)),
		zap.Int("segments", len(a.segments)),
	)

	return a
}

// rebuildRankedLists populates the per-node popular/common lists from the
// segment table. The lists share segment pointers with the table so later
// frequency increments stay visible.
func (a *PathAnalyzer) rebuildRankedLists() {
	for _, data := range a.pathData {
		data.PopularNextSteps = data.PopularNextSteps[:0]
		data.CommonPrerequisites = data.CommonPrerequisites[:0]
	}

	for _, seg := range a.segments {
		if seg.Frequency < a.opts.MinPathFrequency {
			continue
		}
		if from, ok := a.pathData[seg.FromID]; ok {
			from.PopularNextSteps = append(from.PopularNextSteps, seg)
		}
		if to, ok := a.pathData[seg.ToID]; ok {
			to.CommonPrerequisites = append(to.CommonPrerequisites, seg)
		}
	}

	for _, data := range a.pathData {
		sortSegments(data.PopularNextSteps)
		sortSegments(data.CommonPrerequisites)
	}
}

func sortSegments(segs []*entities.PathSegment) {
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].Frequency != segs[j].Frequency {
			return segs[i].Frequency > segs[j].Frequency
		}
		return segs[i].Key() < segs[j].Key()
	})
}

// GetPopularNextSteps returns the most frequent observed transitions out of
// a node, resolved to nodes.
func (a *PathAnalyzer) GetPopularNextSteps(nodeID string, limit int) []PathStep {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data, ok := a.pathData[nodeID]
	if !ok {
		return nil
	}
	return a.resolveSteps(data.PopularNextSteps, limit, func(seg *entities.PathSegment) string {
		return seg.ToID
	})
}

// GetCommonPrerequisites returns the most frequent observed transitions into
// a node, resolved to nodes.
func (a *PathAnalyzer) GetCommonPrerequisites(nodeID string, limit int) []PathStep {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data, ok := a.pathData[nodeID]
	if !ok {
		return nil
	}
	return a.resolveSteps(data.CommonPrerequisites, limit, func(seg *entities.PathSegment) string {
		return seg.FromID
	})
}

func (a *PathAnalyzer) resolveSteps(
	segs []*entities.PathSegment,
	limit int,
	pick func(*entities.PathSegment) string,
) []PathStep {
	steps := make([]PathStep, 0, len(segs))
	for _, seg := range segs {
		node, ok := a.nodes[pick(seg)]
		if !ok {
			continue
		}
		steps = append(steps, PathStep{Node: node, Segment: *seg})
		if limit > 0 && len(steps) == limit {
			break
		}
	}
	return steps
}

// FindHiddenGems surfaces nodes that are both underexplored relative to the
// graph-wide average and high-value by rating, completion-rate, skill and
// connectivity signals.
func (a *PathAnalyzer) FindHiddenGems(completedIDs []string, limit int) []HiddenGem {
	a.mu.RLock()
	defer a.mu.RUnlock()

	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	avg := a.averageCompletions()
	completedSkills := a.skillsOf(completed)

	gems := make([]HiddenGem, 0)
	for id, data := range a.pathData {
		if completed[id] {
			continue
		}
		node, ok := a.nodes[id]
		if !ok {
			continue
		}

		hidden := hiddenScore(data.Completions, avg)
		value := a.valueScore(node, data)
		if hidden <= 0.3 || value <= 0.5 {
			continue
		}

		gems = append(gems, HiddenGem{
			Node:        node,
			HiddenScore: hidden,
			ValueScore:  value,
			GemScore:    0.4*hidden + 0.6*value,
			Reason:      a.gemReason(node, data, hidden, completedSkills),
		})
	}

	sort.Slice(gems, func(i, j int) bool {
		if gems[i].GemScore != gems[j].GemScore {
			return gems[i].GemScore > gems[j].GemScore
		}
		return gems[i].Node.ID < gems[j].Node.ID
	})

	if limit > 0 && len(gems) > limit {
		gems = gems[:limit]
	}
	return gems
}

func (a *PathAnalyzer) averageCompletions() float64 {
	if len(a.pathData) == 0 {
		return 0
	}
	total := 0
	for _, data := range a.pathData {
		total += data.Completions
	}
	return float64(total) / float64(len(a.pathData))
}

func hiddenScore(completions int, avgCompletions float64) float64 {
	denom := 2 * avgCompletions
	if denom == 0 {
		return 1
	}
	return math.Max(0, 1-float64(completions)/denom)
}

// valueScore composes rating deviation from 3.0, completion-rate deviation
// from 0.5, course skill count and connection count into a clamped [0,1]
// composite.
func (a *PathAnalyzer) valueScore(node *entities.Node, data *entities.NodePathData) float64 {
	value := 0.5
	if data.AverageRating > 0 {
		value += (data.AverageRating - 3.0) * 0.1
	}
	value += (data.CompletionRate - 0.5) * 0.4
	if node.Course != nil {
		value += 0.03 * float64(minInt(len(node.Course.Skills), 5))
	}
	value += 0.02 * float64(minInt(a.connectionCount(node.ID), 5))
	return clamp01(value)
}

func (a *PathAnalyzer) connectionCount(nodeID string) int {
	count := 0
	for _, conn := range a.connections {
		if conn.FromID == nodeID || conn.ToID == nodeID {
			count++
		}
	}
	return count
}

func (a *PathAnalyzer) skillsOf(completed map[string]bool) map[string]bool {
	skills := make(map[string]bool)
	for id := range completed {
		node, ok := a.nodes[id]
		if !ok {
			continue
		}
		for _, s := range node.Skills() {
			skills[s] = true
		}
	}
	return skills
}

func (a *PathAnalyzer) gemReason(
	node *entities.Node,
	data *entities.NodePathData,
	hidden float64,
	completedSkills map[string]bool,
) string {
	parts := make([]string, 0, 4)
	if data.AverageRating > 4.0 {
		parts = append(parts, "Highly rated by learners")
	}
	if data.CompletionRate > 0.85 {
		parts = append(parts, "Most learners who start it finish it")
	}
	if skill := a.uncoveredSkill(node, completedSkills); skill != "" {
		parts = append(parts, fmt.Sprintf("Teaches %s, which you haven't covered yet", skill))
	}
	if hidden > 0.7 {
		parts = append(parts, "Rarely discovered by other learners")
	}
	if len(parts) == 0 {
		return "Valuable content off the beaten path"
	}
	return joinReasons(parts)
}

func (a *PathAnalyzer) uncoveredSkill(node *entities.Node, completedSkills map[string]bool) string {
	for _, s := range node.Skills() {
		if !completedSkills[s] {
			return s
		}
	}
	return ""
}

func joinReasons(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ". " + p
	}
	return out
}

// ComputeOptimalPath runs Dijkstra from one node to another over the
// hierarchy, the non-contains connections and siblings. Edge weights come
// from observed segment success rates with a flat penalty for unknown
// transitions and a bonus toward already-completed nodes. Returns nil when
// the target is unreachable.
//
// The relaxation loop scans all unvisited nodes per iteration; callers
// embedding this in a request path should impose an external deadline.
func (a *PathAnalyzer) ComputeOptimalPath(fromID, toID string, completedIDs []string) *OptimalPath {
	a.mu.RLock()
	defer a.mu.RUnlock()

	from, okFrom := a.nodes[fromID]
	if _, okTo := a.nodes[toID]; !okFrom || !okTo {
		return nil
	}

	if fromID == toID {
		return &OptimalPath{Nodes: []*entities.Node{from}, EstimatedHours: 0, Confidence: 0.5}
	}

	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	dist := map[string]float64{fromID: 0}
	prev := make(map[string]string)
	visited := make(map[string]bool)

	for {
		current, ok := a.closestUnvisited(dist, visited)
		if !ok {
			break
		}
		if current == toID {
			break
		}
		visited[current] = true

		for _, neighbor := range a.pathNeighbors(current) {
			if visited[neighbor] {
				continue
			}
			weight := a.edgeWeight(current, neighbor, completed)
			candidate := dist[current] + weight
			if best, seen := dist[neighbor]; !seen || candidate < best {
				dist[neighbor] = candidate
				prev[neighbor] = current
			}
		}
	}

	if _, reached := prev[toID]; !reached {
		return nil
	}

	ids := []string{toID}
	for current := toID; current != fromID; {
		parent, ok := prev[current]
		if !ok {
			return nil
		}
		ids = append([]string{parent}, ids...)
		current = parent
	}

	if a.opts.MaxPathDepth > 0 && len(ids)-1 > a.opts.MaxPathDepth {
		return nil
	}

	path := &OptimalPath{Nodes: make([]*entities.Node, 0, len(ids))}
	for _, id := range ids {
		path.Nodes = append(path.Nodes, a.nodes[id])
	}
	for _, node := range path.Nodes[1:] {
		path.EstimatedHours += node.EstimatedHours
	}
	path.Confidence = a.pathConfidence(ids)

	return path
}

func (a *PathAnalyzer) closestUnvisited(dist map[string]float64, visited map[string]bool) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	for id, d := range dist {
		if visited[id] {
			continue
		}
		if d < bestDist || (d == bestDist && (best == "" || id < best)) {
			best = id
			bestDist = d
		}
	}
	return best, best != ""
}

// pathNeighbors returns children, connection targets in both directions
// (contains excluded) and siblings, deduplicated and deterministic.
func (a *PathAnalyzer) pathNeighbors(nodeID string) []string {
	node, ok := a.nodes[nodeID]
	if !ok {
		return nil
	}

	neighbors := make(map[string]bool)
	add := func(id string) {
		if id == nodeID {
			return
		}
		if _, ok := a.nodes[id]; ok {
			neighbors[id] = true
		}
	}

	for _, childID := range node.ChildIDs {
		add(childID)
	}
	for _, conn := range a.connections {
		if conn.Type == entities.ConnectionContains {
			continue
		}
		if conn.FromID == nodeID {
			add(conn.ToID)
		}
		if conn.ToID == nodeID {
			add(conn.FromID)
		}
	}
	if parent, ok := a.nodes[node.ParentID]; ok {
		for _, siblingID := range parent.ChildIDs {
			add(siblingID)
		}
	}

	return sortedKeys(neighbors)
}

func (a *PathAnalyzer) edgeWeight(fromID, toID string, completed map[string]bool) float64 {
	weight := 2.0
	if seg, ok := a.segments[entities.SegmentKey(fromID, toID)]; ok && seg.SuccessRate > 0 {
		weight = 1 / seg.SuccessRate
	}
	if completed[toID] {
		weight -= 0.5
	}
	return weight
}

// pathConfidence is the mean success rate of the traversed known segments,
// rescaled into [0.2, 1.0]; a path with no known segments scores 0.5.
func (a *PathAnalyzer) pathConfidence(ids []string) float64 {
	total := 0.0
	known := 0
	for i := 0; i+1 < len(ids); i++ {
		if seg, ok := a.segments[entities.SegmentKey(ids[i], ids[i+1])]; ok {
			total += seg.SuccessRate
			known++
		}
	}
	if known == 0 {
		return 0.5
	}
	return total/float64(known)*0.8 + 0.2
}

// GetPathSuggestions composes, in fixed order, the best popular next step,
// the optimal route toward the goal (when one is given) and the top hidden
// gem, truncated to the limit.
func (a *PathAnalyzer) GetPathSuggestions(currentID string, completedIDs []string, goalID string, limit int) []PathSuggestion {
	if limit <= 0 {
		limit = 3
	}

	suggestions := make([]PathSuggestion, 0, 3)

	if steps := a.GetPopularNextSteps(currentID, 1); len(steps) > 0 {
		suggestions = append(suggestions, PathSuggestion{
			Kind: SuggestionPopular,
			Node: steps[0].Node,
			Reason: fmt.Sprintf("%d learners moved to %s next",
				steps[0].Segment.Frequency, steps[0].Node.Name),
		})
	}

	if goalID != "" {
		if path := a.ComputeOptimalPath(currentID, goalID, completedIDs); path != nil && len(path.Nodes) > 1 {
			suggestions = append(suggestions, PathSuggestion{
				Kind: SuggestionOptimal,
				Node: path.Nodes[1],
				Reason: fmt.Sprintf("Next stop on the best route to %s (%.0f%% confidence)",
					path.Nodes[len(path.Nodes)-1].Name, path.Confidence*100),
				Path: path.Nodes,
			})
		}
	}

	if gems := a.FindHiddenGems(completedIDs, 1); len(gems) > 0 {
		suggestions = append(suggestions, PathSuggestion{
			Kind:   SuggestionHiddenGem,
			Node:   gems[0].Node,
			Reason: gems[0].Reason,
		})
	}

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// RecordJourneyEvent upserts the learner's journey and, when the event adds
// a new completion after a previous one, bumps the frequency of the
// corresponding path segment. This is the engine's sole mutation path.
func (a *PathAnalyzer) RecordJourneyEvent(learnerID, completedNodeID, currentNodeID string) {
	if learnerID == "" || completedNodeID == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	journey, ok := a.journeys[learnerID]
	if !ok {
		journey = &entities.LearnerJourney{LearnerID: learnerID}
		a.journeys[learnerID] = journey
	}

	previous := journey.LastCompleted()
	if !journey.HasCompleted(completedNodeID) {
		journey.CompletedNodeIDs = append(journey.CompletedNodeIDs, completedNodeID)

		if previous != "" && previous != completedNodeID {
			key := entities.SegmentKey(previous, completedNodeID)
			if seg, ok := a.segments[key]; ok {
				seg.Frequency++
			} else {
				a.segments[key] = &entities.PathSegment{
					FromID:    previous,
					ToID:      completedNodeID,
					Frequency: 1,
				}
			}
		}
	}

	journey.CurrentNodeID = currentNodeID
	journey.UpdatedAt = time.Now()
}

// Journey returns a copy of the learner's journey, if any.
func (a *PathAnalyzer) Journey(learnerID string) (entities.LearnerJourney, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	journey, ok := a.journeys[learnerID]
	if !ok {
		return entities.LearnerJourney{}, false
	}
	copied := *journey
	copied.CompletedNodeIDs = append([]string(nil), journey.CompletedNodeIDs...)
	return copied, true
}

// Segment returns a copy of one path segment, if known.
func (a *PathAnalyzer) Segment(fromID, toID string) (entities.PathSegment, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if seg, ok := a.segments[entities.SegmentKey(fromID, toID)]; ok {
		return *seg, true
	}
	return entities.PathSegment{}, false
}

// SegmentFrequency returns the observed frequency of one transition.
func (a *PathAnalyzer) SegmentFrequency(fromID, toID string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if seg, ok := a.segments[entities.SegmentKey(fromID, toID)]; ok {
		return seg.Frequency
	}
	return 0
}

// GetCompletionStats aggregates the analyzer's current statistics.
func (a *PathAnalyzer) GetCompletionStats() CompletionStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := CompletionStats{UniquePaths: len(a.segments)}
	if len(a.pathData) == 0 {
		return stats
	}

	totalRate := 0.0
	for _, data := range a.pathData {
		stats.TotalCompletions += data.Completions
		totalRate += data.CompletionRate
	}
	stats.AvgCompletionRate = totalRate / float64(len(a.pathData))

	return stats
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
