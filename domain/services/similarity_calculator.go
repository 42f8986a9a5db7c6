package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"skillmap-backend/domain/core/entities"
)

// SimilarityWeights configures the contribution of each sub-score to the
// overall similarity. Weights need not sum to 1; the overall score is
// clamped to [0,1] regardless.
type SimilarityWeights struct {
	TagOverlap            float64 `yaml:"tag_overlap"`
	DependencyDistance    float64 `yaml:"dependency_distance"`
	DomainProximity       float64 `yaml:"domain_proximity"`
	LevelAlignment        float64 `yaml:"level_alignment"`
	ContentTypeSimilarity float64 `yaml:"content_type_similarity"`
}

// DefaultSimilarityWeights returns the balanced default weighting.
func DefaultSimilarityWeights() SimilarityWeights {
	return SimilarityWeights{
		TagOverlap:            0.35,
		DependencyDistance:    0.25,
		DomainProximity:       0.15,
		LevelAlignment:        0.15,
		ContentTypeSimilarity: 0.10,
	}
}

// SimilarityScore holds the five sub-scores and their weighted combination.
type SimilarityScore struct {
	Overall               float64
	TagOverlap            float64
	DependencyDistance    float64
	DomainProximity       float64
	LevelAlignment        float64
	ContentTypeSimilarity float64
}

// Relationship classifies how a target node relates to a reference node.
type Relationship string

const (
	RelationshipPrerequisite Relationship = "prerequisite"
	RelationshipDependent    Relationship = "dependent"
	RelationshipRelated      Relationship = "related"
	RelationshipSequential   Relationship = "sequential"
	RelationshipAncestor     Relationship = "ancestor"
	RelationshipDescendant   Relationship = "descendant"
	RelationshipSibling      Relationship = "sibling"
	RelationshipSameDomain   Relationship = "same-domain"
	RelationshipCrossDomain  Relationship = "cross-domain"
	RelationshipNone         Relationship = "none"
)

// SimilarNode is one ranked result of a similar-node search.
type SimilarNode struct {
	Node         *entities.Node
	Score        SimilarityScore
	Relationship Relationship
}

// FindSimilarOptions filters and bounds a similar-node search.
type FindSimilarOptions struct {
	Limit         int
	MinSimilarity float64
	ExcludeIDs    []string
	SameLevel     bool
	SameDomain    bool
}

// PrerequisiteGap is one unmet prerequisite discovered for a target node.
type PrerequisiteGap struct {
	Node        *entities.Node
	Depth       int
	Importance  float64
	IsSkippable bool
	Reason      string
}

// ScoredNode pairs a node with a contextual relevance score.
type ScoredNode struct {
	Node  *entities.Node
	Score float64
}

const (
	// dependencysearch and gap walks never look further than this many hops.
	maxDependencyDepth = 5
)

// SimilarityCalculator answers pairwise similarity and relationship queries
// over an immutable content graph. The prerequisite, dependent and ancestor
// caches are built once at construction; only the weights are mutable
// afterwards (they can be swapped by the config watcher).
type SimilarityCalculator struct {
	nodes       map[string]*entities.Node
	connections []entities.Connection

	prereqOf      map[string]map[string]bool // nodeID -> its direct prerequisites
	dependentsOf  map[string]map[string]bool // nodeID -> its direct dependents
	ancestorChain map[string][]string        // nodeID -> parent, grandparent, ...

	text   TextAnalyzer
	logger *zap.Logger

	mu      sync.RWMutex
	weights SimilarityWeights
}

// NewSimilarityCalculator builds a calculator and its derived caches in
// O(V+E). Connections referencing unknown nodes are skipped silently.
func NewSimilarityCalculator(
	nodes map[string]*entities.Node,
	connections []entities.Connection,
	weights SimilarityWeights,
	logger *zap.Logger,
) *SimilarityCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &SimilarityCalculator{
		nodes:         nodes,
		connections:   connections,
		prereqOf:      make(map[string]map[string]bool),
		dependentsOf:  make(map[string]map[string]bool),
		ancestorChain: make(map[string][]string),
		text:          NewDefaultTextAnalyzer(),
		logger:        logger,
		weights:       weights,
	}

	for _, conn := range connections {
		if conn.Type != entities.ConnectionPrerequisite {
			continue
		}
		if _, ok := nodes[conn.FromID]; !ok {
			continue
		}
		if _, ok := nodes[conn.ToID]; !ok {
			continue
		}
		if c.prereqOf[conn.ToID] == nil {
			c.prereqOf[conn.ToID] = make(map[string]bool)
		}
		c.prereqOf[conn.ToID][conn.FromID] = true

		if c.dependentsOf[conn.FromID] == nil {
			c.dependentsOf[conn.FromID] = make(map[string]bool)
		}
		c.dependentsOf[conn.FromID][conn.ToID] = true
	}

	for id := range nodes {
		c.ancestorChain[id] = c.buildAncestorChain(id)
	}

	logger.Debug("similarity caches built",
		zap.Int("nodes", len(nodes)),
		zap.Int("connections", len(connections)),
		zap.Int("prerequisiteEntries", len(c.prereqOf)),
	)

	return c
}

// buildAncestorChain walks parent ids to the root. A visited guard protects
// against malformed parent cycles.
func (c *SimilarityCalculator) buildAncestorChain(nodeID string) []string {
	chain := []string{}
	visited := map[string]bool{nodeID: true}

	current := c.nodes[nodeID]
	for current != nil && current.ParentID != "" {
		parentID := current.ParentID
		if visited[parentID] {
			break
		}
		visited[parentID] = true
		chain = append(chain, parentID)
		current = c.nodes[parentID]
	}

	return chain
}

// Weights returns the current similarity weights.
func (c *SimilarityCalculator) Weights() SimilarityWeights {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weights
}

// UpdateWeights swaps the similarity weights. Used by the config watcher.
func (c *SimilarityCalculator) UpdateWeights(w SimilarityWeights) {
	c.mu.Lock()
	c.weights = w
	c.mu.Unlock()
	c.logger.Info("similarity weights updated",
		zap.Float64("tagOverlap", w.TagOverlap),
		zap.Float64("dependencyDistance", w.DependencyDistance),
	)
}

// Similarity computes the full similarity breakdown between two nodes.
// Identical ids and unknown ids yield the all-zero score rather than an
// error; partial data degrades silently throughout this subsystem.
func (c *SimilarityCalculator) Similarity(aID, bID string) SimilarityScore {
	if aID == bID {
		return SimilarityScore{}
	}
	a, okA := c.nodes[aID]
	b, okB := c.nodes[bID]
	if !okA || !okB {
		return SimilarityScore{}
	}

	score := SimilarityScore{
		TagOverlap:            c.tagOverlap(a, b),
		DependencyDistance:    c.dependencyDistance(a, b),
		DomainProximity:       domainProximity(a.DomainID, b.DomainID),
		LevelAlignment:        levelAlignment(a.Level, b.Level),
		ContentTypeSimilarity: contentTypeSimilarity(a, b),
	}

	w := c.Weights()
	score.Overall = clamp01(score.TagOverlap*w.TagOverlap +
		score.DependencyDistance*w.DependencyDistance +
		score.DomainProximity*w.DomainProximity +
		score.LevelAlignment*w.LevelAlignment +
		score.ContentTypeSimilarity*w.ContentTypeSimilarity)

	return score
}

// tagSet builds the tag set for a node: the lowercased domain id, name
// tokens longer than 2 characters, course skills and concept relations.
func (c *SimilarityCalculator) tagSet(n *entities.Node) map[string]bool {
	tags := make(map[string]bool)

	if n.DomainID != "" {
		tags[strings.ToLower(n.DomainID)] = true
	}
	for _, token := range c.text.Tokenize(n.Name, 2) {
		tags[token] = true
	}
	if n.Course != nil {
		for _, skill := range n.Course.Skills {
			tags[strings.ToLower(skill)] = true
		}
	}
	if n.Concept != nil {
		for _, rel := range n.Concept.RelatedConcepts {
			tags[strings.ToLower(rel)] = true
		}
	}

	return tags
}

// tagOverlap is the Jaccard index over the two tag sets, falling back to a
// name heuristic when either set is empty.
func (c *SimilarityCalculator) tagOverlap(a, b *entities.Node) float64 {
	setA := c.tagSet(a)
	setB := c.tagSet(b)

	if len(setA) == 0 || len(setB) == 0 {
		return c.nameSimilarity(a.Name, b.Name)
	}

	intersection := 0
	union := len(setB)
	for tag := range setA {
		if setB[tag] {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// nameSimilarity is the fallback heuristic for nodes without tags.
func (c *SimilarityCalculator) nameSimilarity(a, b string) float64 {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))

	if la == "" || lb == "" {
		return 0
	}
	if la == lb {
		return 1.0
	}
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return 0.8
	}

	wordsA := c.text.WordSet(la)
	wordsB := c.text.WordSet(lb)
	shared := 0
	for w := range wordsA {
		if wordsB[w] {
			shared++
		}
	}
	larger := len(wordsA)
	if len(wordsB) > larger {
		larger = len(wordsB)
	}
	if shared == 0 || larger == 0 {
		return 0
	}
	return float64(shared) / float64(larger)
}

// dependencyDistance scores prerequisite closeness through a rank-ordered
// set of tiers: direct relation, shared prerequisites, graph proximity,
// shared parent. The tiers and constants form a heuristic ranking, not a
// metric.
func (c *SimilarityCalculator) dependencyDistance(a, b *entities.Node) float64 {
	if c.prereqOf[a.ID][b.ID] || c.prereqOf[b.ID][a.ID] {
		return 1.0
	}

	prereqsA := c.prereqOf[a.ID]
	prereqsB := c.prereqOf[b.ID]
	shared := 0
	for id := range prereqsA {
		if prereqsB[id] {
			shared++
		}
	}
	if shared > 0 {
		larger := len(prereqsA)
		if len(prereqsB) > larger {
			larger = len(prereqsB)
		}
		return 0.7 + 0.2*float64(shared)/float64(larger)
	}

	if d := c.dependencyHops(a.ID, b.ID); d > 0 {
		return 0.5 / float64(d)
	}

	if a.ParentID != "" && a.ParentID == b.ParentID {
		return 0.6
	}

	return 0
}

// dependencyHops runs a bidirectional BFS over the union of prerequisite and
// dependent edges and returns the hop distance between the two nodes, or 0
// when they are unreachable within maxDependencyDepth.
func (c *SimilarityCalculator) dependencyHops(aID, bID string) int {
	depthFromA := map[string]int{aID: 0}
	depthFromB := map[string]int{bID: 0}
	frontierA := []string{aID}
	frontierB := []string{bID}

	for depth := 1; depth <= maxDependencyDepth; depth++ {
		frontierA = c.expandFrontier(frontierA, depthFromA, depth)
		if d, ok := frontiersMeet(frontierA, depthFromB); ok {
			if total := depth + d; total <= maxDependencyDepth {
				return total
			}
			return 0
		}

		frontierB = c.expandFrontier(frontierB, depthFromB, depth)
		if d, ok := frontiersMeet(frontierB, depthFromA); ok {
			if total := depth + d; total <= maxDependencyDepth {
				return total
			}
			return 0
		}

		if len(frontierA) == 0 && len(frontierB) == 0 {
			return 0
		}
	}

	return 0
}

// expandFrontier advances one BFS frontier by a single hop.
func (c *SimilarityCalculator) expandFrontier(frontier []string, depths map[string]int, depth int) []string {
	next := make([]string, 0)
	for _, id := range frontier {
		for _, neighbor := range c.dependencyNeighbors(id) {
			if _, seen := depths[neighbor]; seen {
				continue
			}
			depths[neighbor] = depth
			next = append(next, neighbor)
		}
	}
	return next
}

// dependencyNeighbors returns prerequisite and dependent neighbors in a
// deterministic order.
func (c *SimilarityCalculator) dependencyNeighbors(nodeID string) []string {
	neighbors := make(map[string]bool)
	for id := range c.prereqOf[nodeID] {
		neighbors[id] = true
	}
	for id := range c.dependentsOf[nodeID] {
		neighbors[id] = true
	}
	return sortedKeys(neighbors)
}

func frontiersMeet(frontier []string, other map[string]int) (int, bool) {
	best := -1
	for _, id := range frontier {
		if d, ok := other[id]; ok && (best < 0 || d < best) {
			best = d
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// domainProximityMatrix is the fixed symmetric similarity lookup for the
// platform's six content domains.
var domainProximityMatrix = map[string]map[string]float64{
	"frontend": {"frontend": 1.0, "backend": 0.6, "devops": 0.3, "mobile": 0.7, "data": 0.3, "design": 0.6},
	"backend":  {"frontend": 0.6, "backend": 1.0, "devops": 0.7, "mobile": 0.5, "data": 0.6, "design": 0.2},
	"devops":   {"frontend": 0.3, "backend": 0.7, "devops": 1.0, "mobile": 0.3, "data": 0.4, "design": 0.2},
	"mobile":   {"frontend": 0.7, "backend": 0.5, "devops": 0.3, "mobile": 1.0, "data": 0.3, "design": 0.5},
	"data":     {"frontend": 0.3, "backend": 0.6, "devops": 0.4, "mobile": 0.3, "data": 1.0, "design": 0.2},
	"design":   {"frontend": 0.6, "backend": 0.2, "devops": 0.2, "mobile": 0.5, "data": 0.2, "design": 1.0},
}

// domainProximity looks up the fixed domain-similarity matrix. Domains not
// in the matrix score 1.0 against themselves and 0.3 against anything else.
func domainProximity(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	if row, ok := domainProximityMatrix[la]; ok {
		if v, ok := row[lb]; ok {
			return v
		}
	}
	if la == lb {
		return 1.0
	}
	return 0.3
}

// levelAlignment scores hierarchy-depth closeness.
func levelAlignment(a, b entities.Level) float64 {
	diff := math.Abs(float64(a.Depth() - b.Depth()))
	return math.Max(0, 1-0.3*diff)
}

// contentTypeSimilarity compares level-specific payloads: difficulty for
// courses, section type for sections, concept type for concepts, and a flat
// default across mismatched levels.
func contentTypeSimilarity(a, b *entities.Node) float64 {
	switch {
	case a.Course != nil && b.Course != nil:
		diff := math.Abs(float64(a.Course.Difficulty.Index() - b.Course.Difficulty.Index()))
		return 1 - 0.4*diff
	case a.Section != nil && b.Section != nil:
		if a.Section.SectionType == b.Section.SectionType {
			return 1.0
		}
		return 0.3
	case a.Concept != nil && b.Concept != nil:
		if a.Concept.ConceptType == b.Concept.ConceptType {
			return 1.0
		}
		return 0.3
	default:
		return 0.5
	}
}

// FindSimilarNodes scans the whole graph for nodes similar to the reference,
// applying the optional filters, and returns them ranked by overall score.
func (c *SimilarityCalculator) FindSimilarNodes(referenceID string, opts FindSimilarOptions) []SimilarNode {
	ref, ok := c.nodes[referenceID]
	if !ok {
		return nil
	}

	excluded := map[string]bool{referenceID: true}
	for _, id := range opts.ExcludeIDs {
		excluded[id] = true
	}

	results := make([]SimilarNode, 0)
	for id, node := range c.nodes {
		if excluded[id] {
			continue
		}
		if opts.SameLevel && node.Level != ref.Level {
			continue
		}
		if opts.SameDomain && node.DomainID != ref.DomainID {
			continue
		}

		score := c.Similarity(referenceID, id)
		if score.Overall <= opts.MinSimilarity {
			continue
		}

		results = append(results, SimilarNode{
			Node:         node,
			Score:        score,
			Relationship: c.DetermineRelationship(referenceID, id),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score.Overall != results[j].Score.Overall {
			return results[i].Score.Overall > results[j].Score.Overall
		}
		return results[i].Node.ID < results[j].Node.ID
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

// DetermineRelationship classifies the target relative to the reference.
// Rules are evaluated in strict precedence order; a pair satisfying several
// rules resolves to the earliest one.
func (c *SimilarityCalculator) DetermineRelationship(referenceID, targetID string) Relationship {
	ref, okRef := c.nodes[referenceID]
	target, okTarget := c.nodes[targetID]
	if !okRef || !okTarget || referenceID == targetID {
		return RelationshipNone
	}

	// 1. Explicit direct connection (either direction), contains excluded.
	for _, conn := range c.connections {
		if !conn.Connects(referenceID, targetID) {
			continue
		}
		switch conn.Type {
		case entities.ConnectionPrerequisite:
			if conn.FromID == targetID {
				return RelationshipPrerequisite
			}
			return RelationshipDependent
		case entities.ConnectionRelated:
			return RelationshipRelated
		case entities.ConnectionNext:
			return RelationshipSequential
		}
	}

	// 2. Ancestry through the cached parent chains.
	for _, id := range c.ancestorChain[referenceID] {
		if id == targetID {
			return RelationshipAncestor
		}
	}
	for _, id := range c.ancestorChain[targetID] {
		if id == referenceID {
			return RelationshipDescendant
		}
	}

	// 3. Shared parent.
	if ref.ParentID != "" && ref.ParentID == target.ParentID {
		return RelationshipSibling
	}

	// 4. Same domain.
	if ref.DomainID == target.DomainID {
		return RelationshipSameDomain
	}

	// 5. Cross-domain with meaningful tag overlap.
	if c.tagOverlap(ref, target) > 0.3 {
		return RelationshipCrossDomain
	}

	return RelationshipNone
}

// FindPrerequisiteGaps walks the prerequisite cache depth-first from the
// target and reports unmet prerequisites ranked by importance.
//
// A single global visited set is used for the whole walk, so a prerequisite
// reachable through several chains is only examined at the first depth it is
// seen; gaps behind an already-visited node can go unreported. Known,
// intentional behavior.
func (c *SimilarityCalculator) FindPrerequisiteGaps(targetID string, completedIDs []string) []PrerequisiteGap {
	target, ok := c.nodes[targetID]
	if !ok {
		return nil
	}

	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	visited := map[string]bool{targetID: true}
	gaps := make([]PrerequisiteGap, 0)
	c.collectGaps(targetID, target, 0, completed, visited, &gaps)

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Importance != gaps[j].Importance {
			return gaps[i].Importance > gaps[j].Importance
		}
		return gaps[i].Node.ID < gaps[j].Node.ID
	})

	return gaps
}

func (c *SimilarityCalculator) collectGaps(
	nodeID string,
	target *entities.Node,
	depth int,
	completed map[string]bool,
	visited map[string]bool,
	gaps *[]PrerequisiteGap,
) {
	if depth >= maxDependencyDepth {
		return
	}

	for _, prereqID := range sortedKeys(c.prereqOf[nodeID]) {
		if visited[prereqID] {
			continue
		}
		visited[prereqID] = true

		if completed[prereqID] {
			continue
		}
		prereq, ok := c.nodes[prereqID]
		if !ok {
			continue
		}

		importance := math.Max(0.3, 1-float64(depth)*0.2)
		skippable, reason := assessGap(prereq, target)
		*gaps = append(*gaps, PrerequisiteGap{
			Node:        prereq,
			Depth:       depth,
			Importance:  importance,
			IsSkippable: skippable,
			Reason:      reason,
		})

		c.collectGaps(prereqID, target, depth+1, completed, visited, gaps)
	}
}

// assessGap derives skippability and a human-readable reason from the
// difficulty relationship between a prerequisite and the target.
func assessGap(prereq, target *entities.Node) (bool, string) {
	pd := prereq.DifficultyLevel()
	td := target.DifficultyLevel()

	switch {
	case pd != "" && td != "" && pd == td:
		return true, fmt.Sprintf("%s covers material at the same level; optional but related", prereq.Name)
	case pd == entities.DifficultyBeginner && td != "" && td != entities.DifficultyBeginner:
		return false, fmt.Sprintf("%s builds the fundamentals that %s assumes", prereq.Name, target.Name)
	default:
		return false, fmt.Sprintf("Recommended before starting %s", target.Name)
	}
}

// CalculateDependencyDepth returns the length of the longest prerequisite
// chain below the node.
func (c *SimilarityCalculator) CalculateDependencyDepth(nodeID string) int {
	if _, ok := c.nodes[nodeID]; !ok {
		return 0
	}
	return c.chainDepth(nodeID, map[string]bool{})
}

func (c *SimilarityCalculator) chainDepth(nodeID string, visited map[string]bool) int {
	if visited[nodeID] {
		return 0
	}
	visited[nodeID] = true

	longest := 0
	for prereqID := range c.prereqOf[nodeID] {
		if d := 1 + c.chainDepth(prereqID, visited); d > longest {
			longest = d
		}
	}
	return longest
}

// GetDependentNodes returns the full transitive closure of nodes that depend
// on the given node, directly or indirectly.
func (c *SimilarityCalculator) GetDependentNodes(nodeID string) []*entities.Node {
	if _, ok := c.nodes[nodeID]; !ok {
		return nil
	}

	visited := map[string]bool{nodeID: true}
	queue := []string{nodeID}
	result := make([]*entities.Node, 0)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, depID := range sortedKeys(c.dependentsOf[current]) {
			if visited[depID] {
				continue
			}
			visited[depID] = true
			queue = append(queue, depID)
			if node, ok := c.nodes[depID]; ok {
				result = append(result, node)
			}
		}
	}

	return result
}

// GetContextualNodes merges siblings, direct prerequisites and direct
// dependents into one ranked list. The first (highest) score seen per node
// wins.
func (c *SimilarityCalculator) GetContextualNodes(nodeID string, limit int) []ScoredNode {
	node, ok := c.nodes[nodeID]
	if !ok {
		return nil
	}

	scores := make(map[string]float64)
	record := func(id string, score float64) {
		if id == nodeID {
			return
		}
		if _, ok := c.nodes[id]; !ok {
			return
		}
		if _, seen := scores[id]; !seen {
			scores[id] = score
		}
	}

	if parent, ok := c.nodes[node.ParentID]; ok {
		for _, siblingID := range parent.ChildIDs {
			record(siblingID, 0.9)
		}
	}
	for _, prereqID := range sortedKeys(c.prereqOf[nodeID]) {
		record(prereqID, 0.8)
	}
	for _, depID := range sortedKeys(c.dependentsOf[nodeID]) {
		record(depID, 0.7)
	}

	result := make([]ScoredNode, 0, len(scores))
	for id, score := range scores {
		result = append(result, ScoredNode{Node: c.nodes[id], Score: score})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].Node.ID < result[j].Node.ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
