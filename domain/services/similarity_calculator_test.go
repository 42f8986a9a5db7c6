package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmap-backend/domain/core/entities"
)

func courseNode(id, name, domainID, parentID string, difficulty entities.Difficulty, skills ...string) *entities.Node {
	return &entities.Node{
		ID:       id,
		Name:     name,
		Level:    entities.LevelCourse,
		Status:   entities.StatusActive,
		ParentID: parentID,
		DomainID: domainID,
		Course: &entities.CourseDetail{
			Difficulty: difficulty,
			Skills:     skills,
		},
	}
}

func nodeMap(nodes ...*entities.Node) map[string]*entities.Node {
	m := make(map[string]*entities.Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

func prereq(fromID, toID string) entities.Connection {
	return entities.Connection{FromID: fromID, ToID: toID, Type: entities.ConnectionPrerequisite}
}

func newTestCalculator(nodes map[string]*entities.Node, connections []entities.Connection) *SimilarityCalculator {
	return NewSimilarityCalculator(nodes, connections, DefaultSimilarityWeights(), nil)
}

func TestSimilarity_WorkedExample(t *testing.T) {
	parent := &entities.Node{ID: "p", Name: "React", Level: entities.LevelDomain, DomainID: "frontend", ChildIDs: []string{"c1", "c2"}}
	c1 := courseNode("c1", "Hooks", "frontend", "p", entities.DifficultyBeginner, "hooks")
	c2 := courseNode("c2", "Hooks Context Patterns", "frontend", "p", entities.DifficultyIntermediate, "hooks", "context")

	calc := newTestCalculator(nodeMap(parent, c1, c2), []entities.Connection{prereq("c1", "c2")})

	score := calc.Similarity("c1", "c2")
	assert.InDelta(t, 0.5, score.TagOverlap, 1e-9)
	assert.InDelta(t, 1.0, score.DependencyDistance, 1e-9)
	assert.InDelta(t, 1.0, score.DomainProximity, 1e-9)
	assert.InDelta(t, 1.0, score.LevelAlignment, 1e-9)
	assert.InDelta(t, 0.6, score.ContentTypeSimilarity, 1e-9)
	assert.InDelta(t, 0.785, score.Overall, 1e-9)
}

func TestSimilarity_IsSymmetric(t *testing.T) {
	a := courseNode("a", "Go Basics", "backend", "", entities.DifficultyBeginner, "go")
	b := courseNode("b", "Go Concurrency", "backend", "", entities.DifficultyAdvanced, "go", "goroutines")

	calc := newTestCalculator(nodeMap(a, b), []entities.Connection{prereq("a", "b")})

	forward := calc.Similarity("a", "b")
	backward := calc.Similarity("b", "a")
	assert.Equal(t, forward, backward)
}

func TestSimilarity_SameAndUnknownNodesScoreZero(t *testing.T) {
	a := courseNode("a", "Go Basics", "backend", "", entities.DifficultyBeginner, "go")
	calc := newTestCalculator(nodeMap(a), nil)

	assert.Equal(t, SimilarityScore{}, calc.Similarity("a", "a"))
	assert.Equal(t, SimilarityScore{}, calc.Similarity("a", "missing"))
	assert.Equal(t, SimilarityScore{}, calc.Similarity("missing", "a"))
}

func TestSimilarity_OverallClampedWithOversizedWeights(t *testing.T) {
	a := courseNode("a", "Docker Basics", "devops", "", entities.DifficultyBeginner, "docker")
	b := courseNode("b", "Docker Compose", "devops", "", entities.DifficultyBeginner, "docker", "compose")

	calc := NewSimilarityCalculator(nodeMap(a, b), []entities.Connection{prereq("a", "b")}, SimilarityWeights{
		TagOverlap:            1,
		DependencyDistance:    1,
		DomainProximity:       1,
		LevelAlignment:        1,
		ContentTypeSimilarity: 1,
	}, nil)

	score := calc.Similarity("a", "b")
	assert.Equal(t, 1.0, score.Overall)
}

func TestDependencyDistance_Tiers(t *testing.T) {
	shared := courseNode("shared", "Terminal Basics", "devops", "", entities.DifficultyBeginner, "shell")
	a := courseNode("a", "Bash Scripting", "devops", "", entities.DifficultyIntermediate, "bash")
	b := courseNode("b", "Makefiles", "devops", "", entities.DifficultyIntermediate, "make")
	siblingParent := &entities.Node{ID: "sp", Name: "Kubernetes", Level: entities.LevelCourse, DomainID: "devops", ChildIDs: []string{"s1", "s2"}}
	s1 := &entities.Node{ID: "s1", Name: "Pods", Level: entities.LevelChapter, DomainID: "devops", ParentID: "sp"}
	s2 := &entities.Node{ID: "s2", Name: "Services", Level: entities.LevelChapter, DomainID: "devops", ParentID: "sp"}
	lonely := courseNode("lonely", "Figma", "design", "", entities.DifficultyBeginner, "figma")

	calc := newTestCalculator(
		nodeMap(shared, a, b, siblingParent, s1, s2, lonely),
		[]entities.Connection{prereq("shared", "a"), prereq("shared", "b")},
	)

	// Direct prerequisite scores 1.0.
	assert.InDelta(t, 1.0, calc.Similarity("shared", "a").DependencyDistance, 1e-9)
	// One shared prerequisite out of one scores 0.7 + 0.2.
	assert.InDelta(t, 0.9, calc.Similarity("a", "b").DependencyDistance, 1e-9)
	// Pure siblings score 0.6.
	assert.InDelta(t, 0.6, calc.Similarity("s1", "s2").DependencyDistance, 1e-9)
	// Disconnected nodes score 0.
	assert.InDelta(t, 0.0, calc.Similarity("lonely", "a").DependencyDistance, 1e-9)
}

func TestDependencyDistance_GraphProximity(t *testing.T) {
	// a -> m -> b gives two hops: 0.5/2.
	a := courseNode("a", "HTML", "frontend", "", entities.DifficultyBeginner, "html")
	m := courseNode("m", "CSS", "frontend", "", entities.DifficultyBeginner, "css")
	b := courseNode("b", "Sass", "frontend", "", entities.DifficultyIntermediate, "sass")

	calc := newTestCalculator(nodeMap(a, m, b), []entities.Connection{prereq("a", "m"), prereq("m", "b")})

	assert.InDelta(t, 0.25, calc.Similarity("a", "b").DependencyDistance, 1e-9)
}

func TestDomainProximity(t *testing.T) {
	tests := []struct {
		name     string
		domainA  string
		domainB  string
		expected float64
	}{
		{"same known domain", "frontend", "frontend", 1.0},
		{"frontend to mobile", "frontend", "mobile", 0.7},
		{"backend to design", "backend", "design", 0.2},
		{"case insensitive", "Frontend", "BACKEND", 0.6},
		{"unknown same domain", "gamedev", "gamedev", 1.0},
		{"unknown pair", "gamedev", "frontend", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, domainProximity(tt.domainA, tt.domainB), 1e-9)
		})
	}
}

func TestLevelAlignment(t *testing.T) {
	assert.InDelta(t, 1.0, levelAlignment(entities.LevelCourse, entities.LevelCourse), 1e-9)
	assert.InDelta(t, 0.7, levelAlignment(entities.LevelCourse, entities.LevelChapter), 1e-9)
	assert.InDelta(t, 0.4, levelAlignment(entities.LevelCourse, entities.LevelSection), 1e-9)
	// Domain to concept spans four levels.
	assert.InDelta(t, 0.0, levelAlignment(entities.LevelDomain, entities.LevelConcept), 1e-9)
}

func TestFindSimilarNodes_FiltersAndRanking(t *testing.T) {
	ref := courseNode("ref", "React Hooks", "frontend", "", entities.DifficultyIntermediate, "react", "hooks")
	close1 := courseNode("close1", "React State", "frontend", "", entities.DifficultyIntermediate, "react", "state")
	far := courseNode("far", "Color Theory", "design", "", entities.DifficultyBeginner, "color")
	excluded := courseNode("skip", "React Patterns", "frontend", "", entities.DifficultyIntermediate, "react")

	calc := newTestCalculator(nodeMap(ref, close1, far, excluded), nil)

	results := calc.FindSimilarNodes("ref", FindSimilarOptions{
		MinSimilarity: 0.2,
		ExcludeIDs:    []string{"skip"},
	})
	require.NotEmpty(t, results)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score.Overall, results[i].Score.Overall)
	}
	for _, r := range results {
		assert.NotEqual(t, "ref", r.Node.ID)
		assert.NotEqual(t, "skip", r.Node.ID)
		assert.Greater(t, r.Score.Overall, 0.2)
	}

	limited := calc.FindSimilarNodes("ref", FindSimilarOptions{Limit: 1})
	assert.Len(t, limited, 1)
	assert.Equal(t, "close1", limited[0].Node.ID)
}

func TestFindSimilarNodes_UnknownReference(t *testing.T) {
	calc := newTestCalculator(nodeMap(), nil)
	assert.Nil(t, calc.FindSimilarNodes("missing", FindSimilarOptions{}))
}

func TestDetermineRelationship_Precedence(t *testing.T) {
	parent := &entities.Node{ID: "p", Name: "Testing", Level: entities.LevelCourse, DomainID: "backend", ChildIDs: []string{"a", "b", "c"}}
	a := &entities.Node{ID: "a", Name: "Unit Tests", Level: entities.LevelChapter, DomainID: "backend", ParentID: "p"}
	b := &entities.Node{ID: "b", Name: "Mocks", Level: entities.LevelChapter, DomainID: "backend", ParentID: "p"}
	c := &entities.Node{ID: "c", Name: "Fakes", Level: entities.LevelChapter, DomainID: "backend", ParentID: "p"}

	calc := newTestCalculator(nodeMap(parent, a, b, c), []entities.Connection{
		{FromID: "a", ToID: "b", Type: entities.ConnectionRelated},
	})

	// An explicit related connection beats the sibling rule.
	assert.Equal(t, RelationshipRelated, calc.DetermineRelationship("a", "b"))
	// Without a connection the shared parent wins.
	assert.Equal(t, RelationshipSibling, calc.DetermineRelationship("a", "c"))
	// The parent itself is an ancestor / descendant pair.
	assert.Equal(t, RelationshipAncestor, calc.DetermineRelationship("a", "p"))
	assert.Equal(t, RelationshipDescendant, calc.DetermineRelationship("p", "a"))
}

func TestDetermineRelationship_PrerequisiteDirection(t *testing.T) {
	a := courseNode("a", "SQL Basics", "data", "", entities.DifficultyBeginner, "sql")
	b := courseNode("b", "Query Tuning", "data", "", entities.DifficultyAdvanced, "sql")

	calc := newTestCalculator(nodeMap(a, b), []entities.Connection{prereq("a", "b")})

	// From b's point of view, a is the prerequisite.
	assert.Equal(t, RelationshipPrerequisite, calc.DetermineRelationship("b", "a"))
	// From a's point of view, b depends on it.
	assert.Equal(t, RelationshipDependent, calc.DetermineRelationship("a", "b"))
}

func TestDetermineRelationship_DomainsAndNone(t *testing.T) {
	a := courseNode("a", "Kotlin Coroutines", "mobile", "", entities.DifficultyAdvanced, "kotlin", "coroutines")
	sameDomain := courseNode("sd", "Jetpack Compose", "mobile", "", entities.DifficultyIntermediate, "compose")
	crossDomain := courseNode("cd", "Coroutines Kotlin Deep Dive", "backend", "", entities.DifficultyAdvanced, "kotlin", "coroutines")
	unrelated := courseNode("u", "Typography", "design", "", entities.DifficultyBeginner, "fonts")

	calc := newTestCalculator(nodeMap(a, sameDomain, crossDomain, unrelated), nil)

	assert.Equal(t, RelationshipSameDomain, calc.DetermineRelationship("a", "sd"))
	assert.Equal(t, RelationshipCrossDomain, calc.DetermineRelationship("a", "cd"))
	assert.Equal(t, RelationshipNone, calc.DetermineRelationship("a", "u"))
	assert.Equal(t, RelationshipNone, calc.DetermineRelationship("a", "a"))
}

func TestFindPrerequisiteGaps(t *testing.T) {
	// deep -> mid -> target prerequisite chain.
	deep := courseNode("deep", "Programming Basics", "backend", "", entities.DifficultyBeginner, "basics")
	mid := courseNode("mid", "Go Basics", "backend", "", entities.DifficultyBeginner, "go")
	target := courseNode("target", "Go Web Services", "backend", "", entities.DifficultyIntermediate, "go", "http")

	calc := newTestCalculator(nodeMap(deep, mid, target), []entities.Connection{
		prereq("deep", "mid"),
		prereq("mid", "target"),
	})

	gaps := calc.FindPrerequisiteGaps("target", nil)
	require.Len(t, gaps, 2)

	// Direct gap first, with full importance.
	assert.Equal(t, "mid", gaps[0].Node.ID)
	assert.InDelta(t, 1.0, gaps[0].Importance, 1e-9)
	assert.False(t, gaps[0].IsSkippable)
	assert.Equal(t, "deep", gaps[1].Node.ID)
	assert.InDelta(t, 0.8, gaps[1].Importance, 1e-9)

	// Completing the direct prerequisite hides the whole chain behind it.
	assert.Empty(t, calc.FindPrerequisiteGaps("target", []string{"mid"}))

	// A node without prerequisites has no gaps.
	assert.Empty(t, calc.FindPrerequisiteGaps("deep", nil))
}

func TestFindPrerequisiteGaps_SkippableSameDifficulty(t *testing.T) {
	a := courseNode("a", "REST Design", "backend", "", entities.DifficultyIntermediate, "rest")
	b := courseNode("b", "gRPC Services", "backend", "", entities.DifficultyIntermediate, "grpc")

	calc := newTestCalculator(nodeMap(a, b), []entities.Connection{prereq("a", "b")})

	gaps := calc.FindPrerequisiteGaps("b", nil)
	require.Len(t, gaps, 1)
	assert.True(t, gaps[0].IsSkippable)
	assert.Contains(t, gaps[0].Reason, "same level")
}

func TestCalculateDependencyDepth(t *testing.T) {
	a := courseNode("a", "A", "backend", "", entities.DifficultyBeginner)
	b := courseNode("b", "B", "backend", "", entities.DifficultyBeginner)
	c := courseNode("c", "C", "backend", "", entities.DifficultyIntermediate)

	calc := newTestCalculator(nodeMap(a, b, c), []entities.Connection{
		prereq("a", "b"),
		prereq("b", "c"),
	})

	assert.Equal(t, 0, calc.CalculateDependencyDepth("a"))
	assert.Equal(t, 1, calc.CalculateDependencyDepth("b"))
	assert.Equal(t, 2, calc.CalculateDependencyDepth("c"))
	assert.Equal(t, 0, calc.CalculateDependencyDepth("missing"))
}

func TestGetDependentNodes_TransitiveClosure(t *testing.T) {
	a := courseNode("a", "A", "backend", "", entities.DifficultyBeginner)
	b := courseNode("b", "B", "backend", "", entities.DifficultyBeginner)
	c := courseNode("c", "C", "backend", "", entities.DifficultyIntermediate)
	unrelated := courseNode("u", "U", "backend", "", entities.DifficultyBeginner)

	calc := newTestCalculator(nodeMap(a, b, c, unrelated), []entities.Connection{
		prereq("a", "b"),
		prereq("b", "c"),
	})

	dependents := calc.GetDependentNodes("a")
	require.Len(t, dependents, 2)
	assert.Equal(t, "b", dependents[0].ID)
	assert.Equal(t, "c", dependents[1].ID)

	assert.Empty(t, calc.GetDependentNodes("c"))
	assert.Nil(t, calc.GetDependentNodes("missing"))
}

func TestGetContextualNodes(t *testing.T) {
	parent := &entities.Node{ID: "p", Name: "Parent", Level: entities.LevelCourse, DomainID: "backend", ChildIDs: []string{"n", "sib"}}
	n := &entities.Node{ID: "n", Name: "Node", Level: entities.LevelChapter, DomainID: "backend", ParentID: "p"}
	sib := &entities.Node{ID: "sib", Name: "Sibling", Level: entities.LevelChapter, DomainID: "backend", ParentID: "p"}
	pre := courseNode("pre", "Prereq", "backend", "", entities.DifficultyBeginner)
	dep := courseNode("dep", "Dependent", "backend", "", entities.DifficultyAdvanced)

	calc := newTestCalculator(nodeMap(parent, n, sib, pre, dep), []entities.Connection{
		prereq("pre", "n"),
		prereq("n", "dep"),
	})

	result := calc.GetContextualNodes("n", 0)
	require.Len(t, result, 3)
	assert.Equal(t, "sib", result[0].Node.ID)
	assert.InDelta(t, 0.9, result[0].Score, 1e-9)
	assert.Equal(t, "pre", result[1].Node.ID)
	assert.InDelta(t, 0.8, result[1].Score, 1e-9)
	assert.Equal(t, "dep", result[2].Node.ID)
	assert.InDelta(t, 0.7, result[2].Score, 1e-9)

	limited := calc.GetContextualNodes("n", 1)
	assert.Len(t, limited, 1)
}

func TestUpdateWeights_ChangesOverall(t *testing.T) {
	a := courseNode("a", "Go Basics", "backend", "", entities.DifficultyBeginner, "go")
	b := courseNode("b", "Go Testing", "backend", "", entities.DifficultyBeginner, "go", "testing")

	calc := newTestCalculator(nodeMap(a, b), nil)
	before := calc.Similarity("a", "b").Overall

	calc.UpdateWeights(SimilarityWeights{TagOverlap: 1.0})
	after := calc.Similarity("a", "b")

	assert.NotEqual(t, before, after.Overall)
	assert.InDelta(t, after.TagOverlap, after.Overall, 1e-9)
}
