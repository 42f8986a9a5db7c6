package entities

// Level identifies where a node sits in the content hierarchy.
type Level string

const (
	LevelDomain  Level = "domain"
	LevelCourse  Level = "course"
	LevelChapter Level = "chapter"
	LevelSection Level = "section"
	LevelConcept Level = "concept"
)

// Depth returns the hierarchy depth of a level, domain being the root.
func (l Level) Depth() int {
	switch l {
	case LevelDomain:
		return 0
	case LevelCourse:
		return 1
	case LevelChapter:
		return 2
	case LevelSection:
		return 3
	case LevelConcept:
		return 4
	default:
		return 0
	}
}

// Difficulty is the ordered difficulty scale used by course content.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Index returns the position of a difficulty on the ordered scale.
func (d Difficulty) Index() int {
	switch d {
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	default:
		return 0
	}
}

// NodeStatus represents the publication state of a content node.
type NodeStatus string

const (
	StatusDraft    NodeStatus = "draft"
	StatusActive   NodeStatus = "active"
	StatusArchived NodeStatus = "archived"
)

// Node is one unit of learning content in the graph. The five hierarchy
// levels share the common fields; exactly one of the level-specific detail
// pointers is expected to be set, matching Level.
//
// Nodes are owned by the caller and treated as immutable by the analyzers.
// Every relationship is expressed as an id, never an embedded reference.
type Node struct {
	ID             string
	Name           string
	Description    string
	Level          Level
	Status         NodeStatus
	Progress       float64 // 0-100
	ParentID       string  // empty means no parent
	ChildIDs       []string
	DomainID       string
	ColorKey       string
	EstimatedHours float64

	Domain  *DomainDetail
	Course  *CourseDetail
	Chapter *ChapterDetail
	Section *SectionDetail
	Concept *ConceptDetail
}

// DomainDetail carries domain-level aggregates.
type DomainDetail struct {
	CourseCount int
	TotalHours  float64
}

// CourseDetail carries course-level payload.
type CourseDetail struct {
	Difficulty   Difficulty
	ChapterCount int
	Skills       []string
}

// ChapterDetail carries chapter-level payload.
type ChapterDetail struct {
	SectionCount    int
	XPReward        int
	DurationMinutes int
}

// SectionDetail carries section-level payload.
type SectionDetail struct {
	SectionType string
	Duration    int
}

// ConceptDetail carries concept-level payload.
type ConceptDetail struct {
	ConceptType     string
	Content         string
	RelatedConcepts []string
}

// DifficultyLevel returns the course difficulty, or empty for non-course nodes.
func (n *Node) DifficultyLevel() Difficulty {
	if n.Course != nil {
		return n.Course.Difficulty
	}
	return ""
}

// Skills returns the skills taught by a course node, nil otherwise.
func (n *Node) Skills() []string {
	if n.Course != nil {
		return n.Course.Skills
	}
	return nil
}
