// Package memory provides in-memory and file-backed adapters used in
// development and tests.
package memory

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"skillmap-backend/domain/core/entities"
)

// graphFixture is the YAML shape of a content graph file.
type graphFixture struct {
	Nodes       []nodeFixture       `yaml:"nodes"`
	Connections []connectionFixture `yaml:"connections"`
}

type nodeFixture struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Level          string   `yaml:"level"`
	Status         string   `yaml:"status"`
	Progress       float64  `yaml:"progress"`
	ParentID       string   `yaml:"parent_id"`
	ChildIDs       []string `yaml:"child_ids"`
	DomainID       string   `yaml:"domain_id"`
	ColorKey       string   `yaml:"color_key"`
	EstimatedHours float64  `yaml:"estimated_hours"`

	Domain  *domainFixture  `yaml:"domain"`
	Course  *courseFixture  `yaml:"course"`
	Chapter *chapterFixture `yaml:"chapter"`
	Section *sectionFixture `yaml:"section"`
	Concept *conceptFixture `yaml:"concept"`
}

type domainFixture struct {
	CourseCount int     `yaml:"course_count"`
	TotalHours  float64 `yaml:"total_hours"`
}

type courseFixture struct {
	Difficulty   string   `yaml:"difficulty"`
	ChapterCount int      `yaml:"chapter_count"`
	Skills       []string `yaml:"skills"`
}

type chapterFixture struct {
	SectionCount    int `yaml:"section_count"`
	XPReward        int `yaml:"xp_reward"`
	DurationMinutes int `yaml:"duration_minutes"`
}

type sectionFixture struct {
	SectionType string `yaml:"section_type"`
	Duration    int    `yaml:"duration"`
}

type conceptFixture struct {
	ConceptType     string   `yaml:"concept_type"`
	Content         string   `yaml:"content"`
	RelatedConcepts []string `yaml:"related_concepts"`
}

type connectionFixture struct {
	FromID string `yaml:"from_id"`
	ToID   string `yaml:"to_id"`
	Type   string `yaml:"type"`
	Label  string `yaml:"label"`
}

// GraphRepository loads the content graph from a YAML fixture file.
type GraphRepository struct {
	path   string
	logger *zap.Logger
}

// NewGraphRepository creates a repository over the given fixture file.
func NewGraphRepository(path string, logger *zap.Logger) *GraphRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphRepository{path: path, logger: logger}
}

// LoadGraph parses the fixture into the engine's graph shape. Duplicate node
// ids are an error; connections referencing unknown nodes are kept, the
// engine skips them itself.
func (r *GraphRepository) LoadGraph(ctx context.Context) (map[string]*entities.Node, []entities.Connection, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read graph fixture: %w", err)
	}

	var fixture graphFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, nil, fmt.Errorf("failed to parse graph fixture: %w", err)
	}

	nodes := make(map[string]*entities.Node, len(fixture.Nodes))
	for _, nf := range fixture.Nodes {
		if nf.ID == "" {
			return nil, nil, fmt.Errorf("graph fixture contains a node without an id")
		}
		if _, exists := nodes[nf.ID]; exists {
			return nil, nil, fmt.Errorf("duplicate node id %q in graph fixture", nf.ID)
		}
		nodes[nf.ID] = toNode(nf)
	}

	connections := make([]entities.Connection, 0, len(fixture.Connections))
	for _, cf := range fixture.Connections {
		connections = append(connections, entities.Connection{
			FromID: cf.FromID,
			ToID:   cf.ToID,
			Type:   entities.ConnectionType(cf.Type),
			Label:  cf.Label,
		})
	}

	r.logger.Info("content graph loaded",
		zap.String("path", r.path),
		zap.Int("nodes", len(nodes)),
		zap.Int("connections", len(connections)),
	)

	return nodes, connections, nil
}

func toNode(nf nodeFixture) *entities.Node {
	node := &entities.Node{
		ID:             nf.ID,
		Name:           nf.Name,
		Description:    nf.Description,
		Level:          entities.Level(nf.Level),
		Status:         entities.NodeStatus(nf.Status),
		Progress:       nf.Progress,
		ParentID:       nf.ParentID,
		ChildIDs:       nf.ChildIDs,
		DomainID:       nf.DomainID,
		ColorKey:       nf.ColorKey,
		EstimatedHours: nf.EstimatedHours,
	}
	if node.Status == "" {
		node.Status = entities.StatusActive
	}

	if nf.Domain != nil {
		node.Domain = &entities.DomainDetail{
			CourseCount: nf.Domain.CourseCount,
			TotalHours:  nf.Domain.TotalHours,
		}
	}
	if nf.Course != nil {
		node.Course = &entities.CourseDetail{
			Difficulty:   entities.Difficulty(nf.Course.Difficulty),
			ChapterCount: nf.Course.ChapterCount,
			Skills:       nf.Course.Skills,
		}
	}
	if nf.Chapter != nil {
		node.Chapter = &entities.ChapterDetail{
			SectionCount:    nf.Chapter.SectionCount,
			XPReward:        nf.Chapter.XPReward,
			DurationMinutes: nf.Chapter.DurationMinutes,
		}
	}
	if nf.Section != nil {
		node.Section = &entities.SectionDetail{
			SectionType: nf.Section.SectionType,
			Duration:    nf.Section.Duration,
		}
	}
	if nf.Concept != nil {
		node.Concept = &entities.ConceptDetail{
			ConceptType:     nf.Concept.ConceptType,
			Content:         nf.Concept.Content,
			RelatedConcepts: nf.Concept.RelatedConcepts,
		}
	}

	return node
}
