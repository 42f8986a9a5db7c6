package entities

// ConnectionType classifies a directed edge between content nodes.
type ConnectionType string

const (
	ConnectionContains     ConnectionType = "contains"
	ConnectionPrerequisite ConnectionType = "prerequisite"
	ConnectionRelated      ConnectionType = "related"
	ConnectionNext         ConnectionType = "next"
)

// Connection is a directed edge in the content graph. Prerequisite edges are
// assumed to form a DAG; cycles are tolerated by traversal guards but never
// rejected up front.
type Connection struct {
	FromID string
	ToID   string
	Type   ConnectionType
	Label  string
}

// Connects reports whether the connection joins the two given nodes in
// either direction.
func (c Connection) Connects(a, b string) bool {
	return (c.FromID == a && c.ToID == b) || (c.FromID == b && c.ToID == a)
}
