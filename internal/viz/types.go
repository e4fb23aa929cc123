// Package viz renders the navigation structure of a blueprint as HTML.
package viz

import "github.com/matsen/blueprint/internal/structure"

// Node roles used by the graph stylesheet.
const (
	RoleRoot   = "root"
	RoleEvent  = "event"
	RoleTitled = "titled"
	RolePlain  = "plain"
)

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one visible component of the navigation graph.
type Node struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Label   string `json:"label"`
	EventID string `json:"eventId,omitempty"`
	Role    string `json:"role"`
}

// Edge links a parent component to a child.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// FromStructure converts a navigation graph for rendering. The first node
// of g is its root.
func FromStructure(g *structure.Graph) *GraphData {
	data := &GraphData{
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0, len(g.Edges)),
	}

	for i, n := range g.Nodes {
		data.Nodes = append(data.Nodes, Node{
			ID:      n.ID,
			Type:    n.Type,
			Label:   n.Label,
			EventID: n.EventID,
			Role:    role(n, i == 0),
		})
	}
	for _, e := range g.Edges {
		data.Edges = append(data.Edges, Edge{Source: e.Parent, Target: e.Child})
	}
	return data
}

func role(n structure.GraphNode, isRoot bool) string {
	switch {
	case isRoot:
		return RoleRoot
	case n.EventID != "":
		return RoleEvent
	case n.HasTitle:
		return RoleTitled
	default:
		return RolePlain
	}
}
