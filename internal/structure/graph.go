// Package structure derives the navigable hierarchy of a blueprint: a flat
// node/edge graph, a collapsible tree and the inventory of event ids.
package structure

import (
	"errors"
	"fmt"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
)

// ErrRootNotFound is returned when the document has no root entry node.
var ErrRootNotFound = errors.New("root entry node not found")

// Options configures structural analysis.
type Options struct {
	RootID     string               // root entry identifier, default blueprint.DefaultRootID
	MaxDepth   int                  // visible levels in the graph, 0 for no limit
	Vocabulary *classify.Vocabulary // default classify.DefaultVocabulary()
}

func (o Options) rootID() string {
	if o.RootID == "" {
		return blueprint.DefaultRootID
	}
	return o.RootID
}

func (o Options) vocabulary() classify.Vocabulary {
	if o.Vocabulary == nil {
		return classify.DefaultVocabulary()
	}
	return *o.Vocabulary
}

// GraphNode is a visible node of the structure graph.
type GraphNode struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	EventID  string `json:"event_id,omitempty"`
	HasTitle bool   `json:"has_title"`
}

// Edge links a visible parent to a visible child.
type Edge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Graph is the flat structure graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []Edge      `json:"edges"`
}

// Stats summarizes a graph.
type Stats struct {
	TotalNodes  int            `json:"total_nodes"`
	TotalEdges  int            `json:"total_edges"`
	NodesByType map[string]int `json:"nodes_by_type,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Stats returns node and edge counts.
func (g *Graph) Stats() Stats {
	s := Stats{
		TotalNodes:  len(g.Nodes),
		TotalEdges:  len(g.Edges),
		NodesByType: make(map[string]int),
	}
	for _, n := range g.Nodes {
		s.NodesByType[n.Type]++
	}
	return s
}

// elider decides which nodes are pass-through containers.
type elider struct {
	rootID string
	vocab  classify.Vocabulary
}

// elided reports whether n is a layout-only container with nothing to show.
// The root entry node is never elided.
func (e elider) elided(n *blueprint.Node) bool {
	if n.ID == e.rootID {
		return false
	}
	return e.vocab.IsLayout(n.Type) && !n.HasTitle() && n.EventID == ""
}

// Analyze builds the structure graph and event inventory below the root
// entry node. It returns ErrRootNotFound when the document has none.
func Analyze(doc *blueprint.Document, opts Options) (*Graph, []EventRecord, error) {
	root := blueprint.Find(doc.Pages, opts.rootID())
	if root == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrRootNotFound, opts.rootID())
	}
	return BuildGraph(root, opts), Inventory(root), nil
}

// BuildGraph builds the flat graph of root's subtree. Elided containers are
// left out and their children attached to the nearest visible ancestor;
// depth counts visible levels only.
func BuildGraph(root *blueprint.Node, opts Options) *Graph {
	b := graphBuilder{
		elider:   elider{rootID: opts.rootID(), vocab: opts.vocabulary()},
		maxDepth: opts.MaxDepth,
	}
	nodes, edges := b.visit(root, "", 1)

	g := &Graph{Nodes: nodes, Edges: edges}
	if g.Nodes == nil {
		g.Nodes = []GraphNode{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return g
}

type graphBuilder struct {
	elider
	maxDepth int
}

func (b graphBuilder) visit(n *blueprint.Node, parentID string, depth int) ([]GraphNode, []Edge) {
	if b.maxDepth > 0 && depth > b.maxDepth {
		return nil, nil
	}

	var nodes []GraphNode
	var edges []Edge

	nextParent, nextDepth := parentID, depth
	if !b.elided(n) {
		id := n.Key()
		nodes = append(nodes, GraphNode{
			ID:       id,
			Label:    n.Label(),
			Type:     n.Type,
			EventID:  n.EventID,
			HasTitle: n.HasTitle(),
		})
		if parentID != "" {
			edges = append(edges, Edge{Parent: parentID, Child: id})
		}
		nextParent, nextDepth = id, depth+1
	}

	for _, child := range n.Children {
		childNodes, childEdges := b.visit(child, nextParent, nextDepth)
		nodes = append(nodes, childNodes...)
		edges = append(edges, childEdges...)
	}

	return nodes, edges
}
