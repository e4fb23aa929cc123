package structure

import (
	"fmt"

	"github.com/matsen/blueprint/internal/blueprint"
)

// TreeNode is a node of the collapsible tree.
type TreeNode struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Type     string      `json:"type"`
	EventID  string      `json:"event_id,omitempty"`
	HasTitle bool        `json:"has_title"`
	Expanded bool        `json:"expanded"`
	Children []*TreeNode `json:"children,omitempty"`
}

// BuildTree builds the collapsible tree rooted at the node with identifier
// rootID (the root entry node when empty). Elided containers are replaced
// by their children at every depth; the requested root itself is always
// kept. Nodes shallower than expandedDepth are marked expanded, where
// depth is counted in the resulting tree and the root is at depth 0.
func BuildTree(doc *blueprint.Document, rootID string, expandedDepth int, opts Options) (*TreeNode, error) {
	if rootID == "" {
		rootID = opts.rootID()
	}
	root := blueprint.Find(doc.Pages, rootID)
	if root == nil {
		return nil, fmt.Errorf("%w: %q", ErrRootNotFound, rootID)
	}

	b := treeBuilder{
		elider:        elider{rootID: opts.rootID(), vocab: opts.vocabulary()},
		expandedDepth: expandedDepth,
	}
	return b.node(root, 0), nil
}

type treeBuilder struct {
	elider
	expandedDepth int
}

func (b treeBuilder) node(n *blueprint.Node, depth int) *TreeNode {
	t := &TreeNode{
		ID:       n.Key(),
		Label:    n.Label(),
		Type:     n.Type,
		EventID:  n.EventID,
		HasTitle: n.HasTitle(),
		Expanded: depth < b.expandedDepth,
	}
	for _, child := range n.Children {
		t.Children = append(t.Children, b.transform(child, depth+1)...)
	}
	return t
}

// transform returns the tree nodes that stand in for n: n itself, or the
// children of n spliced in its place when n is elided.
func (b treeBuilder) transform(n *blueprint.Node, depth int) []*TreeNode {
	if !b.elided(n) {
		return []*TreeNode{b.node(n, depth)}
	}

	var promoted []*TreeNode
	for _, child := range n.Children {
		promoted = append(promoted, b.transform(child, depth)...)
	}
	return promoted
}

// Walk visits the tree in pre-order.
func (t *TreeNode) Walk(fn func(n *TreeNode, depth int)) {
	t.walk(0, fn)
}

func (t *TreeNode) walk(depth int, fn func(n *TreeNode, depth int)) {
	fn(t, depth)
	for _, c := range t.Children {
		c.walk(depth+1, fn)
	}
}
