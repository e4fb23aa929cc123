// Package sources reports which data feeds each blueprint component reads
// and which of their fields it displays.
package sources

import (
	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
)

// DefaultGroup is the group of components outside any top-level tab.
const DefaultGroup = "Other"

// Context is the state inherited from ancestors during a traversal.
// It is passed by value: a node's changes reach its descendants only.
type Context struct {
	CurrentGroup    string // enclosing top-level tab
	ParentName      string // nearest ancestor with a meaningful title
	InsideMain      bool   // traversal is inside the root entry node
	JustEnteredMain bool   // the previous step was the root entry node
}

// NewContext returns the context a page traversal starts with.
func NewContext() Context {
	return Context{CurrentGroup: DefaultGroup}
}

// Enter returns the context for n and its descendants.
func (c Context) Enter(n *blueprint.Node, rootID string, vocab classify.Vocabulary) Context {
	next := c
	isRoot := n.ID == rootID

	if isRoot {
		next.InsideMain = true
	}

	if c.InsideMain && c.JustEnteredMain {
		if n.HasTitle() {
			next.CurrentGroup = n.Title
		}
		next.JustEnteredMain = false
	} else if isRoot {
		next.JustEnteredMain = true
	}

	if n.HasTitle() && !vocab.IsStructural(n.Type) {
		next.ParentName = n.Title
	}

	return next
}
