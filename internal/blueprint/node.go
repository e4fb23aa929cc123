// Package blueprint defines the node tree of a UI blueprint document and
// the rules every traversal shares for reading it.
package blueprint

import (
	"strconv"
	"strings"
)

// DefaultRootID is the identifier of the application's navigation entry node.
const DefaultRootID = "20000001"

// UnknownType is the type name given to nodes that do not declare one.
const UnknownType = "Unknown"

// Wire keys of a node object.
const (
	KeyID          = "uuid"
	KeyType        = "name"
	KeyParameters  = "parameters"
	KeyTitle       = "title"
	KeyEventID     = "eventId"
	KeyChildren    = "subComponents"
	KeySource      = "source"
	KeyReadSources = "readSources"
	KeyPages       = "pages"
)

// Node is one component of the blueprint tree.
//
// Fields are read leniently: a key that is missing or holds a value of the
// wrong type is treated as absent. A node without a children key is a leaf.
type Node struct {
	ID       string         // uuid, may be empty
	Type     string         // component archetype name
	Title    string         // title with template braces stripped
	RawTitle string         // title as written in the document
	EventID  string         // instrumentation tag
	Params   map[string]any // archetype-specific configuration, nil if absent
	Children []*Node

	pos string         // positional path from the page list, e.g. "0.3.1"
	raw map[string]any // the object this node was read from
}

// Key returns the node's identifier, or a positional key when the node has none.
func (n *Node) Key() string {
	if n.ID != "" {
		return n.ID
	}
	return "auto:" + n.pos
}

// HasTitle reports whether the node carries a non-empty title.
func (n *Node) HasTitle() bool {
	return n.Title != ""
}

// Label returns the title if present, otherwise the type name.
func (n *Node) Label() string {
	if n.Title != "" {
		return n.Title
	}
	return n.Type
}

// Param returns a raw parameter value, or nil.
func (n *Node) Param(key string) any {
	if n.Params == nil {
		return nil
	}
	return n.Params[key]
}

// Field returns a raw node-level value, or nil.
func (n *Node) Field(key string) any {
	if n.raw == nil {
		return nil
	}
	return n.raw[key]
}

// CleanTitle removes template braces from a title.
func CleanTitle(title string) string {
	title = strings.ReplaceAll(title, "{{", "")
	return strings.ReplaceAll(title, "}}", "")
}

// newNode builds a node from a decoded value. Non-object values yield nil.
func newNode(v any, pos string) *Node {
	obj := AsObject(v)
	if obj == nil {
		return nil
	}

	n := &Node{
		Type: UnknownType,
		pos:  pos,
		raw:  obj,
	}
	if id, ok := AsString(obj[KeyID]); ok {
		n.ID = id
	}
	if t, ok := obj[KeyType].(string); ok && t != "" {
		n.Type = t
	}
	n.Params = AsObject(obj[KeyParameters])
	if title, ok := n.Param(KeyTitle).(string); ok {
		n.RawTitle = title
		n.Title = CleanTitle(title)
	}
	if eid, ok := obj[KeyEventID].(string); ok {
		n.EventID = eid
	}

	for i, c := range AsList(obj[KeyChildren]) {
		if child := newNode(c, pos+"."+strconv.Itoa(i)); child != nil {
			n.Children = append(n.Children, child)
		}
	}

	return n
}
