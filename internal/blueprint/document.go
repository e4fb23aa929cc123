package blueprint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrMalformed is returned when a payload cannot be read as a blueprint.
var ErrMalformed = errors.New("malformed blueprint")

// Document is a parsed blueprint: an ordered list of page nodes.
type Document struct {
	Pages []*Node

	raw map[string]any
}

// Parse reads a JSON blueprint. Numbers keep their literal form so that a
// document written back out is unchanged apart from deliberate edits.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}

	return FromValue(v)
}

// ParseYAML reads a YAML blueprint with the same shape as the JSON form.
func ParseYAML(data []byte) (*Document, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	return FromValue(normalize(v))
}

// FromValue builds a document from an already decoded value.
// The top level must be an object; a missing or non-list pages key yields
// an empty document.
func FromValue(v any) (*Document, error) {
	obj := AsObject(v)
	if obj == nil {
		return nil, fmt.Errorf("%w: top level is %T, want object", ErrMalformed, v)
	}

	doc := &Document{raw: obj}
	for i, p := range AsList(obj[KeyPages]) {
		if page := newNode(p, strconv.Itoa(i)); page != nil {
			doc.Pages = append(doc.Pages, page)
		}
	}
	return doc, nil
}

// MarshalJSON writes the document back in its wire form.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d.raw == nil {
		return []byte(`{"pages":[]}`), nil
	}
	return json.Marshal(d.raw)
}

// Rewrite returns a new document in which every node object has been
// shallow-copied and passed to fn. Values below a node object (parameters,
// source lists) are shared with the receiver, which is left untouched.
func (d *Document) Rewrite(fn func(obj map[string]any)) *Document {
	top := make(map[string]any, len(d.raw))
	for k, v := range d.raw {
		top[k] = v
	}
	if pages := AsList(d.raw[KeyPages]); pages != nil {
		top[KeyPages] = rewriteList(pages, fn)
	}

	// top is an object by construction
	doc, _ := FromValue(top)
	return doc
}

func rewriteList(items []any, fn func(obj map[string]any)) []any {
	out := make([]any, len(items))
	for i, item := range items {
		obj := AsObject(item)
		if obj == nil {
			out[i] = item
			continue
		}

		clone := make(map[string]any, len(obj))
		for k, v := range obj {
			clone[k] = v
		}
		if children := AsList(obj[KeyChildren]); children != nil {
			clone[KeyChildren] = rewriteList(children, fn)
		}
		fn(clone)
		out[i] = clone
	}
	return out
}

// Find returns the first node, in pre-order, whose identifier is id.
func Find(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits nodes in pre-order. depth is 1 for the given nodes.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	walk(nodes, 1, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int)) {
	for _, n := range nodes {
		fn(n, depth)
		walk(n.Children, depth+1, fn)
	}
}

// Count returns the number of nodes reachable from nodes.
func Count(nodes []*Node) int {
	total := 0
	Walk(nodes, func(*Node, int) { total++ })
	return total
}
