// Package instrument manages the event ids attached to blueprint nodes:
// listing candidate nodes, applying edits and reconciling the ids with a
// reference event list.
package instrument

import (
	"slices"
	"strings"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
)

// DefaultAllowedTypes are the container types offered for instrumentation.
var DefaultAllowedTypes = []string{
	classify.TypeStaticContainer,
	classify.TypeLabelTabContainer,
	classify.TypeBottomTabContainer,
	classify.TypeTabContainer,
	classify.TypeVerticalScroll,
}

// DefaultMaxDepth is the row depth limit used when none is configured.
const DefaultMaxDepth = 4

// CollectOptions selects the nodes Collect returns.
type CollectOptions struct {
	// AllowedTypes are the node types eligible for an event id. With no
	// allowed types only nodes already carrying a valid id are collected.
	AllowedTypes []string
	// MaxDepth limits rows without a valid event id. Zero means no limit.
	MaxDepth int
	// JunkKeywords mark titles that are never collected unless the node
	// already carries a valid id. Nil means classify.DefaultJunkKeywords.
	JunkKeywords []string
}

// Row is one node offered for instrumentation.
type Row struct {
	ID            string `json:"uuid"`
	Path          string `json:"path"`
	Type          string `json:"component"`
	Title         string `json:"title"`
	EventID       string `json:"event_id"`
	Depth         int    `json:"depth"`
	HasValidEvent bool   `json:"has_valid_event"`
	Status        Status `json:"status,omitempty"`
}

// Collect lists the nodes of every page that may carry an event id.
// Pages are at depth 1 and always count as an allowed type. A node that
// already carries a valid event id is always listed, whatever its depth.
func Collect(doc *blueprint.Document, opts CollectOptions) []Row {
	junk := opts.JunkKeywords
	if junk == nil {
		junk = classify.DefaultJunkKeywords
	}

	rows := []Row{}
	for _, page := range doc.Pages {
		rows = append(rows, collect(page, "", 1, opts.AllowedTypes, junk)...)
	}

	if opts.MaxDepth <= 0 {
		return rows
	}
	return slices.DeleteFunc(rows, func(r Row) bool {
		return r.Depth > opts.MaxDepth && !r.HasValidEvent
	})
}

func collect(n *blueprint.Node, parentPath string, depth int, allowed, junk []string) []Row {
	path := n.Label()
	if parentPath != "" {
		path = parentPath + " > " + path
	}

	valid := classify.IsValidEventID(n.EventID)
	target := len(allowed) > 0 && (depth == 1 || slices.Contains(allowed, n.Type))

	var rows []Row
	if (target && !classify.IsJunkTitle(n.Title, junk)) || valid {
		rows = append(rows, Row{
			ID:            n.Key(),
			Path:          path,
			Type:          n.Type,
			Title:         n.Title,
			EventID:       n.EventID,
			Depth:         depth,
			HasValidEvent: valid,
		})
	}

	for _, child := range n.Children {
		rows = append(rows, collect(child, path, depth+1, allowed, junk)...)
	}
	return rows
}

// ApplyEdits returns a copy of doc with the event ids of the nodes named in
// edits replaced. Values are trimmed; a blank value removes the node's
// event id. doc itself is not modified.
func ApplyEdits(doc *blueprint.Document, edits map[string]string) *blueprint.Document {
	return doc.Rewrite(func(obj map[string]any) {
		id, ok := blueprint.AsString(obj[blueprint.KeyID])
		if !ok {
			return
		}
		value, ok := edits[id]
		if !ok {
			return
		}
		if value = strings.TrimSpace(value); value != "" {
			obj[blueprint.KeyEventID] = value
		} else {
			delete(obj, blueprint.KeyEventID)
		}
	})
}

// ScanValidIDs returns the distinct valid event ids of doc in document order.
func ScanValidIDs(doc *blueprint.Document) []string {
	ids := []string{}
	seen := make(map[string]bool)
	blueprint.Walk(doc.Pages, func(n *blueprint.Node, _ int) {
		id := strings.TrimSpace(n.EventID)
		if !classify.IsValidEventID(id) || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})
	return ids
}
