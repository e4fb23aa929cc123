package sources

import (
	"slices"
	"strings"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
)

// Style labels.
const (
	StyleNumeric = "numeric indicator"
	StyleImage   = "image indicator"
	StyleUnknown = "Unknown"
)

// columnFieldParams are the table content parameters that name a field,
// in the order they are inspected.
var columnFieldParams = []string{
	"text",          // plain text
	"columnKey",     // number line
	"showingNumber", // conditional display
	"target",        // comparison target
	"change",        // price change
	"quoteChange",   // price change percent
	"close",         // price
	"commKey",       // instrument name
}

// FieldStyleMap maps the field keys one node displays to the visual styles
// that display them. Keys keep the order they were discovered in.
type FieldStyleMap struct {
	keys   []string
	styles map[string][]string
}

// Add records that field is displayed with style. A style already recorded
// for the field is not repeated.
func (m *FieldStyleMap) Add(field, style string) {
	if m.styles == nil {
		m.styles = make(map[string][]string)
	}
	existing, ok := m.styles[field]
	if !ok {
		m.keys = append(m.keys, field)
	}
	if !slices.Contains(existing, style) {
		m.styles[field] = append(existing, style)
	}
}

// Style returns the comma-joined styles of field.
func (m FieldStyleMap) Style(field string) (string, bool) {
	styles, ok := m.styles[field]
	if !ok {
		return "", false
	}
	return strings.Join(styles, ", "), true
}

// Fields returns the field keys in discovery order.
func (m FieldStyleMap) Fields() []string {
	return slices.Clone(m.keys)
}

// Len returns the number of distinct fields.
func (m FieldStyleMap) Len() int {
	return len(m.keys)
}

// FieldStyles inspects a node's display configuration.
func FieldStyles(n *blueprint.Node, vocab classify.Vocabulary) FieldStyleMap {
	var m FieldStyleMap

	for _, item := range n.Contents() {
		if item.NumberKey != "" {
			m.Add(item.NumberKey, StyleNumeric)
		}
		if item.ImageKey != "" {
			m.Add(item.ImageKey, StyleImage)
		}
	}

	for _, col := range n.TableColumns() {
		contentType := col.ContentType
		if contentType == "" {
			contentType = StyleUnknown
		}
		for _, param := range columnFieldParams {
			key, ok := col.Params[param].(string)
			if !ok || key == "" || vocab.IsPlaceholderField(key) {
				continue
			}
			m.Add(key, contentType)
		}
	}

	return m
}
