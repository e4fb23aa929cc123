package sources

import (
	"fmt"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
)

// Labels used when a value cannot be resolved.
const (
	SourceIDUnknown   = "unknown"
	SourceIDSystem    = "System/Calc"
	SourceIDMissing   = "N/A"
	LabelRawData      = "raw data"
	LabelUnknown      = "unknown"
	NoFieldsDetected  = "(no fields detected)"
	DefaultParentName = "general"
)

// Field is one field a source provides, with the style that displays it.
type Field struct {
	Name  string `json:"name"`
	Style string `json:"style"`
}

// Record describes one source declared on one component.
type Record struct {
	Group             string  `json:"group"`
	DisplayName       string  `json:"display_name"`
	NodeID            string  `json:"node_id"`
	SourceType        string  `json:"source_type"`
	SourceID          string  `json:"source_id"`
	Fields            []Field `json:"fields"`
	FieldsAreExplicit bool    `json:"fields_are_explicit"`
}

// resolveSourceID returns the identity of a source according to its kind.
func resolveSourceID(decl blueprint.SourceDecl) string {
	switch classify.ClassifySource(decl.Name) {
	case classify.SourceCatalogue:
		if num, ok := blueprint.AsString(decl.Params["dtnoNum"]); ok {
			return num
		}
		return SourceIDMissing
	case classify.SourceSpreadsheet:
		name, ok := blueprint.AsString(decl.Params["sheetName"])
		if !ok {
			name = "NoName"
		}
		id, ok := blueprint.AsString(decl.Params["sheetId"])
		if !ok {
			id = "NoID"
		}
		return fmt.Sprintf("%s (%s)", name, id)
	case classify.SourceSystem:
		return SourceIDSystem
	default:
		return SourceIDUnknown
	}
}

// resolveFields returns the fields of a source and whether the source
// declared them itself. Sources without a column list are described by the
// fields the component displays.
func resolveFields(decl blueprint.SourceDecl, styles FieldStyleMap) ([]Field, bool) {
	if len(decl.Columns) > 0 {
		fields := make([]Field, 0, len(decl.Columns))
		for _, col := range decl.Columns {
			style, ok := styles.Style(col)
			if !ok {
				style = LabelRawData
			}
			fields = append(fields, Field{Name: col, Style: style})
		}
		return fields, true
	}

	if styles.Len() == 0 {
		return []Field{{Name: NoFieldsDetected}}, false
	}

	fields := make([]Field, 0, styles.Len())
	for _, key := range styles.Fields() {
		style, ok := styles.Style(key)
		if !ok {
			style = LabelUnknown
		}
		fields = append(fields, Field{Name: key, Style: style})
	}
	return fields, false
}

// displayName builds the "parent / component" label of a record.
func displayName(parentName, label string, vocab classify.Vocabulary) string {
	parent := parentName
	if parent == "" {
		parent = DefaultParentName
	}

	if suffix, ok := vocab.Suffix(label); ok {
		return parent + " / " + suffix
	}
	if label == parent {
		return parent
	}
	return parent + " / " + label
}
