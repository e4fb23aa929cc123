package classify

import (
	"regexp"
	"slices"
	"strings"
)

// SourceKind groups source type names by how their identity is resolved.
type SourceKind int

const (
	SourceUnknown     SourceKind = iota
	SourceCatalogue              // numbered data catalogue (dtno)
	SourceSpreadsheet            // Google Sheets
	SourceSystem                 // computed inside the app
)

func (k SourceKind) String() string {
	switch k {
	case SourceCatalogue:
		return "catalogue"
	case SourceSpreadsheet:
		return "spreadsheet"
	case SourceSystem:
		return "system"
	default:
		return "unknown"
	}
}

var (
	catalogueSources = []string{"dtno", "AddInfoDtno"}
	systemSources    = []string{"USCommodity", "USStockCalculation", "CustomGroupRiskCalculator"}
)

const spreadsheetMarker = "GoogleSheet"

// ClassifySource returns the kind of a source type name.
func ClassifySource(name string) SourceKind {
	switch {
	case slices.Contains(catalogueSources, name):
		return SourceCatalogue
	case strings.Contains(name, spreadsheetMarker):
		return SourceSpreadsheet
	case slices.Contains(systemSources, name):
		return SourceSystem
	default:
		return SourceUnknown
	}
}

// EventIDState describes an instrumentation identifier.
type EventIDState int

const (
	EventIDEmpty     EventIDState = iota
	EventIDGenerated              // looks like an auto-generated UUID
	EventIDCustom                 // set by a person
)

func (s EventIDState) String() string {
	switch s {
	case EventIDGenerated:
		return "generated"
	case EventIDCustom:
		return "custom"
	default:
		return "empty"
	}
}

// generatedIDPattern matches the 8-4-4- prefix of a UUID.
var generatedIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-`)

// ClassifyEventID returns the state of an event id.
func ClassifyEventID(id string) EventIDState {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return EventIDEmpty
	case generatedIDPattern.MatchString(id):
		return EventIDGenerated
	default:
		return EventIDCustom
	}
}

// IsValidEventID reports whether id is a custom, non-generated event id.
func IsValidEventID(id string) bool {
	return ClassifyEventID(id) == EventIDCustom
}

// DefaultJunkKeywords mark chart internals that are never instrumented.
var DefaultJunkKeywords = []string{"K線", "Bar", "Line", "圖例", "Legend", "Chart", "標題文本"}

// IsJunkTitle reports whether title contains any of keywords.
func IsJunkTitle(title string, keywords []string) bool {
	if title == "" {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// deepLinkKeyPattern matches typed deep-link parameter keys such as int-boardIndex.
var deepLinkKeyPattern = regexp.MustCompile(`^(int|long|string|bool)-[A-Za-z_][A-Za-z0-9_]*$`)

// IsDeepLinkKey reports whether key is a typed deep-link parameter key.
func IsDeepLinkKey(key string) bool {
	return deepLinkKeyPattern.MatchString(key)
}
