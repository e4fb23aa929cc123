// Package classify holds the named string rules the analyses apply to
// component type names, source names and event identifiers.
package classify

import "slices"

// Component type names used by production blueprints.
const (
	TypeStaticContainer     = "靜態容器"
	TypeVerticalScroll      = "垂直捲動容器"
	TypeHorizontalScroll    = "水平捲動容器"
	TypeBottomTabContainer  = "底部分頁容器"
	TypeTabContainer        = "分頁容器"
	TypeLabelTabContainer   = "頁籤分頁容器"
	TypeInfoBoard           = "資訊展示板"
	TypeMergedTable         = "合併表格"
	TypeWebView             = "WebView"
	TypeNativeView          = "NativeView"
	mergedTableDisplayLabel = "表格"
)

// Vocabulary names the type sets each analysis keys on. The zero value is
// not useful; start from DefaultVocabulary and override lists as needed.
type Vocabulary struct {
	// LayoutTypes are containers elided from structural views when they
	// carry neither a title nor an event id.
	LayoutTypes []string
	// StructuralTypes never become the parent name of their descendants.
	StructuralTypes []string
	// TabTypes are containers whose children are selectable tabs.
	TabTypes []string
	// DisplaySuffix folds a component label into a normalized suffix when
	// building data source display names.
	DisplaySuffix map[string]string
	// PlaceholderFields are table parameter values that are not field keys.
	PlaceholderFields []string
}

// DefaultVocabulary returns the vocabulary of production blueprints.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		LayoutTypes: []string{
			TypeStaticContainer,
			TypeVerticalScroll,
			TypeHorizontalScroll,
			TypeBottomTabContainer,
			TypeTabContainer,
		},
		StructuralTypes: []string{
			TypeBottomTabContainer,
			TypeTabContainer,
			TypeLabelTabContainer,
			TypeVerticalScroll,
		},
		TabTypes: []string{
			TypeBottomTabContainer,
			TypeTabContainer,
			TypeLabelTabContainer,
		},
		DisplaySuffix: map[string]string{
			TypeInfoBoard:   TypeInfoBoard,
			TypeMergedTable: mergedTableDisplayLabel,
		},
		PlaceholderFields: []string{"名稱", "PureText", "ConditionalText"},
	}
}

// IsLayout reports whether typeName is a layout-only container.
func (v Vocabulary) IsLayout(typeName string) bool {
	return slices.Contains(v.LayoutTypes, typeName)
}

// IsStructural reports whether typeName is a purely structural container.
func (v Vocabulary) IsStructural(typeName string) bool {
	return slices.Contains(v.StructuralTypes, typeName)
}

// IsTab reports whether typeName is a tab-like container.
func (v Vocabulary) IsTab(typeName string) bool {
	return slices.Contains(v.TabTypes, typeName)
}

// IsPlaceholderField reports whether value is a placeholder rather than a field key.
func (v Vocabulary) IsPlaceholderField(value string) bool {
	return slices.Contains(v.PlaceholderFields, value)
}

// Suffix returns the normalized display suffix for a component label.
func (v Vocabulary) Suffix(label string) (string, bool) {
	s, ok := v.DisplaySuffix[label]
	return s, ok
}
