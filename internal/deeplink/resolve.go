// Package deeplink discovers the pages and parameters a deep link into the
// app can address, and assembles deep links from them.
package deeplink

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
)

// Well-known parameter keys.
const (
	KeyMainTabIndex       = "int-main_tab_index"
	KeyBoardIndex         = "int-boardIndex"
	KeyBoardID            = "long-stateBoardId"
	KeyContentSection     = "int-contentSectionIndex"
	KeyNotesContentTab    = "int-notesContentTabIndex"
	KeyDetailPageParam    = "string-stateDetailPageParam"
	KeyArticleID          = "long-stateArticleId"
	KeyCommKey            = "string-stateCommKey"
	defaultIndex          = "0"
	defaultCommodityValue = "2330"
)

// Built-in page identifiers.
const (
	PageClubArticle    = "8765433712"
	PageArticleDetail  = "21247d60-59bb-11ee-aaed-3771d04b38f6"
	PageVideoDetail    = "288e87d1-59bb-11ee-aaed-3771d04b38f6"
	PageStock          = "40000001"
	rootEntryPageLabel = "App Entry"
)

// Options configures deep link resolution.
type Options struct {
	RootID     string               // root entry identifier, default blueprint.DefaultRootID
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

// PageDefinition describes a page that can be pushed on the link stack.
type PageDefinition struct {
	Name         string   `json:"name"`
	AcceptedKeys []string `json:"accepted_keys"`
	IsBuiltin    bool     `json:"is_builtin"`
}

// Option is one selectable value of an index parameter.
type Option struct {
	Index string `json:"index"`
	Title string `json:"title"`
}

// ParameterDefinition describes a deep link parameter.
type ParameterDefinition struct {
	Label   string   `json:"label"`
	Options []Option `json:"options,omitempty"`
	Default string   `json:"default"`
}

// Pages maps page identifiers to their definitions.
type Pages map[string]PageDefinition

// Params maps parameter keys to their definitions.
type Params map[string]ParameterDefinition

func builtinPages(rootID string) Pages {
	return Pages{
		rootID:            {Name: rootEntryPageLabel, AcceptedKeys: []string{KeyMainTabIndex}, IsBuiltin: true},
		PageClubArticle:   {Name: "Club Article", AcceptedKeys: []string{KeyMainTabIndex, KeyBoardIndex, KeyArticleID}, IsBuiltin: true},
		PageArticleDetail: {Name: "Article", AcceptedKeys: []string{KeyContentSection, KeyNotesContentTab, KeyDetailPageParam}, IsBuiltin: true},
		PageVideoDetail:   {Name: "Video", AcceptedKeys: []string{KeyContentSection, KeyDetailPageParam}, IsBuiltin: true},
		PageStock:         {Name: "Stock", AcceptedKeys: []string{KeyCommKey}, IsBuiltin: true},
	}
}

func wellKnownParams() Params {
	return Params{
		KeyMainTabIndex:    {Label: "Main Tab Index", Default: defaultIndex},
		KeyBoardIndex:      {Label: "Board Index", Default: defaultIndex},
		KeyBoardID:         {Label: "Board ID"},
		KeyContentSection:  {Label: "Content Section Index", Default: defaultIndex},
		KeyNotesContentTab: {Label: "Notes Tab Index", Default: defaultIndex},
		KeyDetailPageParam: {Label: "Detail Page Parameter"},
		KeyArticleID:       {Label: "Article ID"},
		KeyCommKey:         {Label: "Commodity Key", Default: defaultCommodityValue},
	}
}

// Resolve returns the pages and parameters a deep link into doc can use.
// A nil document yields the built-in definitions only.
func Resolve(doc *blueprint.Document, opts Options) (Pages, Params) {
	rootID := opts.rootID()
	vocab := opts.vocabulary()
	pages := builtinPages(rootID)
	params := wellKnownParams()

	if doc == nil {
		return pages, params
	}

	if main := mainTabContainer(doc, rootID, vocab); main != nil {
		def := params[KeyMainTabIndex]
		def.Options = childOptions(main)
		params[KeyMainTabIndex] = def
	}

	for _, page := range doc.Pages {
		var keys []string
		blueprint.Walk([]*blueprint.Node{page}, func(n *blueprint.Node, _ int) {
			for _, b := range bindings(n, vocab) {
				def, ok := params[b.key]
				if !ok {
					def = ParameterDefinition{Label: labelForKey(b.key), Default: defaultIndex}
				}
				// A key bound in several places keeps the last titles seen.
				def.Options = b.options
				params[b.key] = def
				keys = append(keys, b.key)
			}
		})

		id := page.Key()
		def, ok := pages[id]
		if !ok {
			def = PageDefinition{Name: page.Label()}
		}
		def.AcceptedKeys = mergeKeys(def.AcceptedKeys, keys)
		pages[id] = def
	}

	return pages, params
}

// mainTabContainer returns the first tab-like container at or below the
// root entry node.
func mainTabContainer(doc *blueprint.Document, rootID string, vocab classify.Vocabulary) *blueprint.Node {
	root := blueprint.Find(doc.Pages, rootID)
	if root == nil {
		return nil
	}

	var found *blueprint.Node
	blueprint.Walk([]*blueprint.Node{root}, func(n *blueprint.Node, _ int) {
		if found == nil && vocab.IsTab(n.Type) {
			found = n
		}
	})
	return found
}

// childOptions lists the direct children of a container as index options.
func childOptions(n *blueprint.Node) []Option {
	options := make([]Option, 0, len(n.Children))
	for i, child := range n.Children {
		options = append(options, Option{Index: strconv.Itoa(i), Title: child.Label()})
	}
	return options
}

// binding is an index parameter bound to a deep link key.
type binding struct {
	key     string
	options []Option
}

// titleParams hold the titles an index parameter selects from.
var titleParams = []string{"titles", "tabTitles"}

// bindings returns the deep link keys n binds an index parameter to. The
// options come from a titles list, or from the children of a tab-like
// container; a binding with neither is ignored.
func bindings(n *blueprint.Node, vocab classify.Vocabulary) []binding {
	if len(n.Params) == 0 {
		return nil
	}

	names := make([]string, 0, len(n.Params))
	for name := range n.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	var options []Option
	for _, tp := range titleParams {
		if titles := blueprint.AsList(n.Params[tp]); titles != nil {
			for i, t := range titles {
				if s, ok := blueprint.AsString(t); ok {
					options = append(options, Option{Index: strconv.Itoa(i), Title: blueprint.CleanTitle(s)})
				}
			}
			break
		}
	}
	if options == nil && vocab.IsTab(n.Type) && len(n.Children) > 0 {
		options = childOptions(n)
	}
	if options == nil {
		return nil
	}

	var out []binding
	for _, name := range names {
		if !strings.HasSuffix(strings.ToLower(name), "index") {
			continue
		}
		ref, ok := n.Params[name].(string)
		if !ok {
			continue
		}
		key := strings.TrimSpace(blueprint.CleanTitle(ref))
		if !classify.IsDeepLinkKey(key) {
			continue
		}
		out = append(out, binding{key: key, options: options})
	}
	return out
}

// labelForKey derives a display label from a typed key.
func labelForKey(key string) string {
	if _, name, ok := strings.Cut(key, "-"); ok {
		return name
	}
	return key
}

func mergeKeys(existing, found []string) []string {
	merged := slices.Clone(existing)
	for _, k := range found {
		if !slices.Contains(merged, k) {
			merged = append(merged, k)
		}
	}
	if merged == nil {
		merged = []string{}
	}
	return merged
}
