package sources

import (
	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
)

// Options configures a data source analysis.
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

// Result holds the records of an analysis and the number of nodes visited.
type Result struct {
	Records      []Record `json:"records"`
	NodesVisited int      `json:"nodes_visited"`
}

// Analyze walks every page of doc and returns one record per declared source.
func Analyze(doc *blueprint.Document, opts Options) Result {
	a := analyzer{rootID: opts.rootID(), vocab: opts.vocabulary()}

	var result Result
	for _, page := range doc.Pages {
		records, visited := a.visit(page, NewContext())
		result.Records = append(result.Records, records...)
		result.NodesVisited += visited
	}
	if result.Records == nil {
		result.Records = []Record{}
	}
	return result
}

type analyzer struct {
	rootID string
	vocab  classify.Vocabulary
}

// visit returns the records of n's subtree and the number of nodes in it.
func (a analyzer) visit(n *blueprint.Node, inherited Context) ([]Record, int) {
	ctx := inherited.Enter(n, a.rootID, a.vocab)
	records := a.nodeRecords(n, ctx)
	visited := 1

	for _, child := range n.Children {
		childRecords, childVisited := a.visit(child, ctx)
		records = append(records, childRecords...)
		visited += childVisited
	}

	return records, visited
}

func (a analyzer) nodeRecords(n *blueprint.Node, ctx Context) []Record {
	decls := n.Sources()
	if len(decls) == 0 {
		return nil
	}

	styles := FieldStyles(n, a.vocab)
	name := displayName(ctx.ParentName, n.Label(), a.vocab)

	records := make([]Record, 0, len(decls))
	for _, decl := range decls {
		fields, explicit := resolveFields(decl, styles)
		records = append(records, Record{
			Group:             ctx.CurrentGroup,
			DisplayName:       name,
			NodeID:            n.Key(),
			SourceType:        decl.Name,
			SourceID:          resolveSourceID(decl),
			Fields:            fields,
			FieldsAreExplicit: explicit,
		})
	}
	return records
}

// Groups returns the record groups in order of first appearance, with the
// default group moved last.
func (r Result) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	hasDefault := false

	for _, rec := range r.Records {
		if seen[rec.Group] {
			continue
		}
		seen[rec.Group] = true
		if rec.Group == DefaultGroup {
			hasDefault = true
			continue
		}
		groups = append(groups, rec.Group)
	}
	if hasDefault {
		groups = append(groups, DefaultGroup)
	}
	return groups
}

// ByDisplayName returns the records of group keyed by display name, and
// the display names in order of first appearance.
func (r Result) ByDisplayName(group string) ([]string, map[string][]Record) {
	var names []string
	cards := make(map[string][]Record)
	for _, rec := range r.Records {
		if rec.Group != group {
			continue
		}
		if _, ok := cards[rec.DisplayName]; !ok {
			names = append(names, rec.DisplayName)
		}
		cards[rec.DisplayName] = append(cards[rec.DisplayName], rec)
	}
	return names, cards
}
