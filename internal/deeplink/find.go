package deeplink

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/matsen/blueprint/internal/blueprint"
)

// Match is a child of a container located by keyword.
type Match struct {
	Index   string `json:"index"`
	ChildID string `json:"child_id,omitempty"`
	Label   string `json:"label,omitempty"`
	Found   bool   `json:"found"`
}

// searchParent returns the container to search: the node with parentID,
// or the main tab container when parentID is empty.
func searchParent(doc *blueprint.Document, parentID string, opts Options) *blueprint.Node {
	if doc == nil {
		return nil
	}
	if parentID == "" {
		return mainTabContainer(doc, opts.rootID(), opts.vocabulary())
	}
	return blueprint.Find(doc.Pages, parentID)
}

// FindChildIndex searches the direct children of a container for the first
// one whose title or type name contains any of keywords, ignoring case.
// Without a match the index is "0" and Found is false.
func FindChildIndex(doc *blueprint.Document, keywords []string, parentID string, opts Options) Match {
	parent := searchParent(doc, parentID, opts)
	if parent == nil {
		return Match{Index: defaultIndex}
	}

	for i, child := range parent.Children {
		for _, kw := range keywords {
			if kw == "" {
				continue
			}
			if containsFold(child.Title, kw) || containsFold(child.Type, kw) {
				return Match{
					Index:   strconv.Itoa(i),
					ChildID: child.Key(),
					Label:   child.Label(),
					Found:   true,
				}
			}
		}
	}
	return Match{Index: defaultIndex}
}

// Suggest returns the child whose label is the closest fuzzy match for
// keyword, for use when FindChildIndex finds nothing.
func Suggest(doc *blueprint.Document, keyword, parentID string, opts Options) Match {
	parent := searchParent(doc, parentID, opts)
	if parent == nil || keyword == "" {
		return Match{Index: defaultIndex}
	}

	labels := make([]string, len(parent.Children))
	for i, child := range parent.Children {
		labels[i] = child.Label()
	}

	ranks := fuzzy.RankFindFold(keyword, labels)
	if len(ranks) == 0 {
		return Match{Index: defaultIndex}
	}
	sort.Sort(ranks)

	best := ranks[0]
	child := parent.Children[best.OriginalIndex]
	return Match{
		Index:   strconv.Itoa(best.OriginalIndex),
		ChildID: child.Key(),
		Label:   best.Target,
		Found:   true,
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
