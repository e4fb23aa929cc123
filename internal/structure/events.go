package structure

import "github.com/matsen/blueprint/internal/blueprint"

// Breadcrumb settings of the event inventory.
const (
	RootPathLabel = "App Entry"
	PathSeparator = " > "
)

// EventRecord locates one instrumented node.
type EventRecord struct {
	EventID string `json:"event_id"`
	NodeID  string `json:"node_id"`
	Type    string `json:"type"`
	Path    string `json:"path"`
}

// Inventory lists every node below and including root that carries an
// event id. It walks the raw tree: containers hidden from the graph are
// included.
func Inventory(root *blueprint.Node) []EventRecord {
	records := inventory(root, RootPathLabel)
	if records == nil {
		records = []EventRecord{}
	}
	return records
}

func inventory(n *blueprint.Node, parentPath string) []EventRecord {
	path := parentPath + PathSeparator + n.Label()

	var records []EventRecord
	if n.EventID != "" {
		records = append(records, EventRecord{
			EventID: n.EventID,
			NodeID:  n.Key(),
			Type:    n.Type,
			Path:    path,
		})
	}

	for _, child := range n.Children {
		records = append(records, inventory(child, path)...)
	}
	return records
}
