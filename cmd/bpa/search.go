package main

import (
	"fmt"
	"strings"

	"github.com/matsen/blueprint/internal/storage"
	"github.com/spf13/cobra"
)

var (
	searchField  string
	searchLimit  int
	searchEvents bool
)

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(nodeCmd)
	searchCmd.Flags().StringVar(&searchField, "field", "", "Search a single field: title, type, or event")
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results")
	searchCmd.Flags().BoolVar(&searchEvents, "events", false, "List every indexed node carrying an event id")
}

var searchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search the node index",
	Long: `Search the node index built by 'bpa index' by title, type, event id
and breadcrumb path.

Examples:
  bpa search Club
  bpa search --field event club_view
  bpa search --events --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

// SearchResult is the response for the search command.
type SearchResult struct {
	Nodes []storage.NodeRow `json:"nodes"`
	Total int               `json:"total"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if !searchEvents && len(args) == 0 {
		return fmt.Errorf("search requires a query (or --events)")
	}

	root, err := findWorkspace()
	if err != nil {
		return err
	}
	db, err := openDatabase(root)
	if err != nil {
		return err
	}
	defer db.Close()

	var nodes []storage.NodeRow
	switch {
	case searchEvents:
		nodes, err = db.ListEvents()
	case searchField != "":
		nodes, err = db.SearchField(searchField, args[0], searchLimit)
	default:
		nodes, err = db.Search(args[0], searchLimit)
	}
	if err != nil {
		return err
	}
	if nodes == nil {
		nodes = []storage.NodeRow{}
	}

	if !humanOutput {
		return outputJSON(SearchResult{Nodes: nodes, Total: len(nodes)})
	}
	if len(nodes) == 0 {
		outputHuman("No nodes found\n")
		return nil
	}
	for _, n := range nodes {
		outputHuman("%-24s %-16s %s", n.ID, n.Type, truncateString(n.Path, PathMaxLen))
		if n.EventID != "" {
			outputHuman("  {%s}", n.EventID)
		}
		outputHuman("\n")
	}
	return nil
}

var nodeCmd = &cobra.Command{
	Use:   "node ID",
	Short: "Show an indexed node by identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runNode,
}

func runNode(cmd *cobra.Command, args []string) error {
	root, err := findWorkspace()
	if err != nil {
		return err
	}
	db, err := openDatabase(root)
	if err != nil {
		return err
	}
	defer db.Close()

	node, err := db.GetByID(args[0])
	if err != nil {
		return err
	}
	if node == nil {
		return withCode(ExitNotFound, fmt.Errorf("node %s not found", args[0]))
	}

	if !humanOutput {
		return outputJSON(node)
	}
	outputHuman("ID:    %s\n", node.ID)
	outputHuman("Type:  %s\n", node.Type)
	outputHuman("Title: %s\n", orDash(node.Title))
	outputHuman("Event: %s\n", orDash(node.EventID))
	outputHuman("Page:  %s\n", node.Page)
	outputHuman("Path:  %s\n", strings.TrimSpace(node.Path))
	outputHuman("Depth: %d\n", node.Depth)
	return nil
}
