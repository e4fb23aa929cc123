package main

import (
	"sort"

	"github.com/matsen/blueprint/internal/ctxlog"
	"github.com/matsen/blueprint/internal/structure"
	"github.com/spf13/cobra"
)

var structureDepth int

func init() {
	rootCmd.AddCommand(structureCmd)
	structureCmd.Flags().IntVar(&structureDepth, "depth", 0, "Visible levels to include (0 for no limit; default from config)")
}

var structureCmd = &cobra.Command{
	Use:   "structure FILE",
	Short: "Show the navigable structure below the root entry",
	Long: `Show the structure graph below the root entry node together with every
event id attached to a node of that subtree.

Layout containers without a title are left out and their children are
attached to the nearest visible ancestor.`,
	Args: cobra.ExactArgs(1),
	RunE: runStructure,
}

// StructureResult is the response for the structure command.
type StructureResult struct {
	Nodes  []structure.GraphNode   `json:"nodes"`
	Edges  []structure.Edge        `json:"edges"`
	Stats  structure.Stats         `json:"stats"`
	Events []structure.EventRecord `json:"events"`
}

// analyzeStructure loads path and builds its structure graph.
func analyzeStructure(cmd *cobra.Command, path string, depth int) (*structure.Graph, []structure.EventRecord, error) {
	ctx := cmd.Context()
	s, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	doc, err := loadBlueprint(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	opts := structure.Options{
		RootID:     s.cfg.RootID,
		MaxDepth:   s.maxDepth(cmd.Flags().Changed("depth"), depth),
		Vocabulary: &s.vocab,
	}
	graph, events, err := structure.Analyze(doc, opts)
	if err != nil {
		return nil, nil, err
	}
	ctxlog.FromContext(ctx).Debug("built structure graph", "nodes", len(graph.Nodes), "edges", len(graph.Edges), "depth", opts.MaxDepth)
	return graph, events, nil
}

func runStructure(cmd *cobra.Command, args []string) error {
	graph, events, err := analyzeStructure(cmd, args[0], structureDepth)
	if err != nil {
		return err
	}

	if !humanOutput {
		return outputJSON(StructureResult{
			Nodes:  graph.Nodes,
			Edges:  graph.Edges,
			Stats:  graph.Stats(),
			Events: events,
		})
	}

	stats := graph.Stats()
	outputHuman("Nodes: %d\n", stats.TotalNodes)
	outputHuman("Edges: %d\n", stats.TotalEdges)

	types := make([]string, 0, len(stats.NodesByType))
	for t := range stats.NodesByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		outputHuman("  %-20s %d\n", t, stats.NodesByType[t])
	}

	if len(events) > 0 {
		outputHuman("\nEvents:\n")
		for _, e := range events {
			outputHuman("  %-30s %s\n", e.EventID, e.Path)
		}
	}
	return nil
}
