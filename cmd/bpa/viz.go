package main

import (
	"fmt"
	"strings"

	"github.com/matsen/blueprint/internal/ctxlog"
	"github.com/matsen/blueprint/internal/viz"
	"github.com/spf13/cobra"
)

var (
	vizOutput string
	vizLayout string
	vizDepth  int
	vizTitle  string
)

func init() {
	rootCmd.AddCommand(vizCmd)
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Write HTML to file instead of stdout")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "tree", "Layout algorithm: "+strings.Join(viz.ValidLayouts, ", "))
	vizCmd.Flags().IntVar(&vizDepth, "depth", 0, "Visible levels to include (0 for no limit; default from config)")
	vizCmd.Flags().StringVar(&vizTitle, "title", "", "Page title")
}

var vizCmd = &cobra.Command{
	Use:   "viz FILE",
	Short: "Generate an interactive structure graph",
	Long: `Generate an interactive HTML visualization of the structure graph.

The output is a self-contained HTML file that uses Cytoscape.js for
rendering. Hover over nodes to see their identifier and event id; click
a node to highlight its ancestors and descendants.

Examples:
  bpa viz app.json > graph.html
  bpa viz app.json --layout force -o graph.html`,
	Args: cobra.ExactArgs(1),
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	graph, _, err := analyzeStructure(cmd, args[0], vizDepth)
	if err != nil {
		return err
	}

	opts := viz.DefaultOptions()
	opts.Layout = vizLayout
	if vizTitle != "" {
		opts.Title = vizTitle
	}

	html, err := viz.GenerateHTML(viz.FromStructure(graph), opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}
	ctxlog.FromContext(cmd.Context()).Debug("generated visualization", "layout", opts.Layout, "bytes", len(html))

	if err := writeOutput(vizOutput, []byte(html)); err != nil {
		return err
	}
	if vizOutput != "" && humanOutput {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", vizOutput)
	}
	return nil
}
