package main

import (
	"strings"

	"github.com/matsen/blueprint/internal/structure"
	"github.com/matsen/blueprint/internal/viz"
	"github.com/spf13/cobra"
)

var (
	treeRoot   string
	treeExpand int
	treeHTML   bool
	treeOutput string
)

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringVar(&treeRoot, "root", "", "Node to use as the tree root (default: root entry)")
	treeCmd.Flags().IntVar(&treeExpand, "expand", 0, "Levels rendered expanded, 0 for fully collapsed (default from config)")
	treeCmd.Flags().BoolVar(&treeHTML, "html", false, "Render a collapsible HTML page")
	treeCmd.Flags().StringVarP(&treeOutput, "output", "o", "", "Write HTML to file instead of stdout")
}

var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Show the collapsible component tree",
	Long: `Show the component tree below a node, with untitled layout containers
replaced by their children.

Examples:
  bpa tree app.json --human
  bpa tree app.json --root 30000012 --expand 2
  bpa tree app.json --html -o tree.html`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	doc, err := loadBlueprint(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	expand := treeExpand
	if !cmd.Flags().Changed("expand") {
		expand = s.cfg.TreeExpandedDepth()
	}

	tree, err := structure.BuildTree(doc, treeRoot, expand, structure.Options{RootID: s.cfg.RootID, Vocabulary: &s.vocab})
	if err != nil {
		return err
	}

	if treeHTML {
		return writeOutput(treeOutput, []byte(viz.GenerateTreeHTML(tree)))
	}
	if !humanOutput {
		return outputJSON(tree)
	}

	tree.Walk(func(n *structure.TreeNode, depth int) {
		line := strings.Repeat("  ", depth) + n.Label
		if n.HasTitle && n.Type != "" {
			line += " [" + n.Type + "]"
		}
		if n.EventID != "" {
			line += " {" + n.EventID + "}"
		}
		outputHuman("%s\n", line)
	})
	return nil
}
