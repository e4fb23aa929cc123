package main

import (
	"strings"

	"github.com/matsen/blueprint/internal/ctxlog"
	"github.com/matsen/blueprint/internal/sources"
	"github.com/spf13/cobra"
)

var sourcesGroup string

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().StringVar(&sourcesGroup, "group", "", "Only report records of this group")
}

var sourcesCmd = &cobra.Command{
	Use:   "sources FILE",
	Short: "Report the data sources each component uses",
	Long: `Report every data source declared in a blueprint, with the group and
display name of the component that uses it and the fields it shows.

Use "-" as FILE to read the blueprint from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runSources,
}

// SourcesResult is the response for the sources command.
type SourcesResult struct {
	Records      []sources.Record `json:"records"`
	NodesVisited int              `json:"nodes_visited"`
	Groups       []string         `json:"groups"`
}

func runSources(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := loadSettings()
	if err != nil {
		return err
	}
	doc, err := loadBlueprint(ctx, args[0])
	if err != nil {
		return err
	}

	result := sources.Analyze(doc, sources.Options{RootID: s.cfg.RootID, Vocabulary: &s.vocab})
	if sourcesGroup != "" {
		var kept []sources.Record
		for _, r := range result.Records {
			if r.Group == sourcesGroup {
				kept = append(kept, r)
			}
		}
		result.Records = kept
	}
	if result.Records == nil {
		result.Records = []sources.Record{}
	}
	ctxlog.FromContext(ctx).Debug("analyzed sources", "records", len(result.Records), "visited", result.NodesVisited)

	if !humanOutput {
		groups := result.Groups()
		if groups == nil {
			groups = []string{}
		}
		return outputJSON(SourcesResult{
			Records:      result.Records,
			NodesVisited: result.NodesVisited,
			Groups:       groups,
		})
	}

	if len(result.Records) == 0 {
		outputHuman("No data sources found (%d nodes visited)\n", result.NodesVisited)
		return nil
	}
	for _, group := range result.Groups() {
		outputHuman("%s\n", group)
		names, byName := result.ByDisplayName(group)
		for _, name := range names {
			outputHuman("  %s\n", name)
			for _, r := range byName[name] {
				outputHuman("    %s %s  %s\n", r.SourceType, orDash(r.SourceID), formatFields(r.Fields))
			}
		}
	}
	outputHuman("\n%d records, %d nodes visited\n", len(result.Records), result.NodesVisited)
	return nil
}

// formatFields renders fields as "name(style), name".
func formatFields(fields []sources.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name
		if f.Style != "" {
			parts[i] += "(" + f.Style + ")"
		}
	}
	return strings.Join(parts, ", ")
}
