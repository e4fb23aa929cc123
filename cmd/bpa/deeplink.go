package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/clipboard"
	"github.com/matsen/blueprint/internal/ctxlog"
	"github.com/matsen/blueprint/internal/deeplink"
	"github.com/spf13/cobra"
)

var (
	deeplinkParent string

	deeplinkPreset string
	deeplinkStack  []string
	deeplinkParams []string
	deeplinkBase   string
	deeplinkCopy   bool
)

func init() {
	rootCmd.AddCommand(deeplinkCmd)
	deeplinkCmd.AddCommand(deeplinkPagesCmd)
	deeplinkCmd.AddCommand(deeplinkFindCmd)
	deeplinkCmd.AddCommand(deeplinkBuildCmd)

	deeplinkFindCmd.Flags().StringVar(&deeplinkParent, "parent", "", "Container whose children are searched (default: main tab container)")

	deeplinkBuildCmd.Flags().StringVar(&deeplinkPreset, "preset", deeplink.PresetCustom, "Starting scenario: "+strings.Join(deeplink.PresetNames, ", "))
	deeplinkBuildCmd.Flags().StringSliceVar(&deeplinkStack, "stack", nil, "Page stack replacing the preset's (comma-separated ids)")
	deeplinkBuildCmd.Flags().StringArrayVar(&deeplinkParams, "param", nil, "Parameter as key=value (repeatable)")
	deeplinkBuildCmd.Flags().StringVar(&deeplinkBase, "base", "", "Link prefix (default from config)")
	deeplinkBuildCmd.Flags().BoolVar(&deeplinkCopy, "copy", false, "Copy the URL to the clipboard")
}

var deeplinkCmd = &cobra.Command{
	Use:   "deeplink",
	Short: "Inspect and build deep links",
}

// deeplinkOptions returns the resolver options from the global config.
func deeplinkOptions(s *settings) deeplink.Options {
	return deeplink.Options{RootID: s.cfg.RootID, Vocabulary: &s.vocab}
}

// DeeplinkPagesResult is the response for the deeplink pages command.
type DeeplinkPagesResult struct {
	Pages  deeplink.Pages  `json:"pages"`
	Params deeplink.Params `json:"params"`
}

var deeplinkPagesCmd = &cobra.Command{
	Use:   "pages FILE",
	Short: "List the pages and parameters a deep link can use",
	Long: `List the pages that can be pushed on a deep link stack and the
parameters they accept, including the index parameters declared by tab
containers in the blueprint with their selectable options.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeeplinkPages,
}

func runDeeplinkPages(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	doc, err := loadBlueprint(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	pages, params := deeplink.Resolve(doc, deeplinkOptions(s))
	ctxlog.FromContext(cmd.Context()).Debug("resolved deep link context", "pages", len(pages), "params", len(params))

	if !humanOutput {
		return outputJSON(DeeplinkPagesResult{Pages: pages, Params: params})
	}

	outputHuman("Pages:\n")
	for _, id := range sortedKeys(pages) {
		p := pages[id]
		outputHuman("  %-12s %-20s %s\n", id, p.Name, strings.Join(p.AcceptedKeys, ", "))
	}
	outputHuman("\nParameters:\n")
	for _, key := range sortedKeys(params) {
		p := params[key]
		outputHuman("  %-30s %s (default %s)\n", key, p.Label, orDash(p.Default))
		for _, o := range p.Options {
			outputHuman("    %s  %s\n", o.Index, o.Title)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var deeplinkFindCmd = &cobra.Command{
	Use:   "find FILE KEYWORD...",
	Short: "Find the index of a tab by keyword",
	Long: `Find the first child of a container whose title or type contains any
of the keywords, ignoring case. Without a match the index is "0" and the
closest fuzzy match of the first keyword is suggested.

Examples:
  bpa deeplink find app.json 社團 Club
  bpa deeplink find app.json --parent 30000040 Notes`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDeeplinkFind,
}

// DeeplinkFindResult is the response for the deeplink find command.
type DeeplinkFindResult struct {
	Match      deeplink.Match  `json:"match"`
	Suggestion *deeplink.Match `json:"suggestion,omitempty"`
}

func runDeeplinkFind(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	doc, err := loadBlueprint(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if deeplinkParent != "" && blueprint.Find(doc.Pages, deeplinkParent) == nil {
		return withCode(ExitNotFound, fmt.Errorf("node %s not found", deeplinkParent))
	}

	keywords := args[1:]
	opts := deeplinkOptions(s)
	result := DeeplinkFindResult{Match: deeplink.FindChildIndex(doc, keywords, deeplinkParent, opts)}
	if !result.Match.Found {
		if suggestion := deeplink.Suggest(doc, keywords[0], deeplinkParent, opts); suggestion.Found {
			result.Suggestion = &suggestion
		}
	}

	if !humanOutput {
		return outputJSON(result)
	}
	if result.Match.Found {
		outputHuman("%s  %s (%s)\n", result.Match.Index, result.Match.Label, result.Match.ChildID)
		return nil
	}
	outputHuman("No match, using index %s\n", result.Match.Index)
	if result.Suggestion != nil {
		outputHuman("Did you mean %s (index %s)?\n", result.Suggestion.Label, result.Suggestion.Index)
	}
	return nil
}

var deeplinkBuildCmd = &cobra.Command{
	Use:   "build [FILE]",
	Short: "Build a deep link URL",
	Long: `Build a deep link URL from a preset scenario. With a blueprint, the
main tab index of the preset is located by keyword; without one it is 0.

Examples:
  bpa deeplink build app.json --preset club-board --param long-stateBoardId=123
  bpa deeplink build app.json --preset stock --param string-stateCommKey=2454
  bpa deeplink build --stack 20000001,40000001 --param string-stateCommKey=2330`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeeplinkBuild,
}

// DeeplinkBuildResult is the response for the deeplink build command.
type DeeplinkBuildResult struct {
	URL    string           `json:"url"`
	Stack  []string         `json:"stack"`
	Params []deeplink.Param `json:"params"`
	Copied bool             `json:"copied,omitempty"`
}

func runDeeplinkBuild(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	params, err := deeplink.ParseParams(deeplinkParams)
	if err != nil {
		return err
	}

	var doc *blueprint.Document
	if len(args) == 1 {
		if doc, err = loadBlueprint(cmd.Context(), args[0]); err != nil {
			return err
		}
	}

	link, err := deeplink.Preset(doc, deeplinkPreset, deeplinkOptions(s))
	if err != nil {
		return err
	}
	if len(deeplinkStack) > 0 {
		link.Stack = deeplinkStack
	}
	for _, p := range params {
		link.Set(p.Key, p.Value)
	}

	base := deeplinkBase
	if base == "" {
		base = s.cfg.BaseURL
	}
	result := DeeplinkBuildResult{URL: link.URL(base), Stack: link.Stack, Params: link.Params}

	if deeplinkCopy {
		if err := clipboard.Copy(result.URL); err != nil {
			ctxlog.FromContext(cmd.Context()).Warn("could not copy link", "err", err)
		} else {
			result.Copied = true
		}
	}

	if humanOutput {
		outputHuman("%s\n", result.URL)
		return nil
	}
	return outputJSON(result)
}
