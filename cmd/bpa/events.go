package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/blueprint/internal/config"
	"github.com/matsen/blueprint/internal/ctxlog"
	"github.com/matsen/blueprint/internal/instrument"
	"github.com/matsen/blueprint/internal/storage"
	"github.com/spf13/cobra"
)

var (
	eventsReference string
	eventsStatus    string
	eventsMaxDepth  int

	eventsSet      []string
	eventsEdits    string
	eventsOutput   string
	eventsRegister bool

	eventsWrite bool

	eventsTarget string

	eventsNoDuration bool
)

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsApplyCmd)
	eventsCmd.AddCommand(eventsMergeCmd)
	eventsCmd.AddCommand(eventsCoverageCmd)
	eventsCmd.AddCommand(eventsAddCmd)

	eventsListCmd.Flags().StringVar(&eventsReference, "reference", "", "Reference event list (JSON array; default: workspace registry)")
	eventsListCmd.Flags().StringVar(&eventsStatus, "status", "", "Only show rows with this status (synced, unregistered, unset)")
	eventsListCmd.Flags().IntVar(&eventsMaxDepth, "max-depth", instrument.DefaultMaxDepth, "Hide rows without a valid event deeper than this (0 for no limit)")

	eventsApplyCmd.Flags().StringArrayVar(&eventsSet, "set", nil, "Edit as uuid=eventId (repeatable; empty eventId removes it)")
	eventsApplyCmd.Flags().StringVar(&eventsEdits, "edits", "", "JSON object mapping uuid to eventId")
	eventsApplyCmd.Flags().StringVarP(&eventsOutput, "output", "o", "", "Write the updated blueprint to file instead of stdout")
	eventsApplyCmd.Flags().BoolVar(&eventsRegister, "register", false, "Add the resulting event ids to the workspace registry")

	eventsMergeCmd.Flags().StringVar(&eventsReference, "reference", "", "Reference event list (JSON array; default: workspace registry)")
	eventsMergeCmd.Flags().BoolVar(&eventsWrite, "write", false, "Write the merged list to the workspace registry")
	eventsMergeCmd.Flags().StringVarP(&eventsOutput, "output", "o", "", "Write the merged list as a JSON array to file")

	eventsCoverageCmd.Flags().StringVar(&eventsTarget, "target", "", "CSV file with an eventId column (required)")
	_ = eventsCoverageCmd.MarkFlagRequired("target")

	eventsAddCmd.Flags().BoolVar(&eventsNoDuration, "no-duration", false, "Register without duration tracking")
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage the event ids attached to components",
}

// EventsListResult is the response for the events list command.
type EventsListResult struct {
	Rows   []instrument.Row          `json:"rows"`
	Counts map[instrument.Status]int `json:"counts"`
}

var eventsListCmd = &cobra.Command{
	Use:   "list FILE",
	Short: "List components that can carry an event id",
	Long: `List the components offered for instrumentation, with the status of
their event id against the reference list:

  unregistered  valid id missing from the reference list
  unset         no valid id
  synced        valid id present in the reference list

Rows are ordered unregistered, unset, synced, and by depth.`,
	Args: cobra.ExactArgs(1),
	RunE: runEventsList,
}

func runEventsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := loadSettings()
	if err != nil {
		return err
	}

	var status instrument.Status
	switch st := instrument.Status(eventsStatus); st {
	case "", instrument.StatusSynced, instrument.StatusUnregistered, instrument.StatusUnset:
		status = st
	default:
		return fmt.Errorf("invalid status %q: must be synced, unregistered, or unset", eventsStatus)
	}

	doc, err := loadBlueprint(ctx, args[0])
	if err != nil {
		return err
	}
	reference, err := loadReference(ctx, eventsReference)
	if err != nil {
		return err
	}

	rows := instrument.Collect(doc, instrument.CollectOptions{
		AllowedTypes: s.allowedTypes(),
		MaxDepth:     eventsMaxDepth,
		JunkKeywords: s.junkKeywords(),
	})
	instrument.Annotate(rows, reference)
	instrument.SortRows(rows)

	counts := make(map[instrument.Status]int)
	for _, r := range rows {
		counts[r.Status]++
	}
	if status != "" {
		rows = instrument.FilterRows(rows, status)
	}
	ctxlog.FromContext(ctx).Debug("collected rows", "rows", len(rows), "reference", len(reference))

	if !humanOutput {
		return outputJSON(EventsListResult{Rows: rows, Counts: counts})
	}

	for _, r := range rows {
		outputHuman("%-12s %-24s %-40s %s\n", r.Status, r.ID, truncateString(r.Path, ListTitleMaxLen), orDash(r.EventID))
	}
	outputHuman("\n%d unregistered, %d unset, %d synced\n",
		counts[instrument.StatusUnregistered], counts[instrument.StatusUnset], counts[instrument.StatusSynced])
	return nil
}

var eventsApplyCmd = &cobra.Command{
	Use:   "apply FILE",
	Short: "Set or clear event ids in a blueprint",
	Long: `Set or clear the event ids of components identified by uuid and write
the updated blueprint as JSON. Values are trimmed; an empty value removes
the event id.

Examples:
  bpa events apply app.json --set 30000012=club_view -o app.json
  bpa events apply app.json --edits edits.json --register -o app.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEventsApply,
}

// EventsApplyResult is the response for events apply when writing to a file.
type EventsApplyResult struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	Edits      int    `json:"edits"`
	Registered int    `json:"registered"`
}

// parseEdits combines --set pairs with an optional JSON edits file. Pairs
// given with --set win over the file.
func parseEdits(pairs []string, path string) (map[string]string, error) {
	edits := make(map[string]string)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading edits: %w", err)
		}
		if err := json.Unmarshal(data, &edits); err != nil {
			return nil, withCode(ExitDataError, fmt.Errorf("parsing edits: %w", err))
		}
	}
	for _, pair := range pairs {
		id, value, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid edit %q: want uuid=eventId", pair)
		}
		edits[id] = value
	}
	return edits, nil
}

func runEventsApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	edits, err := parseEdits(eventsSet, eventsEdits)
	if err != nil {
		return err
	}
	if len(edits) == 0 {
		return fmt.Errorf("no edits given: use --set or --edits")
	}

	doc, err := loadBlueprint(ctx, args[0])
	if err != nil {
		return err
	}
	updated := instrument.ApplyEdits(doc, edits)

	registered := 0
	if eventsRegister {
		root, err := findWorkspace()
		if err != nil {
			return err
		}
		if registered, err = mergeIntoRegistry(root, instrument.ScanValidIDs(updated)); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding blueprint: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("applied edits", "edits", len(edits), "registered", registered)

	if eventsOutput == "" {
		return writeOutput("", append(data, '\n'))
	}
	if err := writeOutput(eventsOutput, append(data, '\n')); err != nil {
		return err
	}

	if humanOutput {
		outputHuman("Applied %d edits to %s\n", len(edits), eventsOutput)
		if eventsRegister {
			outputHuman("Registered %d new events\n", registered)
		}
		return nil
	}
	return outputJSON(EventsApplyResult{Status: "applied", Path: eventsOutput, Edits: len(edits), Registered: registered})
}

// mergeIntoRegistry adds ids missing from the workspace registry and
// returns the number added.
func mergeIntoRegistry(root string, ids []string) (int, error) {
	path := config.EventsPath(root)
	reference, err := storage.ReadEvents(path)
	if err != nil {
		return 0, withCode(ExitDataError, err)
	}
	merged, added := instrument.Merge(reference, ids)
	if added == 0 {
		return 0, nil
	}
	if err := storage.WriteEvents(path, merged); err != nil {
		return 0, err
	}
	return added, nil
}

var eventsMergeCmd = &cobra.Command{
	Use:   "merge FILE",
	Short: "Merge the event ids of a blueprint into the reference list",
	Long: `Add every valid event id found in a blueprint that is missing from the
reference list. New entries track duration.`,
	Args: cobra.ExactArgs(1),
	RunE: runEventsMerge,
}

// EventsMergeResult is the response for the events merge command.
type EventsMergeResult struct {
	Events  []instrument.EventSpec `json:"events"`
	Found   int                    `json:"found"`
	Added   int                    `json:"added"`
	Written string                 `json:"written,omitempty"`
}

func runEventsMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	doc, err := loadBlueprint(ctx, args[0])
	if err != nil {
		return err
	}
	reference, err := loadReference(ctx, eventsReference)
	if err != nil {
		return err
	}

	ids := instrument.ScanValidIDs(doc)
	merged, added := instrument.Merge(reference, ids)
	result := EventsMergeResult{Events: merged, Found: len(ids), Added: added}

	if eventsWrite {
		root, err := findWorkspace()
		if err != nil {
			return err
		}
		path := config.EventsPath(root)
		if err := storage.WriteEvents(path, merged); err != nil {
			return err
		}
		result.Written = path
	}
	if eventsOutput != "" {
		data, err := json.MarshalIndent(merged, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding event list: %w", err)
		}
		if err := writeOutput(eventsOutput, append(data, '\n')); err != nil {
			return err
		}
		result.Written = eventsOutput
	}

	if !humanOutput {
		return outputJSON(result)
	}
	outputHuman("Found %d event ids, %d new\n", result.Found, result.Added)
	if result.Written != "" {
		outputHuman("Wrote %d events to %s\n", len(merged), result.Written)
	}
	return nil
}

var eventsCoverageCmd = &cobra.Command{
	Use:   "coverage FILE",
	Short: "Compare the event ids below the root entry with a target list",
	Long: `Compare the event ids attached below the root entry node with the
eventId column of a CSV file.

Reports target ids that are present (matched) and absent (missing), and
ids on the tree that are not in the target list (unregistered).`,
	Args: cobra.ExactArgs(1),
	RunE: runEventsCoverage,
}

func runEventsCoverage(cmd *cobra.Command, args []string) error {
	f, err := os.Open(eventsTarget)
	if err != nil {
		return fmt.Errorf("opening target list: %w", err)
	}
	defer f.Close()

	target, err := instrument.ReadTargetCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", eventsTarget, err)
	}

	_, records, err := analyzeStructure(cmd, args[0], 0)
	if err != nil {
		return err
	}
	report := instrument.Coverage(records, target)

	if !humanOutput {
		return outputJSON(report)
	}
	outputHuman("Matched: %d\n", len(report.Matched))
	outputHuman("Missing: %d\n", len(report.Missing))
	for _, id := range report.Missing {
		outputHuman("  %s\n", id)
	}
	outputHuman("Unregistered: %d\n", len(report.Unregistered))
	for _, r := range report.Records {
		outputHuman("  %-30s %s\n", r.EventID, r.Path)
	}
	return nil
}

var eventsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register an event name in the workspace registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsAdd,
}

func runEventsAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("event name cannot be empty")
	}

	root, err := findWorkspace()
	if err != nil {
		return err
	}
	path := config.EventsPath(root)
	specs, err := storage.ReadEvents(path)
	if err != nil {
		return withCode(ExitDataError, err)
	}

	status := "exists"
	if _, found := storage.FindEvent(specs, name); !found {
		if err := storage.AppendEvent(path, instrument.EventSpec{Name: name, TrackDuration: !eventsNoDuration}); err != nil {
			return err
		}
		status = "added"
	}

	if humanOutput {
		outputHuman("%s: %s\n", name, status)
		return nil
	}
	return outputJSON(UpdateResponse{Status: status, Key: "event", Value: name})
}
