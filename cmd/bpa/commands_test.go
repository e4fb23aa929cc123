package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
	"github.com/matsen/blueprint/internal/config"
	"github.com/matsen/blueprint/internal/deeplink"
	"github.com/matsen/blueprint/internal/instrument"
	"github.com/matsen/blueprint/internal/storage"
	"github.com/matsen/blueprint/internal/structure"
)

func decode(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
}

func TestSourcesCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	out, err := runCLI(t, "sources", app)
	if err != nil {
		t.Fatalf("sources error = %v", err)
	}

	var result SourcesResult
	decode(t, out, &result)
	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}
	rec := result.Records[0]
	if rec.Group != "Macro" || rec.SourceID != "5012" || rec.NodeID != "board" {
		t.Errorf("record = %+v", rec)
	}
	if !reflect.DeepEqual(result.Groups, []string{"Macro"}) {
		t.Errorf("groups = %v", result.Groups)
	}

	out, err = runCLI(t, "sources", app, "--group", "News")
	if err != nil {
		t.Fatalf("sources --group error = %v", err)
	}
	decode(t, out, &result)
	if len(result.Records) != 0 || result.Groups == nil {
		t.Errorf("filtered result = %+v", result)
	}
}

func TestStructureCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	out, err := runCLI(t, "structure", app)
	if err != nil {
		t.Fatalf("structure error = %v", err)
	}

	var result StructureResult
	decode(t, out, &result)
	if len(result.Nodes) == 0 || result.Nodes[0].ID != blueprint.DefaultRootID {
		t.Fatalf("nodes = %+v", result.Nodes)
	}
	var events []string
	for _, e := range result.Events {
		events = append(events, e.EventID)
	}
	if !reflect.DeepEqual(events, []string{"macro_view", "club_view"}) {
		t.Errorf("events = %v", events)
	}
	if result.Stats.TotalNodes != len(result.Nodes) {
		t.Errorf("stats = %+v", result.Stats)
	}
}

func TestStructureCommand_Depth(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	out, err := runCLI(t, "structure", app, "--depth", "1")
	if err != nil {
		t.Fatalf("structure error = %v", err)
	}
	var result StructureResult
	decode(t, out, &result)
	if len(result.Nodes) != 1 || len(result.Edges) != 0 {
		t.Errorf("depth 1 should keep only the root: %+v", result.Nodes)
	}
	if len(result.Events) != 2 {
		t.Errorf("event inventory should ignore depth, got %d", len(result.Events))
	}
}

func TestStructureCommand_RootNotFound(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", `{"pages": [{"uuid": "login"}]}`)

	_, err := runCLI(t, "structure", app)
	if exitCodeFor(err) != ExitNotFound {
		t.Errorf("error = %v, want exit code %d", err, ExitNotFound)
	}
}

func TestStructureCommand_Malformed(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", `[1, 2]`)

	_, err := runCLI(t, "structure", app)
	if exitCodeFor(err) != ExitDataError {
		t.Errorf("error = %v, want exit code %d", err, ExitDataError)
	}
}

func TestTreeCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	out, err := runCLI(t, "tree", app, "--human")
	if err != nil {
		t.Fatalf("tree error = %v", err)
	}
	if !strings.Contains(out, "  Club [垂直捲動容器] {club_view}\n") {
		t.Errorf("human tree missing club line:\n%s", out)
	}

	out, err = runCLI(t, "tree", app, "--root", "macro")
	if err != nil {
		t.Fatalf("tree --root error = %v", err)
	}
	var tree structure.TreeNode
	decode(t, out, &tree)
	if tree.ID != "macro" || len(tree.Children) != 1 || tree.Children[0].ID != "board" {
		t.Errorf("subtree = %+v", tree)
	}
	if !tree.Expanded || tree.Children[0].Expanded {
		t.Errorf("unset expanded_depth should open only the root: %+v", tree)
	}

	out, err = runCLI(t, "tree", app, "--root", "macro", "--expand", "0")
	if err != nil {
		t.Fatalf("tree --expand 0 error = %v", err)
	}
	var collapsed structure.TreeNode
	decode(t, out, &collapsed)
	if collapsed.Expanded {
		t.Error("--expand 0 should collapse the root")
	}

	htmlPath := filepath.Join(dir, "tree.html")
	if _, err := runCLI(t, "tree", app, "--html", "-o", htmlPath); err != nil {
		t.Fatalf("tree --html error = %v", err)
	}
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("reading tree.html: %v", err)
	}
	if !strings.Contains(string(data), "<details") {
		t.Error("tree page should contain details elements")
	}

	_, err = runCLI(t, "tree", app, "--root", "nope")
	if exitCodeFor(err) != ExitNotFound {
		t.Errorf("unknown root: error = %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), `"nope"`) {
		t.Errorf("unknown root error should name the node: %v", err)
	}
}

func TestVizCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	htmlPath := filepath.Join(dir, "graph.html")
	if _, err := runCLI(t, "viz", app, "-o", htmlPath, "--layout", "force", "--title", "Demo"); err != nil {
		t.Fatalf("viz error = %v", err)
	}
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("reading graph.html: %v", err)
	}
	for _, want := range []string{"cytoscape", `"cose"`, "<title>Demo</title>", "club_view"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("graph.html missing %q", want)
		}
	}

	if _, err := runCLI(t, "viz", app, "--layout", "spiral"); err == nil {
		t.Error("viz should reject unknown layouts")
	}
}

func TestEventsListCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)
	ref := writeFile(t, dir, "events.json", `[{"name": "macro_view", "track_duration": true}]`)

	out, err := runCLI(t, "events", "list", app, "--reference", ref)
	if err != nil {
		t.Fatalf("events list error = %v", err)
	}

	var result EventsListResult
	decode(t, out, &result)
	var ids []string
	for _, r := range result.Rows {
		ids = append(ids, r.ID)
	}
	if want := []string{"login", "club", "20000001", "macro"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("row order = %v, want %v", ids, want)
	}
	wantCounts := map[instrument.Status]int{
		instrument.StatusUnregistered: 2,
		instrument.StatusUnset:        1,
		instrument.StatusSynced:       1,
	}
	if !reflect.DeepEqual(result.Counts, wantCounts) {
		t.Errorf("counts = %v", result.Counts)
	}

	out, err = runCLI(t, "events", "list", app, "--reference", ref, "--status", "synced")
	if err != nil {
		t.Fatalf("events list --status error = %v", err)
	}
	decode(t, out, &result)
	if len(result.Rows) != 1 || result.Rows[0].ID != "macro" {
		t.Errorf("synced rows = %+v", result.Rows)
	}

	if _, err := runCLI(t, "events", "list", app, "--status", "bogus"); err == nil {
		t.Error("events list should reject unknown statuses")
	}
}

func TestEventsListCommand_WorkspaceRegistry(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)
	if err := config.InitWorkspace(dir); err != nil {
		t.Fatalf("InitWorkspace() error = %v", err)
	}
	if err := storage.AppendEvent(config.EventsPath(dir), instrument.EventSpec{Name: "club_view"}); err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}

	out, err := runCLI(t, "events", "list", app, "--status", "synced")
	if err != nil {
		t.Fatalf("events list error = %v", err)
	}
	var result EventsListResult
	decode(t, out, &result)
	if len(result.Rows) != 1 || result.Rows[0].ID != "club" {
		t.Errorf("synced rows = %+v", result.Rows)
	}
}

func TestEventsApplyCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)
	outPath := filepath.Join(dir, "updated.json")

	out, err := runCLI(t, "events", "apply", app, "--set", "club=", "--set", "board= board_view ", "-o", outPath)
	if err != nil {
		t.Fatalf("events apply error = %v", err)
	}
	var result EventsApplyResult
	decode(t, out, &result)
	if result.Edits != 2 || result.Path != outPath {
		t.Errorf("result = %+v", result)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	doc, err := blueprint.Parse(data)
	if err != nil {
		t.Fatalf("output is not a blueprint: %v", err)
	}
	if got := blueprint.Find(doc.Pages, "board").EventID; got != "board_view" {
		t.Errorf("board event = %q", got)
	}
	if got := blueprint.Find(doc.Pages, "club").EventID; got != "" {
		t.Errorf("club event = %q, want removed", got)
	}
	if got := blueprint.Find(doc.Pages, "macro").EventID; got != "macro_view" {
		t.Errorf("untouched macro event = %q", got)
	}

	if _, err := runCLI(t, "events", "apply", app); err == nil {
		t.Error("events apply without edits should fail")
	}
}

func TestEventsApplyCommand_Register(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)
	if err := config.InitWorkspace(dir); err != nil {
		t.Fatalf("InitWorkspace() error = %v", err)
	}

	out, err := runCLI(t, "events", "apply", app, "--set", "board=board_view", "--register", "-o", filepath.Join(dir, "app.json"))
	if err != nil {
		t.Fatalf("events apply error = %v", err)
	}
	var result EventsApplyResult
	decode(t, out, &result)
	if result.Registered != 4 {
		t.Errorf("registered = %d, want 4", result.Registered)
	}

	specs, err := storage.ReadEvents(config.EventsPath(dir))
	if err != nil {
		t.Fatalf("ReadEvents() error = %v", err)
	}
	if _, ok := storage.FindEvent(specs, "board_view"); !ok {
		t.Errorf("registry = %+v, want board_view", specs)
	}
}

func TestEventsMergeCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)
	ref := writeFile(t, dir, "events.json", `[{"name": "macro_view", "track_duration": false}]`)
	merged := filepath.Join(dir, "merged.json")

	out, err := runCLI(t, "events", "merge", app, "--reference", ref, "-o", merged)
	if err != nil {
		t.Fatalf("events merge error = %v", err)
	}

	var result EventsMergeResult
	decode(t, out, &result)
	if result.Found != 3 || result.Added != 2 || result.Written != merged {
		t.Errorf("result = %+v", result)
	}
	want := []instrument.EventSpec{
		{Name: "macro_view"},
		{Name: "login_view", TrackDuration: true},
		{Name: "club_view", TrackDuration: true},
	}
	if !reflect.DeepEqual(result.Events, want) {
		t.Errorf("events = %+v", result.Events)
	}

	data, err := os.ReadFile(merged)
	if err != nil {
		t.Fatalf("reading merged list: %v", err)
	}
	specs, err := instrument.ParseEventList(data)
	if err != nil || !reflect.DeepEqual(specs, want) {
		t.Errorf("merged file = %+v, %v", specs, err)
	}
}

func TestEventsMergeCommand_WriteWithoutWorkspace(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	_, err := runCLI(t, "events", "merge", app, "--write")
	if exitCodeFor(err) != ExitConfigError {
		t.Errorf("error = %v, want exit code %d", err, ExitConfigError)
	}
}

func TestEventsCoverageCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)
	target := writeFile(t, dir, "target.csv", "\ufeffeventId ,desc\nclub_view,Club tab\nmissing_view,Gone\n,blank\n")

	out, err := runCLI(t, "events", "coverage", app, "--target", target)
	if err != nil {
		t.Fatalf("events coverage error = %v", err)
	}

	var report instrument.CoverageReport
	decode(t, out, &report)
	if !reflect.DeepEqual(report.Matched, []string{"club_view"}) {
		t.Errorf("matched = %v", report.Matched)
	}
	if !reflect.DeepEqual(report.Missing, []string{"missing_view"}) {
		t.Errorf("missing = %v", report.Missing)
	}
	if !reflect.DeepEqual(report.Unregistered, []string{"macro_view"}) {
		t.Errorf("unregistered = %v", report.Unregistered)
	}

	noColumn := writeFile(t, dir, "nocol.csv", "name\nclub_view\n")
	if _, err := runCLI(t, "events", "coverage", app, "--target", noColumn); exitCodeFor(err) != ExitDataError {
		t.Errorf("csv without eventId column: error = %v", err)
	}
}

func TestEventsAddCommand(t *testing.T) {
	dir := setupCLI(t)
	if err := config.InitWorkspace(dir); err != nil {
		t.Fatalf("InitWorkspace() error = %v", err)
	}

	var resp UpdateResponse
	out, err := runCLI(t, "events", "add", "club_view", "--no-duration")
	if err != nil {
		t.Fatalf("events add error = %v", err)
	}
	decode(t, out, &resp)
	if resp.Status != "added" {
		t.Errorf("status = %q, want added", resp.Status)
	}

	out, err = runCLI(t, "events", "add", "club_view")
	if err != nil {
		t.Fatalf("events add error = %v", err)
	}
	decode(t, out, &resp)
	if resp.Status != "exists" {
		t.Errorf("status = %q, want exists", resp.Status)
	}

	specs, err := storage.ReadEvents(config.EventsPath(dir))
	if err != nil {
		t.Fatalf("ReadEvents() error = %v", err)
	}
	if !reflect.DeepEqual(specs, []instrument.EventSpec{{Name: "club_view"}}) {
		t.Errorf("registry = %+v", specs)
	}
}

func TestDeeplinkPagesCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	out, err := runCLI(t, "deeplink", "pages", app)
	if err != nil {
		t.Fatalf("deeplink pages error = %v", err)
	}

	var result DeeplinkPagesResult
	decode(t, out, &result)
	if _, ok := result.Pages[blueprint.DefaultRootID]; !ok {
		t.Error("root entry page missing")
	}
	mainTab, ok := result.Params[deeplink.KeyMainTabIndex]
	if !ok {
		t.Fatal("main tab index parameter missing")
	}
	want := []deeplink.Option{{Index: "0", Title: "Macro"}, {Index: "1", Title: "Club"}}
	if !reflect.DeepEqual(mainTab.Options, want) {
		t.Errorf("main tab options = %+v", mainTab.Options)
	}
}

func TestDeeplinkFindCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	out, err := runCLI(t, "deeplink", "find", app, "社團", "club")
	if err != nil {
		t.Fatalf("deeplink find error = %v", err)
	}
	var result DeeplinkFindResult
	decode(t, out, &result)
	if !result.Match.Found || result.Match.Index != "1" || result.Match.ChildID != "club" {
		t.Errorf("match = %+v", result.Match)
	}
	if result.Suggestion != nil {
		t.Error("a found match should carry no suggestion")
	}

	out, err = runCLI(t, "deeplink", "find", app, "Clb")
	if err != nil {
		t.Fatalf("deeplink find error = %v", err)
	}
	result = DeeplinkFindResult{}
	decode(t, out, &result)
	if result.Match.Found || result.Match.Index != "0" {
		t.Errorf("match = %+v, want not found at 0", result.Match)
	}
	if result.Suggestion == nil || result.Suggestion.ChildID != "club" {
		t.Errorf("suggestion = %+v, want club", result.Suggestion)
	}

	if _, err := runCLI(t, "deeplink", "find", app, "--parent", "nope", "Club"); exitCodeFor(err) != ExitNotFound {
		t.Errorf("unknown parent: error = %v", err)
	}
}

func TestDeeplinkBuildCommand(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	out, err := runCLI(t, "deeplink", "build", app, "--preset", "club-board", "--param", deeplink.KeyBoardID+"=42")
	if err != nil {
		t.Fatalf("deeplink build error = %v", err)
	}
	var result DeeplinkBuildResult
	decode(t, out, &result)
	want := deeplink.DefaultBaseURL + "?uuids=20000001&" +
		deeplink.KeyMainTabIndex + "=1&" + deeplink.KeyBoardIndex + "=0&" + deeplink.KeyBoardID + "=42"
	if result.URL != want {
		t.Errorf("url = %s, want %s", result.URL, want)
	}

	out, err = runCLI(t, "deeplink", "build", "--stack", "20000001,40000001", "--param", "string-stateCommKey=2330", "--base", "app://open", "--human")
	if err != nil {
		t.Fatalf("deeplink build error = %v", err)
	}
	if got := strings.TrimSpace(out); got != "app://open?uuids=20000001,40000001&int-main_tab_index=0&string-stateCommKey=2330" {
		t.Errorf("url = %s", got)
	}

	if _, err := runCLI(t, "deeplink", "build", "--preset", "bogus"); err == nil {
		t.Error("deeplink build should reject unknown presets")
	}
}

func TestDeeplinkBuildHelpUsesRealKeys(t *testing.T) {
	params := regexp.MustCompile(`--param ([^=\s]+)=`).FindAllStringSubmatch(deeplinkBuildCmd.Long, -1)
	if len(params) == 0 {
		t.Fatal("help has no --param examples")
	}
	for _, m := range params {
		if !classify.IsDeepLinkKey(m[1]) {
			t.Errorf("help example uses %q, not a deep link key", m[1])
		}
	}
}

func TestInitIndexSearchCommands(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	if _, err := runCLI(t, "search", "Club"); exitCodeFor(err) != ExitConfigError {
		t.Errorf("search outside a workspace: error = %v", err)
	}

	out, err := runCLI(t, "init")
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	var status StatusResponse
	decode(t, out, &status)
	if status.Status != "created" || !config.IsWorkspace(dir) {
		t.Errorf("init = %+v", status)
	}
	if _, err := runCLI(t, "init"); err == nil {
		t.Error("second init should fail")
	}

	out, err = runCLI(t, "index", app)
	if err != nil {
		t.Fatalf("index error = %v", err)
	}
	var indexed IndexResult
	decode(t, out, &indexed)
	if indexed.NodesIndexed != 5 || indexed.EventNodes != 3 {
		t.Errorf("index = %+v", indexed)
	}

	out, err = runCLI(t, "search", "Club")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	var found SearchResult
	decode(t, out, &found)
	if found.Total != 1 || found.Nodes[0].ID != "club" {
		t.Errorf("search = %+v", found)
	}

	out, err = runCLI(t, "search", "--events")
	if err != nil {
		t.Fatalf("search --events error = %v", err)
	}
	decode(t, out, &found)
	if found.Total != 3 {
		t.Errorf("event nodes = %+v", found.Nodes)
	}

	out, err = runCLI(t, "node", "board")
	if err != nil {
		t.Fatalf("node error = %v", err)
	}
	var node storage.NodeRow
	decode(t, out, &node)
	if node.Type != "資訊展示板" || node.Page != blueprint.DefaultRootID {
		t.Errorf("node = %+v", node)
	}

	if _, err := runCLI(t, "node", "nope"); exitCodeFor(err) != ExitNotFound {
		t.Errorf("unknown node: error = %v", err)
	}
	if _, err := runCLI(t, "search"); err == nil {
		t.Error("search without a query should fail")
	}
}

func TestConfigCommand(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "config", "max-depth", "3")
	if err != nil {
		t.Fatalf("config set error = %v", err)
	}
	var update UpdateResponse
	decode(t, out, &update)
	if update.Key != "max_depth" || update.Value != "3" {
		t.Errorf("update = %+v", update)
	}

	if _, err := runCLI(t, "config", "junk_keywords", "Chart, Legend"); err != nil {
		t.Fatalf("config set list error = %v", err)
	}

	out, err = runCLI(t, "config", "max_depth")
	if err != nil {
		t.Fatalf("config get error = %v", err)
	}
	var got map[string]int
	decode(t, out, &got)
	if got["max_depth"] != 3 {
		t.Errorf("max_depth = %v", got)
	}

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg.JunkKeywords, []string{"Chart", "Legend"}) {
		t.Errorf("junk keywords = %q", cfg.JunkKeywords)
	}

	if _, err := runCLI(t, "config", "--", "max-depth", "-1"); exitCodeFor(err) != ExitConfigError {
		t.Errorf("negative depth: error = %v", err)
	}
	if _, err := runCLI(t, "config", "bogus"); err == nil {
		t.Error("unknown key should fail")
	}
}

func TestConfigDepthAppliesToStructure(t *testing.T) {
	dir := setupCLI(t)
	app := writeFile(t, dir, "app.json", appJSON)

	if _, err := runCLI(t, "config", "max-depth", "1"); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	out, err := runCLI(t, "structure", app)
	if err != nil {
		t.Fatalf("structure error = %v", err)
	}
	var result StructureResult
	decode(t, out, &result)
	if len(result.Nodes) != 1 {
		t.Errorf("configured depth ignored: %d nodes", len(result.Nodes))
	}

	out, err = runCLI(t, "structure", app, "--depth", "0")
	if err != nil {
		t.Fatalf("structure error = %v", err)
	}
	decode(t, out, &result)
	if len(result.Nodes) < 4 {
		t.Errorf("--depth 0 should override the configured depth: %d nodes", len(result.Nodes))
	}
}
