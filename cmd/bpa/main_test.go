package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/blueprint/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// appJSON has a login page and a bottom tab root with a Macro tab holding
// an info board and a Club tab.
const appJSON = `{"pages": [
	{"uuid": "login", "name": "page", "eventId": "login_view"},
	{"uuid": "20000001", "name": "底部分頁容器", "subComponents": [
		{"uuid": "macro", "name": "靜態容器", "parameters": {"title": "{{Macro}}"}, "eventId": "macro_view", "subComponents": [
			{"uuid": "board", "name": "資訊展示板", "source": [{"name": "dtno", "sourceParameters": {"dtnoNum": 5012}}]}
		]},
		{"uuid": "club", "name": "垂直捲動容器", "parameters": {"title": "Club"}, "eventId": "club_view"}
	]}
]}`

// setupCLI isolates a test from the user's config and workspace and
// returns a temporary working directory.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv(config.WorkspaceEnv, "")
	config.ResetGlobalConfigCache()
	t.Cleanup(config.ResetGlobalConfigCache)
	t.Chdir(dir)
	return dir
}

// writeFile writes content to name under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// runCLI executes the root command with args and returns what it wrote
// to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	saved := stdout
	stdout = &buf
	defer func() { stdout = saved }()

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
