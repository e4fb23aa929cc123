package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matsen/blueprint/internal/classify"
)

func writeGlobalConfig(t *testing.T, body string) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/bpa/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "bpa", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.RootID != "" || cfg.MaxDepth != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	writeGlobalConfig(t, `
root_id: "30000001"
max_depth: 6
expanded_depth: 2
base_url: https://example.com/app/
tab_types: [Tabs]
allowed_types: [Box, Page]
junk_keywords: [Chart]
workspace: ~/ws
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	if cfg.RootID != "30000001" {
		t.Errorf("RootID = %q, want 30000001", cfg.RootID)
	}
	if cfg.MaxDepth != 6 || cfg.ExpandedDepth != 2 {
		t.Errorf("depths = %d/%d, want 6/2", cfg.MaxDepth, cfg.ExpandedDepth)
	}
	if cfg.TreeExpandedDepth() != 2 {
		t.Errorf("TreeExpandedDepth() = %d, want 2", cfg.TreeExpandedDepth())
	}
	if cfg.BaseURL != "https://example.com/app/" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if !slices.Equal(cfg.AllowedTypes, []string{"Box", "Page"}) {
		t.Errorf("AllowedTypes = %v", cfg.AllowedTypes)
	}
	if home, err := os.UserHomeDir(); err == nil {
		if want := filepath.Join(home, "ws"); cfg.Workspace != want {
			t.Errorf("Workspace = %q, want %q", cfg.Workspace, want)
		}
	}

	v := cfg.Vocabulary()
	if !v.IsTab("Tabs") || v.IsTab(classify.TypeTabContainer) {
		t.Errorf("tab types not overridden: %v", v.TabTypes)
	}
	if !v.IsLayout(classify.TypeStaticContainer) {
		t.Error("unset layout types should keep the defaults")
	}
}

func TestLoadGlobalConfig_Cached(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	writeGlobalConfig(t, "root_id: first\n")
	cfg1, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}

	writeGlobalConfig(t, "root_id: second\n")
	cfg2, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg2.RootID != cfg1.RootID {
		t.Errorf("cached RootID = %q, want %q", cfg2.RootID, cfg1.RootID)
	}

	ResetGlobalConfigCache()
	cfg3, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg3.RootID != "second" {
		t.Errorf("after reset RootID = %q, want second", cfg3.RootID)
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "root_id: [unterminated\n"},
		{"negative max depth", "max_depth: -1\n"},
		{"negative expanded depth", "expanded_depth: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetGlobalConfigCache()
			defer ResetGlobalConfigCache()
			writeGlobalConfig(t, tt.body)

			if _, err := LoadGlobalConfig(); err == nil {
				t.Error("LoadGlobalConfig() should fail")
			}
		})
	}
}

func TestGlobalConfig_Save(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &GlobalConfig{RootID: "x", JunkKeywords: []string{"Legend"}}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RootID != "x" || !slices.Equal(loaded.JunkKeywords, []string{"Legend"}) {
		t.Errorf("loaded %+v", loaded)
	}
}

func TestTreeExpandedDepth_Default(t *testing.T) {
	cfg := &GlobalConfig{}
	if got := cfg.TreeExpandedDepth(); got != DefaultExpandedDepth {
		t.Errorf("TreeExpandedDepth() = %d, want %d", got, DefaultExpandedDepth)
	}
}
