package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/blueprint/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set global configuration values",
	Long: `Get or set values of the global config file
($XDG_CONFIG_HOME/bpa/config.yml).

Usage:
  bpa config                                # Show all config
  bpa config max-depth                      # Get specific value
  bpa config max-depth 3                    # Set value
  bpa config junk-keywords "Chart,Legend"   # Set a list (comma-separated)

Keys:
  root-id           Identifier of the root entry node (default 20000001)
  max-depth         Visible graph levels (0 for no limit)
  expanded-depth    Tree levels rendered expanded
  base-url          Deep link prefix
  workspace         Workspace root used from any directory
  layout-types      Container types elided when untitled
  structural-types  Container types whose title never names a component
  tab-types         Tab container types
  allowed-types     Types offered for instrumentation
  junk-keywords     Title keywords never offered for instrumentation`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// configKey reads and writes one global config value.
type configKey struct {
	get func(c *config.GlobalConfig) any
	set func(c *config.GlobalConfig, value string) error
}

var configKeys = map[string]configKey{
	"root_id": {
		get: func(c *config.GlobalConfig) any { return c.RootID },
		set: func(c *config.GlobalConfig, v string) error { c.RootID = v; return nil },
	},
	"max_depth": {
		get: func(c *config.GlobalConfig) any { return c.MaxDepth },
		set: func(c *config.GlobalConfig, v string) error { return setInt(&c.MaxDepth, v) },
	},
	"expanded_depth": {
		get: func(c *config.GlobalConfig) any { return c.ExpandedDepth },
		set: func(c *config.GlobalConfig, v string) error { return setInt(&c.ExpandedDepth, v) },
	},
	"base_url": {
		get: func(c *config.GlobalConfig) any { return c.BaseURL },
		set: func(c *config.GlobalConfig, v string) error { c.BaseURL = v; return nil },
	},
	"workspace": {
		get: func(c *config.GlobalConfig) any { return c.Workspace },
		set: func(c *config.GlobalConfig, v string) error { c.Workspace = config.ExpandPath(v); return nil },
	},
	"layout_types": {
		get: func(c *config.GlobalConfig) any { return c.LayoutTypes },
		set: func(c *config.GlobalConfig, v string) error { c.LayoutTypes = splitList(v); return nil },
	},
	"structural_types": {
		get: func(c *config.GlobalConfig) any { return c.StructuralTypes },
		set: func(c *config.GlobalConfig, v string) error { c.StructuralTypes = splitList(v); return nil },
	},
	"tab_types": {
		get: func(c *config.GlobalConfig) any { return c.TabTypes },
		set: func(c *config.GlobalConfig, v string) error { c.TabTypes = splitList(v); return nil },
	},
	"allowed_types": {
		get: func(c *config.GlobalConfig) any { return c.AllowedTypes },
		set: func(c *config.GlobalConfig, v string) error { c.AllowedTypes = splitList(v); return nil },
	},
	"junk_keywords": {
		get: func(c *config.GlobalConfig) any { return c.JunkKeywords },
		set: func(c *config.GlobalConfig, v string) error { c.JunkKeywords = splitList(v); return nil },
	},
}

func runConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadGlobalConfig()
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	cfg := *loaded

	// No args: show all config
	if len(args) == 0 {
		names := make([]string, 0, len(configKeys))
		for name := range configKeys {
			names = append(names, name)
		}
		sort.Strings(names)

		if !humanOutput {
			all := make(map[string]any, len(names))
			for _, name := range names {
				all[name] = configKeys[name].get(&cfg)
			}
			return outputJSON(all)
		}
		for _, name := range names {
			outputHuman("%-17s %s\n", name+":", formatConfigValue(configKeys[name].get(&cfg)))
		}
		return nil
	}

	name := normalizeKey(args[0])
	key, ok := configKeys[name]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", args[0])
	}

	// One arg: get specific value
	if len(args) == 1 {
		value := key.get(&cfg)
		if humanOutput {
			outputHuman("%s\n", formatConfigValue(value))
			return nil
		}
		return outputJSON(map[string]any{name: value})
	}

	// Two args: set value
	if err := key.set(&cfg, args[1]); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return withCode(ExitConfigError, err)
	}
	if err := cfg.Save(); err != nil {
		return withCode(ExitConfigError, err)
	}

	value := formatConfigValue(key.get(&cfg))
	if humanOutput {
		outputHuman("Updated %s to %s\n", name, value)
		return nil
	}
	return outputJSON(UpdateResponse{Status: "updated", Key: name, Value: value})
}

// normalizeKey converts key formats (max-depth, MAX_DEPTH) to the YAML key.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "-", "_")
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid number %q", value)
	}
	*dst = n
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatConfigValue(v any) string {
	switch v := v.(type) {
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
