package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/blueprint/internal/classify"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/bpa/config.yml.
// Zero values mean the built-in default.
type GlobalConfig struct {
	RootID          string   `yaml:"root_id,omitempty"`
	MaxDepth        int      `yaml:"max_depth,omitempty"`
	ExpandedDepth   int      `yaml:"expanded_depth,omitempty"`
	BaseURL         string   `yaml:"base_url,omitempty"`
	LayoutTypes     []string `yaml:"layout_types,omitempty"`
	StructuralTypes []string `yaml:"structural_types,omitempty"`
	TabTypes        []string `yaml:"tab_types,omitempty"`
	AllowedTypes    []string `yaml:"allowed_types,omitempty"`
	JunkKeywords    []string `yaml:"junk_keywords,omitempty"`
	Workspace       string   `yaml:"workspace,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bpa"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// DefaultExpandedDepth opens the tree root when expanded_depth is unset.
const DefaultExpandedDepth = 1

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bpa/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Workspace != "" {
		cfg.Workspace = ExpandPath(cfg.Workspace)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Validate rejects negative depths.
func (c *GlobalConfig) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("invalid max_depth: %d (must be >= 0)", c.MaxDepth)
	}
	if c.ExpandedDepth < 0 {
		return fmt.Errorf("invalid expanded_depth: %d (must be >= 0)", c.ExpandedDepth)
	}
	return nil
}

// TreeExpandedDepth returns the configured expanded_depth, or
// DefaultExpandedDepth when unset.
func (c *GlobalConfig) TreeExpandedDepth() int {
	if c.ExpandedDepth == 0 {
		return DefaultExpandedDepth
	}
	return c.ExpandedDepth
}

// Vocabulary returns the default vocabulary with any configured type
// lists substituted.
func (c *GlobalConfig) Vocabulary() classify.Vocabulary {
	v := classify.DefaultVocabulary()
	if len(c.LayoutTypes) > 0 {
		v.LayoutTypes = c.LayoutTypes
	}
	if len(c.StructuralTypes) > 0 {
		v.StructuralTypes = c.StructuralTypes
	}
	if len(c.TabTypes) > 0 {
		v.TabTypes = c.TabTypes
	}
	return v
}

// Save writes the config as YAML to the global config path.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine global config path")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalConfigCache = nil
	return nil
}
