// Package config handles workspace and global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	WorkspaceDir = ".bpa"
	EventsFile   = "events.jsonl"
	CacheDir     = "cache"
	DBFile       = "nodes.db"

	// WorkspaceEnv overrides workspace discovery when set.
	WorkspaceEnv = "BPA_WORKSPACE"
)

// WorkspacePath returns the path to the .bpa directory from a root path.
func WorkspacePath(root string) string {
	return filepath.Join(root, WorkspaceDir)
}

// EventsPath returns the path to events.jsonl from a root path.
func EventsPath(root string) string {
	return filepath.Join(root, WorkspaceDir, EventsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir)
}

// DBPath returns the path to nodes.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir, DBFile)
}

// IsWorkspace checks if the given path contains a workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(WorkspacePath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a workspace.
// Returns the workspace root path or an error if not found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a workspace (no %s directory found)", WorkspaceDir)
		}
		abs = parent
	}
}

// ResolveWorkspace returns the workspace root: BPA_WORKSPACE when set, the
// workspace key of the global config, or the nearest workspace above start.
func ResolveWorkspace(start string) (string, error) {
	if env := os.Getenv(WorkspaceEnv); env != "" {
		root := ExpandPath(env)
		if !IsWorkspace(root) {
			return "", fmt.Errorf("%s=%s is not a workspace (no %s directory)", WorkspaceEnv, root, WorkspaceDir)
		}
		return root, nil
	}

	if cfg, err := LoadGlobalConfig(); err == nil && cfg.Workspace != "" {
		if !IsWorkspace(cfg.Workspace) {
			return "", fmt.Errorf("configured workspace %s has no %s directory", cfg.Workspace, WorkspaceDir)
		}
		return cfg.Workspace, nil
	}

	return FindWorkspace(start)
}

// InitWorkspace creates the workspace layout under root. It is an error
// if the workspace already exists.
func InitWorkspace(root string) error {
	if IsWorkspace(root) {
		return fmt.Errorf("workspace already exists at %s", WorkspacePath(root))
	}
	if err := os.MkdirAll(CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}
	if err := os.WriteFile(EventsPath(root), nil, 0644); err != nil {
		return fmt.Errorf("creating %s: %w", EventsFile, err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
