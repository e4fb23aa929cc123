package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/classify"
	"github.com/matsen/blueprint/internal/config"
	"github.com/matsen/blueprint/internal/ctxlog"
	"github.com/matsen/blueprint/internal/instrument"
	"github.com/matsen/blueprint/internal/storage"
)

// stdin is read when a blueprint path is "-"; tests replace it.
var stdin io.Reader = os.Stdin

// loadBlueprint reads and parses the blueprint at path. Files ending in
// .yml or .yaml are parsed as YAML, everything else as JSON.
func loadBlueprint(ctx context.Context, path string) (*blueprint.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading blueprint: %w", err)
	}

	var doc *blueprint.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		doc, err = blueprint.ParseYAML(data)
	default:
		doc, err = blueprint.Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ctxlog.FromContext(ctx).Debug("loaded blueprint", "path", path, "pages", len(doc.Pages), "nodes", blueprint.Count(doc.Pages))
	return doc, nil
}

// settings is the resolved global configuration of one invocation.
type settings struct {
	cfg   *config.GlobalConfig
	vocab classify.Vocabulary
}

// loadSettings loads the global config.
func loadSettings() (*settings, error) {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	return &settings{cfg: cfg, vocab: cfg.Vocabulary()}, nil
}

// maxDepth returns flagValue when the flag was given and the configured
// graph depth otherwise.
func (s *settings) maxDepth(changed bool, flagValue int) int {
	if changed {
		return flagValue
	}
	return s.cfg.MaxDepth
}

// allowedTypes returns the configured instrumentation types.
func (s *settings) allowedTypes() []string {
	if len(s.cfg.AllowedTypes) > 0 {
		return s.cfg.AllowedTypes
	}
	return instrument.DefaultAllowedTypes
}

// junkKeywords returns the configured junk title keywords.
func (s *settings) junkKeywords() []string {
	if len(s.cfg.JunkKeywords) > 0 {
		return s.cfg.JunkKeywords
	}
	return classify.DefaultJunkKeywords
}

// findWorkspace resolves the workspace root from the current directory.
func findWorkspace() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	root, err := config.ResolveWorkspace(cwd)
	if err != nil {
		return "", withCode(ExitConfigError, err)
	}
	return root, nil
}

// openDatabase opens the node index of the workspace at root.
func openDatabase(root string) (*storage.DB, error) {
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// loadReference returns the reference event list. An explicit file holds
// a JSON array; without one the workspace registry is used when a
// workspace exists, and an empty list otherwise.
func loadReference(ctx context.Context, path string) ([]instrument.EventSpec, error) {
	logger := ctxlog.FromContext(ctx)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading event list: %w", err)
		}
		specs, err := instrument.ParseEventList(data)
		if err != nil {
			return nil, withCode(ExitDataError, err)
		}
		logger.Debug("loaded event list", "path", path, "events", len(specs))
		return specs, nil
	}

	root, err := findWorkspace()
	if err != nil {
		logger.Debug("no workspace, using empty event list", "err", err)
		return nil, nil
	}
	specs, err := storage.ReadEvents(config.EventsPath(root))
	if err != nil {
		return nil, withCode(ExitDataError, err)
	}
	logger.Debug("loaded event registry", "workspace", root, "events", len(specs))
	return specs, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
