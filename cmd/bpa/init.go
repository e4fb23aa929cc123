package main

import (
	"fmt"
	"os"

	"github.com/matsen/blueprint/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new bpa workspace",
	Long: `Initialize a new bpa workspace in the current directory.

Creates:
  .bpa/
  ├── events.jsonl    # Reference event list (empty)
  └── cache/          # Node index (gitignored)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if err := config.InitWorkspace(root); err != nil {
		return err
	}

	path := config.WorkspacePath(root)
	if humanOutput {
		outputHuman("Initialized bpa workspace in %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "created", Path: path})
}
