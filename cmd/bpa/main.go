// Package main provides the bpa CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/blueprint/internal/ctxlog"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	// Load .env file if present (ignore errors if not found)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bpa",
	Short: "Analyze app UI blueprints",
	Long: `bpa analyzes the declarative UI blueprints of a mobile app.

It reports the data sources each screen uses, the navigable structure of
the app, the deep-link parameters pages accept and the analytics event
ids attached to components. All commands output JSON by default for easy
integration with other tools.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.Version = Version
}

// setupLogger stores the command logger in the command context.
func setupLogger(cmd *cobra.Command, args []string) error {
	logger := ctxlog.New(os.Stderr, verbose)
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	return nil
}
