package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Compile the source tree once",
	Long: `Compile every non-partial source under the source root into the
destination root and exit. The exit status is non-zero when the compile fails.

Examples:
  livesass build                          # Build ./styles into ./public/css
  livesass build --style compressed       # Minified output
  livesass build -s assets -d dist/css    # Custom roots`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindTreeFlags(cmd)
	},
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	addTreeFlags(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := os.MkdirAll(a.watchCfg.DestinationRoot(), 0o755); err != nil {
		return fmt.Errorf("failed to create destination root: %w", err)
	}

	ctx := commandContext(cmd)
	err = a.compiler.Compile(ctx, a.watchCfg.SourceRoot())
	a.logMetrics(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ compiled %s -> %s\n", a.watchCfg.SourceRoot(), a.watchCfg.DestinationRoot())
	return nil
}
