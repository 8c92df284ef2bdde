package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/livesass/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Watch the source tree and recompile on change",
	Long: `Watch the source tree and keep the destination tree compiled.

On start the whole tree is compiled (unless --compile-on-start=false). After
that, created or modified files are recompiled, deleted or renamed files have
their CSS removed, and a change to a partial (_name.scss) rebuilds the tree.

Examples:
  livesass watch                                # Watch ./styles into ./public/css
  livesass watch -s assets/scss -d dist/css     # Custom roots
  livesass watch --filter '*.scss' --exclude 'vendor-*'
  livesass watch --compile-on-start=false       # Skip the initial build`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := bindTreeFlags(cmd); err != nil {
			return err
		}
		return bindFlags(cmd.Flags(), []flagBinding{{flag: "compile-on-start", key: "watch.compile_on_start"}})
	},
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addTreeFlags(watchCmd)
	watchCmd.Flags().Bool("compile-on-start", true, "Compile the whole tree before watching")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(a.watchCfg.DestinationRoot(), 0o755); err != nil {
		return fmt.Errorf("failed to create destination root: %w", err)
	}

	ctrl, err := watcher.New(a.watchCfg, a.compiler,
		watcher.WithLogger(a.logger),
		watcher.WithFailureReporter(func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
		}),
	)
	if err != nil {
		return err
	}

	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	if a.watchCfg.CompileOnStart() && len(ctrl.Failures()) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ initial build complete")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "👀 Watching %s (Press Ctrl+C to stop)\n", a.watchCfg.SourceRoot())

	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "\n🛑 Stopping watcher...")

	if err := ctrl.Stop(); err != nil {
		a.logger.Warn(context.Background(), err, "watcher did not stop cleanly")
	}
	a.logMetrics(context.Background())

	if failures := ctrl.Failures(); len(failures) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d file(s) still failing:\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", f.Path)
		}
	}

	return nil
}
