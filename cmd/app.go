package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/livesass/internal/compiler"
	"github.com/conneroisu/livesass/internal/config"
	"github.com/conneroisu/livesass/internal/logging"
)

// app holds what every compiling command needs.
type app struct {
	cfg      *config.Config
	watchCfg *config.WatchConfig
	logger   logging.Logger
	compiler *compiler.Instrumented
	closers  []func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	watchCfg, err := cfg.WatchConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid watch configuration: %w", err)
	}

	a := &app{cfg: cfg, watchCfg: watchCfg}
	if err := a.initLogger(); err != nil {
		return nil, err
	}

	cc, err := compiler.NewCommandCompiler(watchCfg.SourceRoot(), watchCfg.DestinationRoot(), compiler.Options{
		Command:   cfg.Compiler.Command,
		Args:      cfg.Compiler.Args,
		Style:     cfg.Compiler.Style,
		SourceMap: cfg.Compiler.SourceMap,
		Exclude:   cfg.Compiler.Exclude,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create compiler: %w", err)
	}
	a.compiler = compiler.NewInstrumented(cc, watchCfg.SourceRoot(), compiler.NewMetrics())

	return a, nil
}

func (a *app) initLogger() error {
	level, err := logging.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return err
	}

	loggerCfg := &logging.LoggerConfig{
		Level:     level,
		Format:    a.cfg.Log.Format,
		Output:    os.Stderr,
		Component: "livesass",
	}
	stderr := logging.NewLogger(loggerCfg)

	if a.cfg.Log.Dir == "" {
		a.logger = stderr
		return nil
	}

	fileLogger, err := logging.NewFileLogger(loggerCfg, a.cfg.Log.Dir)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, fileLogger.Close)
	a.logger = logging.NewMultiLogger(stderr, fileLogger)
	return nil
}

// logMetrics writes a summary of the compiles run so far.
func (a *app) logMetrics(ctx context.Context) {
	snapshot := a.compiler.Metrics().Snapshot()
	a.logger.Info(ctx, "compile summary",
		"total", snapshot.TotalCompiles,
		"failed", snapshot.FailedCompiles,
		"full_tree", snapshot.FullTreeCompiles,
		"average", snapshot.AverageDuration.String(),
		"success_rate", fmt.Sprintf("%.1f%%", a.compiler.Metrics().SuccessRate()))
}

// Close releases log files.
func (a *app) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
