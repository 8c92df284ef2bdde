package config

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/conneroisu/livesass/internal/errors"
)

// WatchOptions are the caller-supplied settings for a watcher. They are
// validated and frozen by NewWatchConfig.
type WatchOptions struct {
	SourceRoot      string
	DestinationRoot string
	NameFilters     []string
	CompileOnStart  bool
}

// WatchConfig is the immutable configuration of one watcher instance.
type WatchConfig struct {
	sourceRoot      string
	destinationRoot string
	nameFilters     []string
	matchers        []glob.Glob
	compileOnStart  bool
}

// NewWatchConfig validates opts and returns the frozen configuration. Empty
// roots, an empty filter set or an uncompilable filter fail with a
// configuration error.
func NewWatchConfig(opts WatchOptions) (*WatchConfig, error) {
	if strings.TrimSpace(opts.SourceRoot) == "" {
		return nil, errors.NewConfigError(errors.ErrCodeEmptySourceRoot,
			"source root must not be empty")
	}
	if strings.TrimSpace(opts.DestinationRoot) == "" {
		return nil, errors.NewConfigError(errors.ErrCodeEmptyDestinationRoot,
			"destination root must not be empty")
	}
	if len(opts.NameFilters) == 0 {
		return nil, errors.NewConfigError(errors.ErrCodeEmptyNameFilters,
			"name filters must contain at least one pattern")
	}

	sourceRoot, err := filepath.Abs(opts.SourceRoot)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeEmptySourceRoot,
			"source root cannot be made absolute: "+err.Error())
	}
	destinationRoot, err := filepath.Abs(opts.DestinationRoot)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeEmptyDestinationRoot,
			"destination root cannot be made absolute: "+err.Error())
	}

	filters := make([]string, 0, len(opts.NameFilters))
	matchers := make([]glob.Glob, 0, len(opts.NameFilters))
	for _, pattern := range opts.NameFilters {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidNameFilter,
				"name filter must not be blank")
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidNameFilter,
				"invalid name filter "+pattern+": "+err.Error())
		}
		filters = append(filters, pattern)
		matchers = append(matchers, g)
	}

	return &WatchConfig{
		sourceRoot:      sourceRoot,
		destinationRoot: destinationRoot,
		nameFilters:     filters,
		matchers:        matchers,
		compileOnStart:  opts.CompileOnStart,
	}, nil
}

// SourceRoot returns the absolute directory being watched.
func (c *WatchConfig) SourceRoot() string { return c.sourceRoot }

// DestinationRoot returns the absolute directory receiving artifacts.
func (c *WatchConfig) DestinationRoot() string { return c.destinationRoot }

// NameFilters returns a copy of the configured glob patterns.
func (c *WatchConfig) NameFilters() []string {
	out := make([]string, len(c.nameFilters))
	copy(out, c.nameFilters)
	return out
}

// CompileOnStart reports whether Start compiles the whole tree.
func (c *WatchConfig) CompileOnStart() bool { return c.compileOnStart }

// WatchSubdirectories is always true.
func (c *WatchConfig) WatchSubdirectories() bool { return true }

// MatchName reports whether a file name (not a path) passes any name filter.
func (c *WatchConfig) MatchName(name string) bool {
	for _, m := range c.matchers {
		if m.Match(name) {
			return true
		}
	}
	return false
}
