// Package compiler provides the Sass compilers the watcher drives: a command
// compiler running the dart-sass CLI and a metrics wrapper.
package compiler

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/conneroisu/livesass/internal/errors"
	"github.com/conneroisu/livesass/internal/validation"
	"github.com/conneroisu/livesass/internal/watcher"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Options configures a CommandCompiler.
type Options struct {
	Command   string
	Args      []string
	Style     string
	SourceMap bool
	Exclude   []string
}

// CommandCompiler compiles Sass sources by running the sass executable. A
// single file is compiled to its resolved artifact path; the source root is
// compiled in directory mode (source:destination), which skips partials.
type CommandCompiler struct {
	command    string
	args       []string
	sourceRoot string
	resolver   *watcher.OutputResolver
	excluder   *Excluder
	runner     Runner
}

// NewCommandCompiler creates a compiler for the given roots.
func NewCommandCompiler(sourceRoot, destinationRoot string, opts Options) (*CommandCompiler, error) {
	command := opts.Command
	if command == "" {
		command = "sass"
	}
	if err := validation.ValidateCommand(command, validation.AllowedCompilerCommands); err != nil {
		return nil, errors.NewSecurityError(errors.ErrCodeCommandRejected, "command validation failed", err)
	}

	args := make([]string, 0, len(opts.Args)+2)
	if opts.Style != "" {
		args = append(args, "--style="+opts.Style)
	}
	if !opts.SourceMap {
		args = append(args, "--no-source-map")
	}
	for _, arg := range opts.Args {
		if err := validation.ValidateArgument(arg); err != nil {
			return nil, errors.NewSecurityError(errors.ErrCodeCommandRejected,
				fmt.Sprintf("invalid argument '%s'", arg), err)
		}
		args = append(args, arg)
	}

	excluder, err := NewExcluder(opts.Exclude)
	if err != nil {
		return nil, err
	}

	return &CommandCompiler{
		command:    command,
		args:       args,
		sourceRoot: filepath.Clean(sourceRoot),
		resolver:   watcher.NewOutputResolver(sourceRoot, destinationRoot),
		excluder:   excluder,
		runner:     execRunner,
	}, nil
}

// IsExcluded implements watcher.Compiler.
func (c *CommandCompiler) IsExcluded(name string) bool {
	return c.excluder.IsExcluded(name)
}

// Compile implements watcher.Compiler. A partial has no output of its own, so
// compiling one rebuilds the whole tree instead.
func (c *CommandCompiler) Compile(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	input := path
	if input != c.sourceRoot && c.IsExcluded(filepath.Base(input)) {
		input = c.sourceRoot
	}

	target, err := c.target(input)
	if err != nil {
		return errors.NewCompileError(path, err)
	}

	args := append(append([]string{}, c.args...), target...)
	output, err := c.runner(ctx, c.command, args...)
	if err != nil {
		if ctx.Err() != nil {
			return errors.NewCompileError(path, fmt.Errorf("%s interrupted: %w", c.command, ctx.Err()))
		}
		return errors.NewCompileError(path,
			fmt.Errorf("%s failed: %w\nOutput: %s", c.command, err, strings.TrimSpace(string(output))))
	}

	return nil
}

func (c *CommandCompiler) target(path string) ([]string, error) {
	if path == c.sourceRoot {
		destRoot := c.resolver.Root()
		for _, p := range []string{path, destRoot} {
			if err := validation.ValidatePath(p); err != nil {
				return nil, err
			}
		}
		return []string{path + ":" + destRoot}, nil
	}

	artifact, err := c.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}
	for _, p := range []string{path, artifact} {
		if err := validation.ValidatePath(p); err != nil {
			return nil, err
		}
	}
	return []string{path, artifact}, nil
}
