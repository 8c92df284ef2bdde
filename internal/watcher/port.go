package watcher

import "context"

// Compiler is the compilation capability the watcher drives. Compile is called
// with either a single source file or the configured source root; the latter
// requests a full-tree build.
type Compiler interface {
	Compile(ctx context.Context, path string) error
	// IsExcluded reports whether a file name denotes a fragment that is only
	// ever included by other sources (a partial).
	IsExcluded(name string) bool
}

// CompilerFunc adapts a function to a Compiler that excludes nothing.
type CompilerFunc func(ctx context.Context, path string) error

// Compile implements Compiler.
func (f CompilerFunc) Compile(ctx context.Context, path string) error { return f(ctx, path) }

// IsExcluded implements Compiler.
func (f CompilerFunc) IsExcluded(string) bool { return false }
