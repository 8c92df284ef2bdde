package compiler

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/livesass/internal/errors"
)

type recordedRun struct {
	name string
	args []string
}

func newTestCompiler(t *testing.T, opts Options) (*CommandCompiler, *[]recordedRun, string, string) {
	t.Helper()

	root := t.TempDir()
	src := filepath.Join(root, "styles")
	dst := filepath.Join(root, "css")

	c, err := NewCommandCompiler(src, dst, opts)
	require.NoError(t, err)

	var runs []recordedRun
	c.runner = func(_ context.Context, name string, args ...string) ([]byte, error) {
		runs = append(runs, recordedRun{name: name, args: args})
		return nil, nil
	}
	return c, &runs, src, dst
}

func TestNewCommandCompiler(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		expectError bool
		description string
	}{
		{
			name:        "defaults",
			opts:        Options{},
			expectError: false,
			description: "Should default to the sass command",
		},
		{
			name:        "explicit sass",
			opts:        Options{Command: "sass", Style: "compressed"},
			expectError: false,
			description: "Should accept sass with a style",
		},
		{
			name:        "disallowed command",
			opts:        Options{Command: "rm"},
			expectError: true,
			description: "Should reject commands outside the allowlist",
		},
		{
			name:        "injection in command name",
			opts:        Options{Command: "sass; rm -rf /"},
			expectError: true,
			description: "Should reject command injection in command name",
		},
		{
			name:        "injection in args",
			opts:        Options{Args: []string{"; rm -rf /"}},
			expectError: true,
			description: "Should reject command injection in arguments",
		},
		{
			name:        "path traversal in args",
			opts:        Options{Args: []string{"--load-path=../../etc"}},
			expectError: true,
			description: "Should reject path traversal in arguments",
		},
		{
			name:        "invalid exclude pattern",
			opts:        Options{Exclude: []string{"[vendor"}},
			expectError: true,
			description: "Should reject malformed exclude globs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCommandCompiler("/src", "/dst", tt.opts)
			if tt.expectError {
				assert.Error(t, err, tt.description)
			} else {
				assert.NoError(t, err, tt.description)
			}
		})
	}
}

func TestNewCommandCompiler_RejectedCommandIsSecurityError(t *testing.T) {
	_, err := NewCommandCompiler("/src", "/dst", Options{Command: "bash"})
	require.Error(t, err)

	var we *errors.WatchError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, errors.ErrorTypeSecurity, we.Type)
	assert.Equal(t, errors.ErrCodeCommandRejected, we.Code)
}

func TestCommandCompiler_CompileSingleFile(t *testing.T) {
	c, runs, src, dst := newTestCompiler(t, Options{Style: "expanded"})

	err := c.Compile(context.Background(), filepath.Join(src, "site", "main.scss"))
	require.NoError(t, err)

	require.Len(t, *runs, 1)
	run := (*runs)[0]
	assert.Equal(t, "sass", run.name)
	assert.Equal(t, []string{
		"--style=expanded",
		"--no-source-map",
		filepath.Join(src, "site", "main.scss"),
		filepath.Join(dst, "site", "main.css"),
	}, run.args)
}

func TestCommandCompiler_CompileTree(t *testing.T) {
	c, runs, src, dst := newTestCompiler(t, Options{SourceMap: true})

	require.NoError(t, c.Compile(context.Background(), src))

	require.Len(t, *runs, 1)
	assert.Equal(t, []string{src + ":" + dst}, (*runs)[0].args)
}

func TestCommandCompiler_PartialCompilesTree(t *testing.T) {
	c, runs, src, dst := newTestCompiler(t, Options{SourceMap: true})

	require.NoError(t, c.Compile(context.Background(), filepath.Join(src, "_vars.scss")))

	require.Len(t, *runs, 1)
	assert.Equal(t, []string{src + ":" + dst}, (*runs)[0].args)
}

func TestCommandCompiler_ShellCharactersInFileName(t *testing.T) {
	c, runs, src, dst := newTestCompiler(t, Options{})

	path := filepath.Join(src, "a&b.scss")
	require.NoError(t, c.Compile(context.Background(), path))

	require.Len(t, *runs, 1)
	args := (*runs)[0].args
	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, []string{path, filepath.Join(dst, "a&b.css")}, args[len(args)-2:])
}

func TestCommandCompiler_OutsideRoot(t *testing.T) {
	c, runs, _, _ := newTestCompiler(t, Options{})

	err := c.Compile(context.Background(), "/elsewhere/main.scss")
	require.Error(t, err)
	assert.True(t, errors.IsCompileError(err))
	assert.Empty(t, *runs)
}

func TestCommandCompiler_Failure(t *testing.T) {
	c, _, src, _ := newTestCompiler(t, Options{})
	c.runner = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Error: expected \";\".\n"), stderrors.New("exit status 65")
	}

	path := filepath.Join(src, "broken.scss")
	err := c.Compile(context.Background(), path)
	require.Error(t, err)

	var we *errors.WatchError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, errors.ErrorTypeCompile, we.Type)
	assert.Equal(t, path, we.Path)
	assert.Contains(t, err.Error(), "exit status 65")
	assert.Contains(t, err.Error(), `expected ";"`)
}

func TestCommandCompiler_PartialFailureKeepsPath(t *testing.T) {
	c, _, src, _ := newTestCompiler(t, Options{})
	c.runner = func(context.Context, string, ...string) ([]byte, error) {
		return nil, stderrors.New("exit status 65")
	}

	path := filepath.Join(src, "_mixins.scss")
	err := c.Compile(context.Background(), path)

	var we *errors.WatchError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, path, we.Path)
}

func TestCommandCompiler_Interrupted(t *testing.T) {
	c, _, src, _ := newTestCompiler(t, Options{})
	c.runner = func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Compile(ctx, filepath.Join(src, "main.scss"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommandCompiler_IsExcluded(t *testing.T) {
	c, err := NewCommandCompiler("/src", "/dst", Options{Exclude: []string{"*.module.scss"}})
	require.NoError(t, err)

	assert.True(t, c.IsExcluded("_vars.scss"))
	assert.True(t, c.IsExcluded("button.module.scss"))
	assert.False(t, c.IsExcluded("main.scss"))
}
