// Package testutils holds fixtures shared by the tests of several packages.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/livesass/internal/config"
)

// SassProject is a temporary project with a source and a destination tree.
type SassProject struct {
	Root        string
	Source      string
	Destination string
}

// CreateSassProject creates a temporary project structure for testing
func CreateSassProject(t *testing.T) *SassProject {
	t.Helper()

	root := t.TempDir()
	p := &SassProject{
		Root:        root,
		Source:      filepath.Join(root, "styles"),
		Destination: filepath.Join(root, "public", "css"),
	}
	for _, dir := range []string{p.Source, p.Destination} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	return p
}

// WriteSource writes a source file below the source root, creating parent
// directories, and returns its absolute path.
func (p *SassProject) WriteSource(t *testing.T, rel, content string) string {
	t.Helper()

	path := filepath.Join(p.Source, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Artifact returns the destination path of a compiled file, e.g. "pages/home.css".
func (p *SassProject) Artifact(rel string) string {
	return filepath.Join(p.Destination, rel)
}

// WatchConfig creates a validated watch configuration for the project.
func (p *SassProject) WatchConfig(t *testing.T, compileOnStart bool) *config.WatchConfig {
	t.Helper()

	cfg, err := config.NewWatchConfig(config.WatchOptions{
		SourceRoot:      p.Source,
		DestinationRoot: p.Destination,
		NameFilters:     []string{"*.scss", "*.sass"},
		CompileOnStart:  compileOnStart,
	})
	require.NoError(t, err)
	return cfg
}

// WaitForFile waits until path exists.
func WaitForFile(t *testing.T, path string, timeout time.Duration) {
	t.Helper()
	waitFor(t, timeout, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, "file %s was not created within %v", path, timeout)
}

// WaitForRemoval waits until path no longer exists.
func WaitForRemoval(t *testing.T, path string, timeout time.Duration) {
	t.Helper()
	waitFor(t, timeout, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, "file %s was not removed within %v", path, timeout)
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(t *testing.T, path string, originalModTime time.Time, timeout time.Duration) {
	t.Helper()
	waitFor(t, timeout, func() bool {
		info, err := os.Stat(path)
		return err == nil && info.ModTime().After(originalModTime)
	}, "file %s was not modified within %v", path, timeout)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, format string, args ...interface{}) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf(format, args...)
}
