//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/livesass/internal/compiler"
	"github.com/conneroisu/livesass/internal/logging"
	"github.com/conneroisu/livesass/internal/testutils"
	"github.com/conneroisu/livesass/internal/watcher"
)

const waitTimeout = 10 * time.Second

func requireSass(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sass"); err != nil {
		t.Skip("sass executable not found in PATH")
	}
}

func startWatcher(t *testing.T, p *testutils.SassProject, compileOnStart bool) (*watcher.Controller, *compiler.Metrics) {
	t.Helper()

	cc, err := compiler.NewCommandCompiler(p.Source, p.Destination, compiler.Options{Style: "expanded"})
	require.NoError(t, err)
	metrics := compiler.NewMetrics()

	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Output: os.Stderr})
	ctrl, err := watcher.New(p.WatchConfig(t, compileOnStart), compiler.NewInstrumented(cc, p.Source, metrics),
		watcher.WithLogger(logger))
	require.NoError(t, err)

	require.NoError(t, ctrl.Start(context.Background()))
	t.Cleanup(func() { _ = ctrl.Stop() })
	return ctrl, metrics
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestIntegration_InitialBuild(t *testing.T) {
	requireSass(t)
	p := testutils.CreateSassProject(t)
	p.WriteSource(t, "_vars.scss", "$brand: #336699;\n")
	p.WriteSource(t, "main.scss", "@use 'vars';\nbody { color: vars.$brand; }\n")
	p.WriteSource(t, "pages/home.scss", "h1 { margin: 0; }\n")

	_, metrics := startWatcher(t, p, true)

	assert.Contains(t, readFile(t, p.Artifact("main.css")), "#336699")
	assert.FileExists(t, p.Artifact("pages/home.css"))
	assert.NoFileExists(t, p.Artifact("_vars.css"))
	assert.Equal(t, int64(1), metrics.Snapshot().FullTreeCompiles)
}

func TestIntegration_EditRecompiles(t *testing.T) {
	requireSass(t)
	p := testutils.CreateSassProject(t)
	p.WriteSource(t, "main.scss", "body { color: red; }\n")
	startWatcher(t, p, true)

	artifact := p.Artifact("main.css")
	require.FileExists(t, artifact)

	p.WriteSource(t, "main.scss", "body { color: blue; }\n")
	require.Eventually(t, func() bool {
		content, err := os.ReadFile(artifact)
		return err == nil && strings.Contains(string(content), "blue")
	}, waitTimeout, 20*time.Millisecond)
}

func TestIntegration_NewFileInNewDirectory(t *testing.T) {
	requireSass(t)
	p := testutils.CreateSassProject(t)
	startWatcher(t, p, false)

	p.WriteSource(t, "components/button.scss", ".btn { padding: 4px; }\n")
	testutils.WaitForFile(t, p.Artifact("components/button.css"), waitTimeout)
}

func TestIntegration_RenameMovesArtifact(t *testing.T) {
	requireSass(t)
	p := testutils.CreateSassProject(t)
	oldPath := p.WriteSource(t, "old.scss", "a { color: red; }\n")
	startWatcher(t, p, true)
	require.FileExists(t, p.Artifact("old.css"))

	require.NoError(t, os.Rename(oldPath, filepath.Join(p.Source, "new.scss")))

	testutils.WaitForRemoval(t, p.Artifact("old.css"), waitTimeout)
	testutils.WaitForFile(t, p.Artifact("new.css"), waitTimeout)
}

func TestIntegration_DeleteRemovesArtifact(t *testing.T) {
	requireSass(t)
	p := testutils.CreateSassProject(t)
	path := p.WriteSource(t, "gone.scss", "a { color: red; }\n")
	startWatcher(t, p, true)
	require.FileExists(t, p.Artifact("gone.css"))

	require.NoError(t, os.Remove(path))
	testutils.WaitForRemoval(t, p.Artifact("gone.css"), waitTimeout)
}

func TestIntegration_PartialChangeRebuildsDependents(t *testing.T) {
	requireSass(t)
	p := testutils.CreateSassProject(t)
	p.WriteSource(t, "_vars.scss", "$brand: #111111;\n")
	p.WriteSource(t, "main.scss", "@use 'vars';\nbody { color: vars.$brand; }\n")
	startWatcher(t, p, true)

	artifact := p.Artifact("main.css")
	require.Contains(t, readFile(t, artifact), "#111111")

	p.WriteSource(t, "_vars.scss", "$brand: #222222;\n")
	require.Eventually(t, func() bool {
		content, err := os.ReadFile(artifact)
		return err == nil && strings.Contains(string(content), "#222222")
	}, waitTimeout, 20*time.Millisecond)
}

func TestIntegration_CompileErrorReportedAndCleared(t *testing.T) {
	requireSass(t)
	p := testutils.CreateSassProject(t)
	ctrl, _ := startWatcher(t, p, false)

	path := p.WriteSource(t, "broken.scss", "body { color: red\n")
	require.Eventually(t, func() bool { return len(ctrl.Failures()) == 1 }, waitTimeout, 20*time.Millisecond)
	assert.Equal(t, path, ctrl.Failures()[0].Path)

	p.WriteSource(t, "broken.scss", "body { color: red; }\n")
	require.Eventually(t, func() bool { return len(ctrl.Failures()) == 0 }, waitTimeout, 20*time.Millisecond)
	assert.FileExists(t, p.Artifact("broken.css"))
}
