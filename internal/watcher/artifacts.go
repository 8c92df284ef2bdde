package watcher

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/conneroisu/livesass/internal/errors"
	"github.com/conneroisu/livesass/internal/logging"
)

// ArtifactManager keeps generated output consistent with removed sources.
type ArtifactManager struct {
	fs         afero.Fs
	compiler   Compiler
	resolver   *OutputResolver
	sourceRoot string
	logger     logging.Logger
}

// NewArtifactManager creates a manager deleting artifacts from fs.
func NewArtifactManager(fs afero.Fs, compiler Compiler, resolver *OutputResolver, sourceRoot string, logger logging.Logger) *ArtifactManager {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &ArtifactManager{
		fs:         fs,
		compiler:   compiler,
		resolver:   resolver,
		sourceRoot: filepath.Clean(sourceRoot),
		logger:     logger.WithComponent("artifacts"),
	}
}

// HandleRemoved reacts to path disappearing from the source tree.
//
// When the file is a partial every output may have depended on it, and with
// no include graph available the whole tree is recompiled. That rebuild runs
// before the file's own artifact is deleted so the cleanup does not undo it.
// The artifact is deleted in every case; a missing artifact is fine and any
// other deletion failure is logged. Only a failure of the full rebuild is
// returned.
func (m *ArtifactManager) HandleRemoved(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	var compileErr error
	if m.compiler.IsExcluded(filepath.Base(path)) {
		m.logger.Info(ctx, "partial removed, rebuilding source tree",
			"path", path,
			"root", m.sourceRoot)
		compileErr = m.compiler.Compile(ctx, m.sourceRoot)
	}

	m.deleteArtifact(ctx, path)

	return compileErr
}

func (m *ArtifactManager) deleteArtifact(ctx context.Context, path string) {
	artifact, err := m.resolver.Resolve(path)
	if err != nil {
		m.logger.Warn(ctx, err, "cannot resolve artifact", "path", path)
		return
	}

	err = m.fs.Remove(artifact)
	switch {
	case err == nil:
		m.logger.Info(ctx, "artifact deleted", "source", path, "artifact", artifact)
	case os.IsNotExist(err):
		m.logger.Debug(ctx, "no artifact to delete", "source", path, "artifact", artifact)
	default:
		m.logger.Warn(ctx,
			errors.NewTransientError(errors.ErrCodeArtifactDelete, "artifact deletion failed", err).WithPath(artifact),
			"artifact not deleted",
			"source", path)
	}
}
