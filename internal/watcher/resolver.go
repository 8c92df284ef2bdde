package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputExtension is the extension of every generated artifact.
const OutputExtension = ".css"

// OutputResolver maps source paths to artifact paths. It never touches the
// filesystem.
type OutputResolver struct {
	sourceRoot      string
	destinationRoot string
}

// NewOutputResolver creates a resolver for the given roots.
func NewOutputResolver(sourceRoot, destinationRoot string) *OutputResolver {
	return &OutputResolver{
		sourceRoot:      filepath.Clean(sourceRoot),
		destinationRoot: filepath.Clean(destinationRoot),
	}
}

// Resolve returns the artifact path for sourcePath: its location relative to
// the source root, re-rooted under the destination root, with the extension
// replaced by OutputExtension. Paths outside the source root are rejected.
func (r *OutputResolver) Resolve(sourcePath string) (string, error) {
	rel, err := filepath.Rel(r.sourceRoot, filepath.Clean(sourcePath))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", sourcePath, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is not below source root %s", sourcePath, r.sourceRoot)
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + OutputExtension
	return filepath.Join(r.destinationRoot, rel), nil
}

// Root returns the destination root.
func (r *OutputResolver) Root() string {
	return r.destinationRoot
}
