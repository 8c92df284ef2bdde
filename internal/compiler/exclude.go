package compiler

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// PartialPrefix marks Sass partials: files only ever imported by others.
const PartialPrefix = "_"

// Excluder decides which file names are partials.
type Excluder struct {
	patterns []glob.Glob
}

// NewExcluder creates an excluder. Names starting with PartialPrefix are
// always excluded; patterns add further exclusions matched against the file
// name.
func NewExcluder(patterns []string) (*Excluder, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return &Excluder{patterns: compiled}, nil
}

// IsExcluded reports whether name is a partial.
func (e *Excluder) IsExcluded(name string) bool {
	if strings.HasPrefix(name, PartialPrefix) {
		return true
	}
	for _, g := range e.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
