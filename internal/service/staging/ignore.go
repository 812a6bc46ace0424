package staging

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
)

// BaseIgnore lists top-level project entries that never enter the package.
//
//nolint:gochecknoglobals // Read-only table.
var BaseIgnore = []string{
	"node_modules",
	"package-lock.json",
	"package.json",
	"dist",
	mod.DescriptorFilename,
	".git",
}

// IgnoreSet matches top-level entry names against literal names and glob patterns.
type IgnoreSet struct {
	patterns []string
}

// NewIgnoreSet returns BaseIgnore extended with extra patterns.
func NewIgnoreSet(extra ...string) *IgnoreSet {
	patterns := slices.Clone(BaseIgnore)

	for _, pattern := range extra {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || slices.Contains(patterns, pattern) {
			continue
		}

		patterns = append(patterns, pattern)
	}

	return &IgnoreSet{patterns: patterns}
}

// WithOutputDir also ignores the first component of outputDir when it lies inside root.
func (s *IgnoreSet) WithOutputDir(root, outputDir string) *IgnoreSet {
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	rel, err := filepath.Rel(root, outputDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return s
	}

	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]

	return NewIgnoreSet(append(slices.Clone(s.patterns[len(BaseIgnore):]), first)...)
}

// Match reports whether name is ignored.
func (s *IgnoreSet) Match(name string) bool {
	for _, pattern := range s.patterns {
		if pattern == name {
			return true
		}

		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}

	return false
}

// Patterns returns a copy of the active patterns.
func (s *IgnoreSet) Patterns() []string {
	return slices.Clone(s.patterns)
}
