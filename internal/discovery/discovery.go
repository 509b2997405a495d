// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnores are always excluded, whatever the configured ignores.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Matcher selects files by root-relative slash path.
	Matcher struct {
		patterns []string
		ignores  []string
	}

	// File is a discovered document file.
	File struct {
		// Root is the scan root the file was found under.
		Root string `json:"root"`
		// Rel is the slash path relative to Root, or the base name for file roots.
		Rel string `json:"rel"`
		// Path is the path to open.
		Path string `json:"path"`
	}

	// Result bundles the discovered files with non-fatal diagnostics.
	Result struct {
		Files       []File
		Diagnostics []Diagnostic
	}
)

// NewMatcher validates patterns and ignores and merges ignores with the
// built-in defaults. An empty pattern list matches every file.
func NewMatcher(patterns, ignores []string) (*Matcher, error) {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid pattern %q", pat)
		}
	}
	for _, pat := range ignores {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pat)
		}
	}
	return &Matcher{
		patterns: slices.Clone(patterns),
		ignores:  slices.Concat(defaultIgnores, ignores),
	}, nil
}

// Match reports whether rel is selected: it matches a pattern and no ignore.
func (m *Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if m.Ignored(rel) {
		return false
	}
	if len(m.patterns) == 0 {
		return true
	}
	return matchAny(m.patterns, rel)
}

// Ignored reports whether rel matches an ignore pattern.
func (m *Matcher) Ignored(rel string) bool {
	return matchAny(m.ignores, filepath.ToSlash(rel))
}

// IgnoredDir reports whether the directory rel and everything below it is
// ignored.
func (m *Matcher) IgnoredDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	return m.Ignored(rel) || m.Ignored(rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// Find walks roots in order and returns the selected files. Files named
// directly as roots are always selected. Within a directory root, files are
// sorted by Rel; duplicates across roots are kept once, first root wins.
//
// A root that does not exist is an error. Unreadable entries below a root are
// skipped with a warning diagnostic.
func Find(ctx context.Context, roots []string, m *Matcher) (*Result, error) {
	res := &Result{}
	seen := make(map[string]bool)
	add := func(f File) {
		key := filepath.Clean(f.Path)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		res.Files = append(res.Files, f)
	}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("scan root %q: %w", root, err)
		}
		if !info.IsDir() {
			add(File{Root: root, Rel: filepath.Base(root), Path: root})
			continue
		}

		var found []File
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Code:     "path_unreadable",
					Message:  fmt.Sprintf("skipping unreadable path %s: %v", path, err),
					Path:     path,
					Cause:    err,
				})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil || rel == "." {
				return nil //nolint:nilerr // the root itself, or a path that cannot be made relative
			}
			if d.IsDir() {
				if m.IgnoredDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !m.Match(rel) {
				return nil
			}
			found = append(found, File{Root: root, Rel: filepath.ToSlash(rel), Path: path})
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %q: %w", root, walkErr)
		}

		slices.SortFunc(found, func(a, b File) int { return strings.Compare(a.Rel, b.Rel) })
		for _, f := range found {
			add(f)
		}
	}
	return res, nil
}
