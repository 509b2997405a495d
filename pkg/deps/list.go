// SPDX-License-Identifier: MPL-2.0

package deps

import (
	"encoding/json"
	"iter"
	"maps"
	"slices"
	"strings"
)

type (
	// List maps package names to version constraints. The first constraint
	// added for a package is kept. Later, different constraints for the same
	// package are recorded as conflicts instead of being dropped silently.
	// The zero value is empty and ready to use.
	List struct {
		deps      map[string]Constraint
		conflicts []Conflict
	}

	// Dependency is one package with its constraint.
	Dependency struct {
		Name       string     `json:"name" yaml:"name" toml:"name"`
		Constraint Constraint `json:"constraint" yaml:"constraint" toml:"constraint"`
	}

	// Conflict records a constraint that lost to an earlier one.
	Conflict struct {
		Name    string     `json:"name" yaml:"name" toml:"name"`
		Kept    Constraint `json:"kept" yaml:"kept" toml:"kept"`
		Ignored Constraint `json:"ignored" yaml:"ignored" toml:"ignored"`
	}
)

// NewList builds an empty list.
func NewList() *List {
	return &List{deps: make(map[string]Constraint)}
}

// Add records c for name unless name already has a constraint. It reports
// whether c was recorded.
func (l *List) Add(name string, c Constraint) bool {
	if existing, ok := l.deps[name]; ok {
		if existing != c {
			l.conflicts = append(l.conflicts, Conflict{Name: name, Kept: existing, Ignored: c})
		}
		return false
	}
	if l.deps == nil {
		l.deps = make(map[string]Constraint)
	}
	l.deps[name] = c
	return true
}

// Get returns the constraint recorded for name.
func (l *List) Get(name string) (Constraint, bool) {
	c, ok := l.deps[name]
	return c, ok
}

// Len returns the number of packages.
func (l *List) Len() int { return len(l.deps) }

// Names returns the package names in sorted order.
func (l *List) Names() []string { return slices.Sorted(maps.Keys(l.deps)) }

// All yields packages and constraints in name order.
func (l *List) All() iter.Seq2[string, Constraint] {
	return func(yield func(string, Constraint) bool) {
		for _, name := range l.Names() {
			if !yield(name, l.deps[name]) {
				return
			}
		}
	}
}

// Dependencies returns the packages in name order.
func (l *List) Dependencies() []Dependency {
	out := make([]Dependency, 0, len(l.deps))
	for name, c := range l.All() {
		out = append(out, Dependency{Name: name, Constraint: c})
	}
	return out
}

// Conflicts returns the ignored constraints in the order they were added.
func (l *List) Conflicts() []Conflict { return slices.Clone(l.conflicts) }

// String renders one "name op version" line per package, in name order.
func (l *List) String() string {
	var b strings.Builder
	for name, c := range l.All() {
		b.WriteString(name)
		if s := c.String(); s != "" {
			b.WriteString(" " + s)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Equal reports whether a and b hold the same packages and constraints.
func Equal(a, b *List) bool {
	return maps.Equal(a.deps, b.deps)
}

// MarshalJSON writes an object of package name to constraint string.
func (l *List) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(l.deps))
	for name, c := range l.deps {
		out[name] = c.String()
	}
	return json.Marshal(out)
}
