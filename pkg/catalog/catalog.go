// SPDX-License-Identifier: MPL-2.0

// Package catalog holds the known mod combinations used to detect the mods a
// blueprint needs. Each Entry names an identifier prefix the mods use for
// their prototypes and the package versions the entry implies.
//
// Entry order is significant: when several entries require the same package,
// the one declared first decides the version.
package catalog

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

var (
	// ErrDuplicateEntry is returned when two entries share a name or alias.
	ErrDuplicateEntry = errors.New("duplicate catalog entry")
	// ErrInvalidEntry is returned when an entry has no name or no requirement.
	ErrInvalidEntry = errors.New("invalid catalog entry")
)

type (
	// Requirement is a package at a minimum version.
	Requirement struct {
		Package string  `json:"package" yaml:"package" toml:"package"`
		Version Version `json:"version" yaml:"version" toml:"version"`
	}

	// Entry is one known mod combination.
	Entry struct {
		Name    string   `json:"name" yaml:"name" toml:"name"`
		Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases,omitempty"`
		// Prefix marks identifiers the combination introduces. Entries without
		// a prefix only apply when selected by name.
		Prefix   string        `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix,omitempty"`
		Requires []Requirement `json:"requires" yaml:"requires" toml:"requires"`
	}

	// Catalog is an ordered, read-only list of entries. It is safe for
	// concurrent use.
	Catalog struct {
		entries []Entry
	}
)

// String renders the requirement in mod dependency form.
func (r Requirement) String() string {
	return r.Package + " >= " + r.Version.String()
}

// Matches reports whether id carries the entry's prefix.
func (e Entry) Matches(id string) bool {
	return e.Prefix != "" && strings.HasPrefix(id, e.Prefix)
}

// Names returns the entry name followed by its aliases.
func (e Entry) Names() []string {
	return append([]string{e.Name}, e.Aliases...)
}

func (e Entry) clone() Entry {
	e.Aliases = slices.Clone(e.Aliases)
	e.Requires = slices.Clone(e.Requires)
	return e
}

// New builds a catalog from entries in precedence order.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{}
	return c.Extend(entries...)
}

// Extend returns a new catalog with entries appended after the existing ones.
// Names and aliases are unique across the catalog, compared case-insensitively.
func (c *Catalog) Extend(entries ...Entry) (*Catalog, error) {
	out := &Catalog{entries: make([]Entry, 0, len(c.entries)+len(entries))}
	seen := make(map[string]string)
	for _, e := range slices.Concat(c.entries, entries) {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entry without a name", ErrInvalidEntry)
		}
		if len(e.Requires) == 0 {
			return nil, fmt.Errorf("%w: %s requires no packages", ErrInvalidEntry, e.Name)
		}
		for _, n := range e.Names() {
			key := strings.ToLower(n)
			if owner, ok := seen[key]; ok {
				return nil, fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateEntry, n, owner, e.Name)
			}
			seen[key] = e.Name
		}
		out.entries = append(out.entries, e.clone())
	}
	return out, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// All yields the entries in precedence order.
func (c *Catalog) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range c.entries {
			if !yield(e.clone()) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries in precedence order.
func (c *Catalog) Entries() []Entry {
	return slices.Collect(c.All())
}

// Lookup finds an entry by name or alias, ignoring case.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	for _, e := range c.entries {
		if slices.ContainsFunc(e.Names(), func(n string) bool { return strings.EqualFold(n, name) }) {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

// Matching yields the entries whose prefix id carries, in precedence order.
func (c *Catalog) Matching(id string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range c.entries {
			if e.Matches(id) && !yield(e.clone()) {
				return
			}
		}
	}
}
