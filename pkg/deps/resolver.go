// SPDX-License-Identifier: MPL-2.0

// Package deps determines the mods and versions a blueprint document needs.
//
// Resolution follows a fixed policy. Explicit metadata embedded by the
// author (see MarkerTag) is returned unchanged when present. Otherwise every
// referenced identifier, across all reference categories, is matched against
// the catalog prefixes; every matching entry contributes its requirements
// and the first requirement recorded for a package wins.
package deps

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fgardt/factorio-scanner-sub002/pkg/blueprint"
	"github.com/fgardt/factorio-scanner-sub002/pkg/catalog"
)

// ErrUnknownPreset is returned when a preset name is not in the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// Resolution sources.
const (
	SourceExplicit  Source = "explicit"
	SourcePreset    Source = "preset"
	SourceHeuristic Source = "heuristic"
	SourceNone      Source = "none"
)

type (
	// Source names where a dependency list came from.
	Source string

	// Resolver resolves documents against a catalog. It holds no mutable
	// state and is safe for concurrent use.
	Resolver struct {
		catalog *catalog.Catalog
	}

	// Match records an identifier that carried a catalog entry's prefix.
	Match struct {
		ID    string `json:"id" yaml:"id" toml:"id"`
		Entry string `json:"entry" yaml:"entry" toml:"entry"`
	}

	// Explanation describes how a dependency list was obtained.
	Explanation struct {
		Source       Source  `json:"source" yaml:"source" toml:"source"`
		Preset       string  `json:"preset,omitempty" yaml:"preset,omitempty" toml:"preset,omitempty"`
		Matches      []Match `json:"matches,omitempty" yaml:"matches,omitempty" toml:"matches,omitempty"`
		Dependencies *List   `json:"dependencies" yaml:"-" toml:"-"`
	}
)

// NewResolver builds a resolver over c. A nil catalog means catalog.Default().
func NewResolver(c *catalog.Catalog) *Resolver {
	if c == nil {
		c = catalog.Default()
	}
	return &Resolver{catalog: c}
}

// Catalog returns the catalog the resolver matches against.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

// Resolve returns the dependency list of doc. It never fails: a document
// without explicit metadata or matching identifiers yields an empty list.
func (r *Resolver) Resolve(doc *blueprint.Document) *List {
	return r.Explain(doc).Dependencies
}

// Explain resolves doc and reports the source and, for heuristic
// resolution, every identifier that matched.
func (r *Resolver) Explain(doc *blueprint.Document) Explanation {
	if list, ok := ExplicitMods(doc); ok {
		return Explanation{Source: SourceExplicit, Dependencies: list}
	}

	list, matches := r.Detect(doc.References().Flatten())
	src := SourceHeuristic
	if len(matches) == 0 {
		src = SourceNone
	}
	return Explanation{Source: src, Matches: matches, Dependencies: list}
}

// Detect matches every identifier in ids against every catalog entry, in
// catalog order. Matches are returned sorted by identifier, then entry order.
func (r *Resolver) Detect(ids []string) (*List, []Match) {
	ids = slices.Clone(ids)
	slices.Sort(ids)

	var matches []Match
	hits := make(map[string]bool)
	for _, id := range ids {
		for e := range r.catalog.Matching(id) {
			matches = append(matches, Match{ID: id, Entry: e.Name})
			hits[e.Name] = true
		}
	}

	// Requirements are added in catalog order so the first declared entry
	// decides each package's version, whatever the identifier order.
	list := NewList()
	for e := range r.catalog.All() {
		if !hits[e.Name] {
			continue
		}
		addRequirements(list, e)
	}
	return list, matches
}

// FromEntry returns the requirements of the catalog entry named name, as
// chosen explicitly by a user.
func (r *Resolver) FromEntry(name string) (*List, error) {
	e, ok := r.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	list := NewList()
	addRequirements(list, e)
	return list, nil
}

// ExplainEntry is FromEntry wrapped in an Explanation.
func (r *Resolver) ExplainEntry(name string) (Explanation, error) {
	list, err := r.FromEntry(name)
	if err != nil {
		return Explanation{}, err
	}
	e, _ := r.catalog.Lookup(name)
	return Explanation{Source: SourcePreset, Preset: e.Name, Dependencies: list}, nil
}

// Resolve resolves doc against the built-in catalog.
func Resolve(doc *blueprint.Document) *List {
	return NewResolver(nil).Resolve(doc)
}

func addRequirements(list *List, e catalog.Entry) {
	for _, req := range e.Requires {
		list.Add(req.Package, AtLeast(req.Version))
	}
}
