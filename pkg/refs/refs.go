// SPDX-License-Identifier: MPL-2.0

// Package refs collects the external game objects a blueprint document
// refers to. References are bucketed by Category and deduplicated.
package refs

import (
	"iter"
	"maps"
	"slices"
)

// Reference categories.
const (
	Recipe        Category = "recipe"
	Entity        Category = "entity"
	Tile          Category = "tile"
	Fluid         Category = "fluid"
	Item          Category = "item"
	Equipment     Category = "equipment"
	VirtualSignal Category = "virtual-signal"
	Quality       Category = "quality"
	SpaceLocation Category = "space-location"
	AsteroidChunk Category = "asteroid-chunk"
	Other         Category = "other"
)

const categoryCount = 11

type (
	// Category names a kind of referenced game object. Other holds free-form
	// marker keys that name no formal object.
	Category string

	// Set holds one identifier set per category. The zero value is empty and
	// ready to use. Sets are not safe for concurrent mutation.
	Set struct {
		ids map[Category]map[string]struct{}
	}

	// Collector is implemented by every document node that can carry
	// references. References returns a fresh set owned by the caller.
	Collector interface {
		References() Set
	}
)

// Categories returns every category in canonical order.
func Categories() []Category {
	return []Category{
		Recipe, Entity, Tile, Fluid, Item, Equipment,
		VirtualSignal, Quality, SpaceLocation, AsteroidChunk, Other,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories(), c)
}

// New builds an empty set.
func New() Set {
	return Set{ids: make(map[Category]map[string]struct{}, categoryCount)}
}

// Insert adds id to category c. Empty identifiers are ignored.
func (s *Set) Insert(c Category, id string) {
	if id == "" {
		return
	}
	if s.ids == nil {
		s.ids = make(map[Category]map[string]struct{}, categoryCount)
	}
	bucket, ok := s.ids[c]
	if !ok {
		bucket = make(map[string]struct{})
		s.ids[c] = bucket
	}
	bucket[id] = struct{}{}
}

// InsertOpt adds *id to category c when id is set.
func (s *Set) InsertOpt(c Category, id *string) {
	if id != nil {
		s.Insert(c, *id)
	}
}

// Merge adds every identifier of other into s.
func (s *Set) Merge(other Set) {
	for c, bucket := range other.ids {
		for id := range bucket {
			s.Insert(c, id)
		}
	}
}

// Union returns a new set holding the identifiers of a and b.
func Union(a, b Set) Set {
	out := New()
	out.Merge(a)
	out.Merge(b)
	return out
}

// Contains reports whether id is recorded under category c.
func (s Set) Contains(c Category, id string) bool {
	_, ok := s.ids[c][id]
	return ok
}

// IDs returns the sorted identifiers of category c.
func (s Set) IDs(c Category) []string {
	return slices.Sorted(maps.Keys(s.ids[c]))
}

// Len returns the number of identifiers across all categories. An identifier
// present in two categories counts twice.
func (s Set) Len() int {
	n := 0
	for _, bucket := range s.ids {
		n += len(bucket)
	}
	return n
}

// IsEmpty reports whether no identifier is recorded.
func (s Set) IsEmpty() bool { return s.Len() == 0 }

// Flatten returns the sorted union of all categories. Category information
// is discarded.
func (s Set) Flatten() []string {
	all := make(map[string]struct{})
	for _, bucket := range s.ids {
		for id := range bucket {
			all[id] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(all))
}

// All yields each non-empty category with its sorted identifiers, in
// canonical category order.
func (s Set) All() iter.Seq2[Category, []string] {
	return func(yield func(Category, []string) bool) {
		for _, c := range Categories() {
			if len(s.ids[c]) == 0 {
				continue
			}
			if !yield(c, s.IDs(c)) {
				return
			}
		}
	}
}

// Map returns the set as category -> sorted identifiers, omitting empty categories.
func (s Set) Map() map[Category][]string {
	out := make(map[Category][]string, len(s.ids))
	for c, ids := range s.All() {
		out[c] = ids
	}
	return out
}

// Equal reports whether a and b hold the same identifiers per category.
func Equal(a, b Set) bool {
	for c, bucket := range a.ids {
		if !maps.Equal(bucket, b.ids[c]) {
			return false
		}
	}
	for c, bucket := range b.ids {
		if !maps.Equal(bucket, a.ids[c]) {
			return false
		}
	}
	return true
}

// Of collects the references of a single optional node.
func Of[T Collector](node *T) Set {
	if node == nil {
		return New()
	}
	return (*node).References()
}

// CollectAll unions the references of every node in seq.
func CollectAll[T Collector](seq iter.Seq[T]) Set {
	out := New()
	for node := range seq {
		out.Merge(node.References())
	}
	return out
}
