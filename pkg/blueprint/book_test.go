// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

const bookJSON = `{"blueprint_book": {
	"item": "blueprint-book",
	"label": "Outer",
	"version": 1,
	"active_index": 2,
	"icons": {"1": {"signal": {"type": "virtual", "name": "signal-B"}}},
	"blueprints": {
		"1": {"blueprint": {"item": "blueprint", "label": "A", "version": 1,
			"entities": [{"entity_number": 1, "name": "se-space-pipe", "position": {"x": 0, "y": 0}}]}},
		"2": {"blueprint_book": {"item": "blueprint-book", "label": "Inner", "version": 1, "active_index": 5,
			"blueprints": {
				"5": {"blueprint": {"item": "blueprint", "label": "B", "version": 1,
					"tiles": [{"name": "se-space-platform-scaffold", "position": {"x": 0, "y": 0}}]}},
				"3": {"upgrade_planner": {"item": "upgrade-planner", "version": 1,
					"settings": {"mappers": {"1": {"from": {"type": "item", "name": "kr-loader"}}}}}}
			}}}
	}
}}`

func TestBook_ActiveBlueprint(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, bookJSON)
	bp, ok := doc.ActiveBlueprint()
	if !ok {
		t.Fatal("ActiveBlueprint() found nothing")
	}
	if bp.Label != "B" {
		t.Errorf("ActiveBlueprint().Label = %q, want B", bp.Label)
	}

	doc.Book.ActiveIndex = 9
	if _, ok := doc.ActiveBlueprint(); ok {
		t.Error("ActiveBlueprint() should fail for a missing active entry")
	}

	planner := mustParse(t, `{"upgrade_planner": {"item": "upgrade-planner", "version": 1}}`)
	if _, ok := planner.ActiveBlueprint(); ok {
		t.Error("planners have no active blueprint")
	}
}

func TestBook_BlueprintsDepthFirst(t *testing.T) {
	t.Parallel()

	var labels []string
	for bp := range mustParse(t, bookJSON).Blueprints() {
		labels = append(labels, bp.Label)
	}
	if !slices.Equal(labels, []string{"A", "B"}) {
		t.Errorf("Blueprints() labels = %v, want [A B]", labels)
	}
}

func TestBook_ReferencesUnionOfEntries(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, bookJSON)

	want := refs.CollectAll(doc.Book.Icons.Values())
	for child := range doc.Book.Blueprints.Values() {
		want.Merge(child.References())
	}
	got := doc.References()
	if !refs.Equal(want, got) {
		t.Errorf("References() = %v, want %v", got.Map(), want.Map())
	}

	wantMap := map[refs.Category][]string{
		refs.Entity:        {"se-space-pipe"},
		refs.Tile:          {"se-space-platform-scaffold"},
		refs.Item:          {"kr-loader"},
		refs.VirtualSignal: {"signal-B"},
		refs.Quality:       {"normal"},
	}
	if diff := cmp.Diff(wantMap, got.Map()); diff != "" {
		t.Errorf("References() mismatch (-want +got):\n%s", diff)
	}
}

func TestBook_KeysSurviveRoundTrip(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, bookJSON)
	data, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	back := mustParse(t, string(data))

	inner, ok := back.Book.Blueprints.Get(2)
	if !ok || inner.Kind() != KindBook {
		t.Fatalf("entry 2 = %+v, want nested book", inner)
	}
	if diff := cmp.Diff([]uint32{3, 5}, keysOf(inner.Book)); diff != "" {
		t.Errorf("inner keys mismatch (-want +got):\n%s", diff)
	}
}

func keysOf(b *Book) []uint32 {
	var out []uint32
	for _, k := range b.Blueprints.Keys() {
		out = append(out, uint32(k))
	}
	return out
}
