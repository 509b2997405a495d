// SPDX-License-Identifier: MPL-2.0

package deps

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fgardt/factorio-scanner-sub002/pkg/anybasic"
	"github.com/fgardt/factorio-scanner-sub002/pkg/blueprint"
	"github.com/fgardt/factorio-scanner-sub002/pkg/catalog"
)

// blueprintWith wraps entity JSON objects into a blueprint document.
func blueprintWith(t *testing.T, entities ...string) *blueprint.Document {
	t.Helper()

	for i, e := range entities {
		entities[i] = fmt.Sprintf(`{"entity_number": %d, "position": {"x": 0, "y": 0}, %s}`, i+1, e)
	}
	input := `{"blueprint": {"item": "blueprint", "version": 562949954076673, "entities": [` +
		strings.Join(entities, ",") + `]}}`
	doc, err := blueprint.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return doc
}

func listOf(t *testing.T, pairs ...string) *List {
	t.Helper()

	l := NewList()
	for i := 0; i < len(pairs); i += 2 {
		c, err := ParseConstraint(pairs[i+1])
		if err != nil {
			t.Fatal(err)
		}
		l.Add(pairs[i], c)
	}
	return l
}

func TestResolve_ExplicitOverride(t *testing.T) {
	t.Parallel()

	doc := blueprintWith(t,
		`"name": "kr-loader"`,
		`"name": "constant-combinator", "tags": {"bp_meta_info": {"mods": {"foo": "1.2.3", "bar": "0.0.1"}}}`,
		`"name": "se-space-pipe"`,
	)

	exp := NewResolver(nil).Explain(doc)
	if exp.Source != SourceExplicit {
		t.Errorf("Source = %q, want %q", exp.Source, SourceExplicit)
	}
	if len(exp.Matches) != 0 {
		t.Errorf("heuristics consulted: %v", exp.Matches)
	}
	want := listOf(t, "foo", "= 1.2.3", "bar", "= 0.0.1")
	if !Equal(want, exp.Dependencies) {
		t.Errorf("Resolve() = %q, want %q", exp.Dependencies, want)
	}
}

func TestResolve_Heuristic(t *testing.T) {
	t.Parallel()

	doc := blueprintWith(t,
		`"name": "kr-loader"`,
		`"name": "kr-superior-inserter"`,
		`"name": "assembling-machine-2", "recipe": "se-space-pipe"`,
	)

	exp := NewResolver(nil).Explain(doc)
	if exp.Source != SourceHeuristic {
		t.Errorf("Source = %q, want %q", exp.Source, SourceHeuristic)
	}
	want := listOf(t,
		catalog.Krastorio2, ">= 1.3.23",
		catalog.SpaceExploration, ">= 0.6.119",
	)
	if !Equal(want, exp.Dependencies) {
		t.Errorf("Resolve() = %q, want %q", exp.Dependencies, want)
	}

	// kr-loader is an entity and an item of the blueprint; flattening
	// reports it once.
	wantMatches := []Match{
		{ID: "kr-loader", Entry: "K2"},
		{ID: "kr-superior-inserter", Entry: "K2"},
		{ID: "se-space-pipe", Entry: "SE"},
	}
	if diff := cmp.Diff(wantMatches, exp.Matches); diff != "" {
		t.Errorf("Matches mismatch (-want +got):\n%s", diff)
	}
	if got := exp.Dependencies.Conflicts(); len(got) != 0 {
		t.Errorf("unexpected conflicts: %v", got)
	}
}

func TestResolve_NoMatches(t *testing.T) {
	t.Parallel()

	doc := blueprintWith(t, `"name": "assembling-machine-2"`)
	exp := NewResolver(nil).Explain(doc)
	if exp.Source != SourceNone || exp.Dependencies.Len() != 0 {
		t.Errorf("Explain() = %+v, want an empty list from %q", exp, SourceNone)
	}
	if got := Resolve(doc); got.Len() != 0 {
		t.Errorf("Resolve() = %q, want empty", got)
	}
}

func TestResolve_MalformedOverrideFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tags string
	}{
		{name: "marker not a table", tags: `{"bp_meta_info": "K2"}`},
		{name: "mods missing", tags: `{"bp_meta_info": {"startup": {}}}`},
		{name: "mods not a table", tags: `{"bp_meta_info": {"mods": ["foo"]}}`},
		{name: "version not text", tags: `{"bp_meta_info": {"mods": {"foo": 1}}}`},
		{name: "version malformed", tags: `{"bp_meta_info": {"mods": {"foo": "1.2"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := blueprintWith(t,
				`"name": "constant-combinator", "tags": `+tt.tags,
				`"name": "kr-loader"`,
			)
			if _, ok := ExplicitMods(doc); ok {
				t.Fatal("ExplicitMods() should report no override")
			}
			exp := NewResolver(nil).Explain(doc)
			if exp.Source != SourceHeuristic {
				t.Errorf("Source = %q, want %q", exp.Source, SourceHeuristic)
			}
			if _, ok := exp.Dependencies.Get(catalog.Krastorio2); !ok {
				t.Errorf("heuristic result lacks %s: %q", catalog.Krastorio2, exp.Dependencies)
			}
		})
	}
}

func TestParseMods_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseMods(blueprintWith(t, `"name": "kr-loader"`))
	if !errors.Is(err, ErrNoMetadata) {
		t.Errorf("untagged document error = %v, want ErrNoMetadata", err)
	}

	_, err = ParseMods(blueprintWith(t, `"name": "c", "tags": {"bp_meta_info": {"mods": {"foo": true}}}`))
	var sme *anybasic.ShapeMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("error = %v, want *anybasic.ShapeMismatchError", err)
	}
	if sme.Path != "bp_meta_info.mods.foo" {
		t.Errorf("Path = %q, want bp_meta_info.mods.foo", sme.Path)
	}

	_, err = ParseMods(blueprintWith(t, `"name": "c", "tags": {"bp_meta_info": {"mods": {"foo": "x.y.z"}}}`))
	if !errors.Is(err, catalog.ErrInvalidVersion) {
		t.Errorf("error = %v, want ErrInvalidVersion", err)
	}
}

func TestHeuristicMergeDeterminism(t *testing.T) {
	t.Parallel()

	// Two entries share a prefix and disagree on the version; the entry
	// declared first wins no matter how many identifiers match.
	c, err := catalog.New(
		catalog.Entry{Name: "Old", Prefix: "foo-", Requires: []catalog.Requirement{
			{Package: "foo", Version: catalog.MustParseVersion("1.0.0")},
		}},
		catalog.Entry{Name: "New", Prefix: "foo-", Requires: []catalog.Requirement{
			{Package: "foo", Version: catalog.MustParseVersion("2.0.0")},
			{Package: "foolib", Version: catalog.MustParseVersion("0.3.0")},
		}},
	)
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(c)

	tests := []struct {
		ids         []string
		wantMatches int
	}{
		{ids: []string{"foo-a", "foo-b"}, wantMatches: 4},
		{ids: []string{"foo-b", "foo-a", "iron-plate"}, wantMatches: 4},
		{ids: []string{"foo-z"}, wantMatches: 2},
	}
	for _, tt := range tests {
		list, matches := r.Detect(tt.ids)
		want := listOf(t, "foo", ">= 1.0.0", "foolib", ">= 0.3.0")
		if !Equal(want, list) {
			t.Errorf("Detect(%v) = %q, want %q", tt.ids, list, want)
		}
		if len(matches) != tt.wantMatches {
			t.Errorf("Detect(%v) matches = %v, want %d", tt.ids, matches, tt.wantMatches)
		}
		wantConflict := []Conflict{{
			Name:    "foo",
			Kept:    AtLeast(catalog.MustParseVersion("1.0.0")),
			Ignored: AtLeast(catalog.MustParseVersion("2.0.0")),
		}}
		if diff := cmp.Diff(wantConflict, list.Conflicts()); diff != "" {
			t.Errorf("Conflicts mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestFromEntry(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil)
	list, err := r.FromEntry("se+k2")
	if err != nil {
		t.Fatalf("FromEntry() error: %v", err)
	}
	want := listOf(t,
		catalog.Krastorio2, ">= 1.3.23",
		catalog.SpaceExploration, ">= 0.6.119",
	)
	if !Equal(want, list) {
		t.Errorf("FromEntry() = %q, want %q", list, want)
	}

	exp, err := r.ExplainEntry("sb")
	if err != nil {
		t.Fatal(err)
	}
	if exp.Source != SourcePreset || exp.Preset != "SeaBlock" {
		t.Errorf("ExplainEntry() = %+v", exp)
	}

	if _, err := r.FromEntry("vanilla"); !errors.Is(err, ErrUnknownPreset) {
		t.Error("FromEntry() should fail for unknown presets")
	}
}

func TestStartupSettings_FirstMatchShortCircuit(t *testing.T) {
	t.Parallel()

	doc := blueprintWith(t,
		`"name": "a", "tags": {"bp_meta_info": {"startup": "broken"}}`,
		`"name": "b", "tags": {"bp_meta_info": {"startup": {"kr-setting": true}}}`,
	)
	if got, ok := StartupSettings(doc); ok {
		t.Errorf("StartupSettings() = %v, want none", got)
	}
	var sme *anybasic.ShapeMismatchError
	if _, err := ParseStartup(doc); !errors.As(err, &sme) || sme.Path != "bp_meta_info.startup" {
		t.Errorf("ParseStartup() error = %v", err)
	}
}

func TestStartupSettings(t *testing.T) {
	t.Parallel()

	doc := blueprintWith(t,
		`"name": "a"`,
		`"name": "b", "tags": {"bp_meta_info": {"startup": {"kr-setting": true, "se-count": 3}}}`,
	)
	got, ok := StartupSettings(doc)
	if !ok {
		t.Fatal("StartupSettings() found nothing")
	}
	if got.String() != "{kr-setting: true, se-count: 3}" {
		t.Errorf("StartupSettings() = %s", got)
	}

	if _, ok := StartupSettings(blueprintWith(t, `"name": "b", "tags": {"bp_meta_info": {}}`)); ok {
		t.Error("marker without startup should yield nothing")
	}
}

func TestStartupSettings_InBook(t *testing.T) {
	t.Parallel()

	input := `{"blueprint_book": {"item": "blueprint-book", "version": 0, "active_index": 0, "blueprints": {
		"1": {"blueprint": {"item": "blueprint", "version": 0}},
		"2": {"blueprint": {"item": "blueprint", "version": 0, "entities": [
			{"entity_number": 1, "name": "x", "position": {"x": 0, "y": 0}, "tags": {"bp_meta_info": {"startup": {"a": "b"}}}}
		]}}
	}}}`
	doc, err := blueprint.Parse([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	got, ok := StartupSettings(doc)
	if !ok || got.String() != "{a: b}" {
		t.Errorf("StartupSettings() = %v, %v", got, ok)
	}
}

func TestParseConstraint(t *testing.T) {
	t.Parallel()

	v := catalog.MustParseVersion("1.2.3")
	tests := []struct {
		in      string
		want    Constraint
		wantErr bool
	}{
		{in: "", want: Any()},
		{in: ">= 1.2.3", want: AtLeast(v)},
		{in: ">=1.2.3", want: AtLeast(v)},
		{in: "= 1.2.3", want: Exact(v)},
		{in: "<= 1.2.3", want: Constraint{Op: OpLessEq, Version: v}},
		{in: "< 1.2.3", want: Constraint{Op: OpLess, Version: v}},
		{in: "> 1.2.3", want: Constraint{Op: OpGreater, Version: v}},
		{in: "1.2.3", wantErr: true},
		{in: "~ 1.2.3", wantErr: true},
		{in: ">= 1.2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseConstraint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseConstraint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidConstraint) {
					t.Errorf("error does not wrap ErrInvalidConstraint: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseConstraint(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConstraintAllows(t *testing.T) {
	t.Parallel()

	c := AtLeast(catalog.MustParseVersion("1.3.23"))
	for in, want := range map[string]bool{"1.3.22": false, "1.3.23": true, "2.0.0": true, "0.9.99": false} {
		if got := c.Allows(catalog.MustParseVersion(in)); got != want {
			t.Errorf("%s allows %s = %v, want %v", c, in, got, want)
		}
	}
	if !Any().Allows(catalog.Version{}) {
		t.Error("Any() must allow every version")
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	l := NewList()
	if !l.Add("b", AtLeast(catalog.MustParseVersion("1.0.0"))) {
		t.Error("first Add should record")
	}
	if l.Add("b", AtLeast(catalog.MustParseVersion("1.0.0"))) {
		t.Error("duplicate Add should not record")
	}
	l.Add("a", Any())
	l.Add("b", Exact(catalog.MustParseVersion("2.0.0")))

	if got := l.String(); got != "a\nb >= 1.0.0\n" {
		t.Errorf("String() = %q", got)
	}
	if got := len(l.Conflicts()); got != 1 {
		t.Errorf("Conflicts() has %d entries, want 1 (identical constraints are not conflicts)", got)
	}

	data, err := l.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":"","b":">= 1.0.0"}` {
		t.Errorf("MarshalJSON() = %s", data)
	}
}
