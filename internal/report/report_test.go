// SPDX-License-Identifier: MPL-2.0

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/fgardt/factorio-scanner-sub002/internal/config"
	"github.com/fgardt/factorio-scanner-sub002/internal/discovery"
	"github.com/fgardt/factorio-scanner-sub002/internal/scan"
	"github.com/fgardt/factorio-scanner-sub002/pkg/anybasic"
	"github.com/fgardt/factorio-scanner-sub002/pkg/blueprint"
	"github.com/fgardt/factorio-scanner-sub002/pkg/catalog"
	"github.com/fgardt/factorio-scanner-sub002/pkg/deps"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

func sampleList() *deps.List {
	l := deps.NewList()
	l.Add("space-exploration", deps.AtLeast(catalog.MustParseVersion("0.6.119")))
	l.Add("Krastorio2", deps.AtLeast(catalog.MustParseVersion("1.3.23")))
	l.Add("Krastorio2", deps.Exact(catalog.MustParseVersion("1.3.0")))
	return l
}

func sampleReport() *scan.Report {
	set := refs.New()
	set.Insert(refs.Entity, "kr-loader")
	set.Insert(refs.Item, "kr-loader")

	startup := anybasic.NewTable()
	startup.Set("kr-setting", anybasic.Bool(true))

	return &scan.Report{
		ID:       uuid.MustParse("8d2b7c1e-0f7a-4b7e-9c1d-2a3b4c5d6e7f"),
		Started:  time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Duration: 1500 * time.Millisecond,
		Files: []scan.FileResult{
			{
				Path: "a.json",
				Hash: "abc",
				Analysis: &scan.Analysis{
					Kind:        blueprint.KindBlueprint,
					Label:       "loaders",
					Version:     "2.0.10",
					Blueprints:  1,
					References:  set,
					Explanation: deps.Explanation{Source: deps.SourceHeuristic, Dependencies: sampleList()},
					Startup:     startup,
				},
			},
			{Path: "bad.json", Err: errors.New("document holds no blueprint")},
		},
		Diagnostics: []discovery.Diagnostic{
			{Severity: discovery.SeverityWarning, Code: "path_unreadable", Message: "cannot read x", Path: "x"},
		},
		Dependencies: sampleList(),
	}
}

func render(t *testing.T, format config.OutputFormat, fn func(*Writer) error) string {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, format)
	if err != nil {
		t.Fatalf("NewWriter(%q) error: %v", format, err)
	}
	if err := fn(w); err != nil {
		t.Fatalf("render %q: %v", format, err)
	}
	return buf.String()
}

func TestNewWriter_InvalidFormat(t *testing.T) {
	t.Parallel()

	if _, err := NewWriter(&bytes.Buffer{}, "xml"); !errors.Is(err, config.ErrInvalidOutputFormat) {
		t.Errorf("NewWriter() error = %v, want ErrInvalidOutputFormat", err)
	}
}

func TestNewScanView(t *testing.T) {
	t.Parallel()

	v := NewScanView(sampleReport())
	if v.Failed != 1 || len(v.Files) != 2 || v.Duration != "1.5s" {
		t.Fatalf("unexpected view: %+v", v)
	}
	want := []DependencyView{
		{Name: "Krastorio2", Constraint: ">= 1.3.23"},
		{Name: "space-exploration", Constraint: ">= 0.6.119"},
	}
	if diff := cmp.Diff(want, v.Dependencies); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ConflictView{{Name: "Krastorio2", Kept: ">= 1.3.23", Ignored: "= 1.3.0"}}, v.Conflicts); diff != "" {
		t.Errorf("Conflicts mismatch (-want +got):\n%s", diff)
	}
	f := v.Files[0]
	if f.References != 2 || f.Startup != "{kr-setting: true}" || f.Source != "heuristic" {
		t.Errorf("file view = %+v", f)
	}
}

func TestScan_Text(t *testing.T) {
	t.Parallel()

	out := render(t, config.FormatText, func(w *Writer) error { return w.Scan(NewScanView(sampleReport())) })
	for _, want := range []string{
		"✓ a.json (blueprint, 2 refs, heuristic)",
		"✗ bad.json: document holds no blueprint",
		"warning: cannot read x",
		"  Krastorio2 >= 1.3.23",
		`conflict: Krastorio2: kept ">= 1.3.23", ignored "= 1.3.0"`,
		"2 files, 1 failed, 1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output lacks %q:\n%s", want, out)
		}
	}
}

func TestScan_Encoded(t *testing.T) {
	t.Parallel()

	view := NewScanView(sampleReport())
	tests := []struct {
		format    config.OutputFormat
		unmarshal func([]byte, any) error
	}{
		{format: config.FormatJSON, unmarshal: json.Unmarshal},
		{format: config.FormatYAML, unmarshal: yaml.Unmarshal},
		{format: config.FormatTOML, unmarshal: toml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			out := render(t, tt.format, func(w *Writer) error { return w.Scan(view) })
			var got struct {
				ID           string `json:"id" yaml:"id" toml:"id"`
				Failed       int    `json:"failed" yaml:"failed" toml:"failed"`
				Dependencies []struct {
					Name       string `json:"name" yaml:"name" toml:"name"`
					Constraint string `json:"constraint" yaml:"constraint" toml:"constraint"`
				} `json:"dependencies" yaml:"dependencies" toml:"dependencies"`
			}
			if err := tt.unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("output does not decode: %v\n%s", err, out)
			}
			if got.ID != view.ID || got.Failed != 1 || len(got.Dependencies) != 2 ||
				got.Dependencies[1].Constraint != ">= 0.6.119" {
				t.Errorf("decoded %+v from:\n%s", got, out)
			}
		})
	}
}

func TestDeps(t *testing.T) {
	t.Parallel()

	exp := deps.Explanation{
		Source:       deps.SourceHeuristic,
		Matches:      []deps.Match{{ID: "kr-loader", Entry: "K2"}},
		Dependencies: sampleList(),
	}

	plain := render(t, config.FormatText, func(w *Writer) error { return w.Deps(NewDepsView("a.json", exp, false)) })
	want := "Krastorio2 >= 1.3.23\nspace-exploration >= 0.6.119\n" +
		"conflict: Krastorio2: kept \">= 1.3.23\", ignored \"= 1.3.0\"\n"
	if plain != want {
		t.Errorf("text output = %q, want %q", plain, want)
	}

	explained := render(t, config.FormatText, func(w *Writer) error { return w.Deps(NewDepsView("a.json", exp, true)) })
	if !strings.HasPrefix(explained, "source: heuristic\nmatch: kr-loader → K2\n") {
		t.Errorf("explained output = %q", explained)
	}

	empty := render(t, config.FormatText, func(w *Writer) error {
		return w.Deps(NewDepsView("", deps.Explanation{Source: deps.SourceNone, Dependencies: deps.NewList()}, false))
	})
	if empty != "no dependencies\n" {
		t.Errorf("empty output = %q", empty)
	}

	js := render(t, config.FormatJSON, func(w *Writer) error { return w.Deps(NewDepsView("a.json", exp, true)) })
	var decoded DepsView
	if err := json.Unmarshal([]byte(js), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Source != "heuristic" || len(decoded.Matches) != 1 || decoded.Explain {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestRefs(t *testing.T) {
	t.Parallel()

	set := refs.New()
	set.Insert(refs.Entity, "kr-loader")
	set.Insert(refs.Entity, "assembling-machine-2")
	set.Insert(refs.Recipe, "kr-steel-gear")
	v := NewRefsView("a.json", set)

	out := render(t, config.FormatText, func(w *Writer) error { return w.Refs(v) })
	want := "recipe (1)\n  kr-steel-gear\nentity (2)\n  assembling-machine-2\n  kr-loader\n"
	if out != want {
		t.Errorf("text output = %q, want %q", out, want)
	}

	only := render(t, config.FormatText, func(w *Writer) error { return w.Refs(v, "tile") })
	if only != "tile (0)\n" {
		t.Errorf("filtered output = %q", only)
	}

	y := render(t, config.FormatYAML, func(w *Writer) error { return w.Refs(v) })
	var decoded RefsView
	if err := yaml.Unmarshal([]byte(y), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.References) != len(refs.Categories()) || len(decoded.References["entity"]) != 2 {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestStartupAndCatalog(t *testing.T) {
	t.Parallel()

	tbl := anybasic.NewTable()
	tbl.Set("kr-setting", anybasic.Bool(true))
	tbl.Set("se-count", anybasic.Number(3))

	if out := render(t, config.FormatText, func(w *Writer) error { return w.Startup(NewStartupView("", tbl)) }); out != "{kr-setting: true, se-count: 3}\n" {
		t.Errorf("startup text = %q", out)
	}
	if out := render(t, config.FormatText, func(w *Writer) error { return w.Startup(NewStartupView("", nil)) }); out != "no startup settings\n" {
		t.Errorf("empty startup text = %q", out)
	}
	tomlOut := render(t, config.FormatTOML, func(w *Writer) error { return w.Startup(NewStartupView("a.json", tbl)) })
	if !strings.Contains(tomlOut, "kr-setting = true") {
		t.Errorf("startup toml = %q", tomlOut)
	}

	out := render(t, config.FormatText, func(w *Writer) error { return w.Catalog(NewCatalogView(catalog.Default())) })
	for _, want := range []string{"K2 kr-* aka krastorio\n  Krastorio2 >= 1.3.23\n", "K2SE aka"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog output lacks %q:\n%s", want, out)
		}
	}
}
