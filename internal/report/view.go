// SPDX-License-Identifier: MPL-2.0

package report

import (
	"time"

	"github.com/fgardt/factorio-scanner-sub002/internal/scan"
	"github.com/fgardt/factorio-scanner-sub002/pkg/anybasic"
	"github.com/fgardt/factorio-scanner-sub002/pkg/catalog"
	"github.com/fgardt/factorio-scanner-sub002/pkg/deps"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

// Views hold only strings, numbers, slices and string-keyed maps so every
// encoder renders them the same way.
type (
	// DependencyView is one package and its rendered constraint.
	DependencyView struct {
		Name       string `json:"name"                 yaml:"name"                 toml:"name"`
		Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty" toml:"constraint,omitempty"`
	}

	// ConflictView is a constraint that lost to an earlier one.
	ConflictView struct {
		Name    string `json:"name"    yaml:"name"    toml:"name"`
		Kept    string `json:"kept"    yaml:"kept"    toml:"kept"`
		Ignored string `json:"ignored" yaml:"ignored" toml:"ignored"`
	}

	// MatchView records an identifier that selected a catalog entry.
	MatchView struct {
		ID    string `json:"id"    yaml:"id"    toml:"id"`
		Entry string `json:"entry" yaml:"entry" toml:"entry"`
	}

	// RefsView lists the references of one document by category.
	RefsView struct {
		File       string              `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
		References map[string][]string `json:"references"     yaml:"references"     toml:"references"`
	}

	// DepsView is the resolved dependency list of one document.
	DepsView struct {
		File         string           `json:"file,omitempty"      yaml:"file,omitempty"      toml:"file,omitempty"`
		Source       string           `json:"source"              yaml:"source"              toml:"source"`
		Preset       string           `json:"preset,omitempty"    yaml:"preset,omitempty"    toml:"preset,omitempty"`
		Dependencies []DependencyView `json:"dependencies"        yaml:"dependencies"        toml:"dependencies"`
		Matches      []MatchView      `json:"matches,omitempty"   yaml:"matches,omitempty"   toml:"matches,omitempty"`
		Conflicts    []ConflictView   `json:"conflicts,omitempty" yaml:"conflicts,omitempty" toml:"conflicts,omitempty"`
		// Explain enables the source and match lines of the text rendering.
		Explain bool `json:"-" yaml:"-" toml:"-"`
	}

	// StartupView is the startup settings table of one document.
	StartupView struct {
		File     string         `json:"file,omitempty"     yaml:"file,omitempty"     toml:"file,omitempty"`
		Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty" toml:"settings,omitempty"`
		// Text is the inline "{k: v}" rendering; empty without settings.
		Text string `json:"-" yaml:"-" toml:"-"`
	}

	// EntryView is one catalog entry.
	EntryView struct {
		Name     string   `json:"name"              yaml:"name"              toml:"name"`
		Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases,omitempty"`
		Prefix   string   `json:"prefix,omitempty"  yaml:"prefix,omitempty"  toml:"prefix,omitempty"`
		Requires []string `json:"requires"          yaml:"requires"          toml:"requires"`
	}

	// CatalogView lists catalog entries in precedence order.
	CatalogView struct {
		Entries []EntryView `json:"entries" yaml:"entries" toml:"entries"`
	}

	// FileView is the outcome for one scanned file.
	FileView struct {
		Path         string           `json:"path"                   yaml:"path"                   toml:"path"`
		Hash         string           `json:"hash,omitempty"         yaml:"hash,omitempty"         toml:"hash,omitempty"`
		Cached       bool             `json:"cached,omitempty"       yaml:"cached,omitempty"       toml:"cached,omitempty"`
		Kind         string           `json:"kind,omitempty"         yaml:"kind,omitempty"         toml:"kind,omitempty"`
		Label        string           `json:"label,omitempty"        yaml:"label,omitempty"        toml:"label,omitempty"`
		Version      string           `json:"version,omitempty"      yaml:"version,omitempty"      toml:"version,omitempty"`
		Blueprints   int              `json:"blueprints,omitempty"   yaml:"blueprints,omitempty"   toml:"blueprints,omitempty"`
		Source       string           `json:"source,omitempty"       yaml:"source,omitempty"       toml:"source,omitempty"`
		Preset       string           `json:"preset,omitempty"       yaml:"preset,omitempty"       toml:"preset,omitempty"`
		References   int              `json:"references"             yaml:"references"             toml:"references"`
		Dependencies []DependencyView `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
		Startup      string           `json:"startup,omitempty"      yaml:"startup,omitempty"      toml:"startup,omitempty"`
		Error        string           `json:"error,omitempty"        yaml:"error,omitempty"        toml:"error,omitempty"`
	}

	// DiagnosticView is a non-fatal discovery problem.
	DiagnosticView struct {
		Severity string `json:"severity"       yaml:"severity"       toml:"severity"`
		Code     string `json:"code"           yaml:"code"           toml:"code"`
		Message  string `json:"message"        yaml:"message"        toml:"message"`
		Path     string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	}

	// ScanView is the outcome of one scan run.
	ScanView struct {
		ID           string           `json:"id"                    yaml:"id"                    toml:"id"`
		Started      time.Time        `json:"started"               yaml:"started"               toml:"started"`
		Duration     string           `json:"duration"              yaml:"duration"              toml:"duration"`
		Files        []FileView       `json:"files"                 yaml:"files"                 toml:"files"`
		Failed       int              `json:"failed"                yaml:"failed"                toml:"failed"`
		Dependencies []DependencyView `json:"dependencies"          yaml:"dependencies"          toml:"dependencies"`
		Conflicts    []ConflictView   `json:"conflicts,omitempty"   yaml:"conflicts,omitempty"   toml:"conflicts,omitempty"`
		Diagnostics  []DiagnosticView `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" toml:"diagnostics,omitempty"`
	}
)

// NewRefsView converts a reference set. Every category is present, empty
// categories as empty lists.
func NewRefsView(file string, set refs.Set) RefsView {
	v := RefsView{File: file, References: make(map[string][]string)}
	for _, c := range refs.Categories() {
		ids := set.IDs(c)
		if ids == nil {
			ids = []string{}
		}
		v.References[string(c)] = ids
	}
	return v
}

// NewDepsView converts a resolver explanation.
func NewDepsView(file string, exp deps.Explanation, explain bool) DepsView {
	v := DepsView{
		File:         file,
		Source:       string(exp.Source),
		Preset:       exp.Preset,
		Dependencies: dependencyViews(exp.Dependencies),
		Conflicts:    conflictViews(exp.Dependencies),
		Explain:      explain,
	}
	for _, m := range exp.Matches {
		v.Matches = append(v.Matches, MatchView{ID: m.ID, Entry: m.Entry})
	}
	return v
}

// NewStartupView converts a startup settings table; a nil table means the
// document has none.
func NewStartupView(file string, t *anybasic.Table) StartupView {
	v := StartupView{File: file}
	if t == nil {
		return v
	}
	v.Text = t.String()
	if m, ok := anybasic.ToAny(t).(map[string]any); ok {
		v.Settings = m
	}
	return v
}

// NewCatalogView converts catalog entries.
func NewCatalogView(c *catalog.Catalog) CatalogView {
	var v CatalogView
	for e := range c.All() {
		ev := EntryView{Name: e.Name, Aliases: e.Aliases, Prefix: e.Prefix, Requires: []string{}}
		for _, r := range e.Requires {
			ev.Requires = append(ev.Requires, r.String())
		}
		v.Entries = append(v.Entries, ev)
	}
	return v
}

// NewScanView converts a scan report.
func NewScanView(r *scan.Report) ScanView {
	v := ScanView{
		ID:           r.ID.String(),
		Started:      r.Started.UTC().Truncate(time.Second),
		Duration:     r.Duration.Round(time.Millisecond).String(),
		Files:        make([]FileView, 0, len(r.Files)),
		Dependencies: dependencyViews(r.Dependencies),
		Conflicts:    conflictViews(r.Dependencies),
	}
	for _, fr := range r.Files {
		fv := FileView{Path: fr.Path, Hash: fr.Hash, Cached: fr.Cached}
		if fr.Err != nil {
			fv.Error = fr.Err.Error()
			v.Failed++
			v.Files = append(v.Files, fv)
			continue
		}
		a := fr.Analysis
		fv.Kind = string(a.Kind)
		fv.Label = a.Label
		fv.Version = a.Version
		fv.Blueprints = a.Blueprints
		fv.Source = string(a.Explanation.Source)
		fv.Preset = a.Explanation.Preset
		fv.References = a.References.Len()
		fv.Dependencies = dependencyViews(a.Explanation.Dependencies)
		if a.Startup != nil {
			fv.Startup = a.Startup.String()
		}
		v.Files = append(v.Files, fv)
	}
	for _, d := range r.Diagnostics {
		v.Diagnostics = append(v.Diagnostics, DiagnosticView{
			Severity: string(d.Severity),
			Code:     d.Code,
			Message:  d.Message,
			Path:     d.Path,
		})
	}
	return v
}

func dependencyViews(l *deps.List) []DependencyView {
	out := []DependencyView{}
	if l == nil {
		return out
	}
	for name, c := range l.All() {
		out = append(out, DependencyView{Name: name, Constraint: c.String()})
	}
	return out
}

func conflictViews(l *deps.List) []ConflictView {
	if l == nil {
		return nil
	}
	var out []ConflictView
	for _, c := range l.Conflicts() {
		out = append(out, ConflictView{Name: c.Name, Kept: c.Kept.String(), Ignored: c.Ignored.String()})
	}
	return out
}
