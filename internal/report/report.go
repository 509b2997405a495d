// SPDX-License-Identifier: MPL-2.0

// Package report renders command results as styled text, JSON, YAML or TOML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/fgardt/factorio-scanner-sub002/internal/config"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

type (
	// Writer renders views in one output format.
	Writer struct {
		out    io.Writer
		format config.OutputFormat
		styles styles
	}

	styles struct {
		title   lipgloss.Style
		key     lipgloss.Style
		value   lipgloss.Style
		muted   lipgloss.Style
		success lipgloss.Style
		warning lipgloss.Style
		failure lipgloss.Style
	}
)

// NewWriter returns a Writer for format. Colors are enabled only when out is
// a terminal.
func NewWriter(out io.Writer, format config.OutputFormat) (*Writer, error) {
	if ok, errs := format.IsValid(); !ok {
		return nil, errs[0]
	}
	r := lipgloss.NewRenderer(out)
	return &Writer{
		out:    out,
		format: format,
		styles: styles{
			title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
			key:     r.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
			value:   r.NewStyle().Foreground(lipgloss.Color("#10B981")),
			muted:   r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
			success: r.NewStyle().Foreground(lipgloss.Color("#10B981")),
			warning: r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
			failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		},
	}, nil
}

// Format returns the output format of w.
func (w *Writer) Format() config.OutputFormat { return w.format }

// Refs writes a reference listing.
func (w *Writer) Refs(v RefsView, only ...string) error {
	if len(only) > 0 {
		filtered := RefsView{File: v.File, References: make(map[string][]string, len(only))}
		for _, c := range only {
			ids := v.References[c]
			if ids == nil {
				ids = []string{}
			}
			filtered.References[c] = ids
		}
		v = filtered
	}
	if w.format != config.FormatText {
		return w.encode(v)
	}

	var b strings.Builder
	for _, c := range refsOrder(v.References) {
		ids := v.References[c]
		if len(ids) == 0 && len(only) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d)\n", w.styles.title.Render(c), len(ids))
		for _, id := range ids {
			fmt.Fprintf(&b, "  %s\n", id)
		}
	}
	if b.Len() == 0 {
		b.WriteString(w.styles.muted.Render("no references") + "\n")
	}
	return w.text(b.String())
}

// Deps writes a dependency list; with Explain set the text form adds the
// resolution source and the matching identifiers.
func (w *Writer) Deps(v DepsView) error {
	if w.format != config.FormatText {
		return w.encode(v)
	}

	var b strings.Builder
	if v.Explain {
		source := v.Source
		if v.Preset != "" {
			source += " (" + v.Preset + ")"
		}
		fmt.Fprintf(&b, "%s %s\n", w.styles.key.Render("source:"), w.styles.value.Render(source))
		for _, m := range v.Matches {
			fmt.Fprintf(&b, "%s %s %s %s\n", w.styles.key.Render("match:"), m.ID, w.styles.muted.Render("→"), m.Entry)
		}
	}
	for _, d := range v.Dependencies {
		writeDependency(&b, d)
	}
	for _, c := range v.Conflicts {
		fmt.Fprintf(&b, "%s %s: kept %q, ignored %q\n", w.styles.warning.Render("conflict:"), c.Name, c.Kept, c.Ignored)
	}
	if len(v.Dependencies) == 0 && !v.Explain {
		b.WriteString(w.styles.muted.Render("no dependencies") + "\n")
	}
	return w.text(b.String())
}

// Startup writes a startup settings table.
func (w *Writer) Startup(v StartupView) error {
	if w.format != config.FormatText {
		return w.encode(v)
	}
	if v.Text == "" {
		return w.text(w.styles.muted.Render("no startup settings") + "\n")
	}
	return w.text(v.Text + "\n")
}

// Catalog writes catalog entries.
func (w *Writer) Catalog(v CatalogView) error {
	if w.format != config.FormatText {
		return w.encode(v)
	}

	var b strings.Builder
	for _, e := range v.Entries {
		b.WriteString(w.styles.title.Render(e.Name))
		if e.Prefix != "" {
			fmt.Fprintf(&b, " %s", w.styles.key.Render(e.Prefix+"*"))
		}
		if len(e.Aliases) > 0 {
			fmt.Fprintf(&b, " %s", w.styles.muted.Render("aka "+strings.Join(e.Aliases, ", ")))
		}
		b.WriteByte('\n')
		for _, r := range e.Requires {
			fmt.Fprintf(&b, "  %s\n", r)
		}
	}
	return w.text(b.String())
}

// Scan writes a scan report.
func (w *Writer) Scan(v ScanView) error {
	if w.format != config.FormatText {
		return w.encode(v)
	}

	var b strings.Builder
	for _, f := range v.Files {
		if f.Error != "" {
			fmt.Fprintf(&b, "%s %s: %s\n", w.styles.failure.Render("✗"), f.Path, f.Error)
			continue
		}
		mark := w.styles.success.Render("✓")
		detail := fmt.Sprintf("%s, %d refs, %s", f.Kind, f.References, f.Source)
		if f.Cached {
			detail += ", cached"
		}
		fmt.Fprintf(&b, "%s %s %s\n", mark, f.Path, w.styles.muted.Render("("+detail+")"))
	}
	for _, d := range v.Diagnostics {
		fmt.Fprintf(&b, "%s %s\n", w.styles.warning.Render(d.Severity+":"), d.Message)
	}

	b.WriteByte('\n')
	b.WriteString(w.styles.title.Render("Dependencies") + "\n")
	if len(v.Dependencies) == 0 {
		b.WriteString("  " + w.styles.muted.Render("none") + "\n")
	}
	for _, d := range v.Dependencies {
		b.WriteString("  ")
		writeDependency(&b, d)
	}
	for _, c := range v.Conflicts {
		fmt.Fprintf(&b, "  %s %s: kept %q, ignored %q\n", w.styles.warning.Render("conflict:"), c.Name, c.Kept, c.Ignored)
	}

	fmt.Fprintf(&b, "\n%d files, %d failed, %s\n", len(v.Files), v.Failed, v.Duration)
	return w.text(b.String())
}

func (w *Writer) text(s string) error {
	_, err := io.WriteString(w.out, s)
	return err
}

func (w *Writer) encode(v any) error {
	switch w.format {
	case config.FormatJSON:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML:
		data, err := yaml.MarshalWithOptions(v, yaml.IndentSequence(true))
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.out.Write(data)
		return err
	case config.FormatTOML:
		enc := toml.NewEncoder(w.out)
		enc.SetIndentTables(true)
		return enc.Encode(v)
	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidOutputFormat, w.format)
	}
}

func writeDependency(b *strings.Builder, d DependencyView) {
	b.WriteString(d.Name)
	if d.Constraint != "" {
		b.WriteString(" " + d.Constraint)
	}
	b.WriteByte('\n')
}

// refsOrder returns the categories of m in canonical order.
func refsOrder(m map[string][]string) []string {
	var out []string
	for _, c := range refs.Categories() {
		if _, ok := m[string(c)]; ok {
			out = append(out, string(c))
		}
	}
	return out
}
