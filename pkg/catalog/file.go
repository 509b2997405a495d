// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	_ "embed"
	"fmt"

	"github.com/fgardt/factorio-scanner-sub002/pkg/cueutil"
)

//go:embed catalog_schema.cue
var schema []byte

type (
	catalogFile struct {
		Entries []fileEntry `json:"entries"`
	}

	fileEntry struct {
		Name     string            `json:"name"`
		Aliases  []string          `json:"aliases,omitempty"`
		Prefix   string            `json:"prefix,omitempty"`
		Requires []fileRequirement `json:"requires"`
	}

	fileRequirement struct {
		Package string `json:"package"`
		Version string `json:"version"`
	}
)

// Schema returns the CUE schema catalog files are validated against.
func Schema() []byte { return schema }

// ParseFile decodes the entries of a CUE catalog file.
func ParseFile(path string) ([]Entry, error) {
	result, err := cueutil.ParseFile[catalogFile](schema, path, "#Catalog")
	if err != nil {
		return nil, err
	}
	return result.Value.entries(path)
}

// Parse decodes catalog entries from CUE source. filename is used in errors.
func Parse(data []byte, filename string) ([]Entry, error) {
	result, err := cueutil.ParseAndDecode[catalogFile](schema, data, "#Catalog", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return result.Value.entries(filename)
}

// Load returns Default extended with the entries of every file, in order.
func Load(paths ...string) (*Catalog, error) {
	c := Default()
	for _, p := range paths {
		entries, err := ParseFile(p)
		if err != nil {
			return nil, err
		}
		if c, err = c.Extend(entries...); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return c, nil
}

func (f *catalogFile) entries(filename string) ([]Entry, error) {
	out := make([]Entry, 0, len(f.Entries))
	for i, fe := range f.Entries {
		e := Entry{Name: fe.Name, Aliases: fe.Aliases, Prefix: fe.Prefix}
		for j, fr := range fe.Requires {
			v, err := ParseVersion(fr.Version)
			if err != nil {
				return nil, fmt.Errorf("%s: entries[%d].requires[%d].version: %w", filename, i, j, err)
			}
			e.Requires = append(e.Requires, Requirement{Package: fr.Package, Version: v})
		}
		out = append(out, e)
	}
	return out, nil
}
