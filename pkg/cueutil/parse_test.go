// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `
#Entry: {
	name:         string & !=""
	count:        int & >=0
	enabled:      bool
	description?: string
}
`

type testEntry struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid data decodes", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name:        "kr"
count:       42
enabled:     true
description: "Krastorio"
`)
		result, err := ParseAndDecode[testEntry]([]byte(testSchema), data, "#Entry")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		want := testEntry{Name: "kr", Count: 42, Enabled: true, Description: "Krastorio"}
		if *result.Value != want {
			t.Errorf("Value = %+v, want %+v", *result.Value, want)
		}
		if !result.Unified.Exists() {
			t.Error("Unified value should exist")
		}
	})

	t.Run("optional field can be omitted", func(t *testing.T) {
		t.Parallel()

		result, err := ParseAndDecode[testEntry]([]byte(testSchema), []byte(`name: "se", count: 1, enabled: false`), "#Entry")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		if result.Value.Description != "" {
			t.Errorf("Description = %q, want empty", result.Value.Description)
		}
	})

	t.Run("constraint violation carries path and filename", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testEntry](
			[]byte(testSchema),
			[]byte(`name: "sb", count: -1, enabled: true`),
			"#Entry",
			WithFilename("mods.cue"),
		)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("error = %v, want *ValidationError", err)
		}
		if verr.FilePath != "mods.cue" {
			t.Errorf("FilePath = %q", verr.FilePath)
		}
		if !strings.Contains(err.Error(), "count") {
			t.Errorf("error should name the failing field, got: %v", err)
		}
	})

	t.Run("unknown field is rejected by the closed definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testEntry]([]byte(testSchema), []byte(`name: "x", count: 1, enabled: true, colour: "red"`), "#Entry")
		if err == nil {
			t.Fatal("expected error for field outside the definition")
		}
	})

	t.Run("missing field fails concrete validation", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testEntry]([]byte(testSchema), []byte(`name: "x", enabled: true`), "#Entry")
		if err == nil {
			t.Fatal("expected error for missing required field")
		}
	})

	t.Run("size limit is checked first", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testEntry]([]byte(testSchema), []byte(`name: "x"`), "#Entry", WithMaxFileSize(4))
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("error = %v, want ErrFileTooLarge", err)
		}
	})
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "entry.cue")
	if err := os.WriteFile(path, []byte(`name: "k2se", count: 2, enabled: true`), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := ParseFile[testEntry]([]byte(testSchema), path, "#Entry")
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if result.Value.Name != "k2se" {
		t.Errorf("Name = %q", result.Value.Name)
	}

	_, err = ParseFile[testEntry]([]byte(testSchema), path, "#Entry", WithMaxFileSize(8))
	if !errors.Is(err, ErrFileTooLarge) || !strings.Contains(err.Error(), path) {
		t.Errorf("ParseFile() with small limit error = %v, want ErrFileTooLarge naming the file", err)
	}

	if _, err := ParseFile[testEntry]([]byte(testSchema), filepath.Join(dir, "missing.cue"), "#Entry"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile() on missing file error = %v, want os.ErrNotExist", err)
	}
}
