// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fgardt/factorio-scanner-sub002/pkg/indexed"
	"github.com/fgardt/factorio-scanner-sub002/pkg/jsonstrict"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

// Document kinds, named after their JSON member.
const (
	KindBlueprint      Kind = "blueprint"
	KindBook           Kind = "blueprint_book"
	KindUpgradePlanner Kind = "upgrade_planner"
	KindDeconPlanner   Kind = "deconstruction_planner"
)

// ErrInvalidDocument is the sentinel error wrapped by InvalidDocumentError.
var ErrInvalidDocument = errors.New("invalid document")

type (
	// Kind names which of the four document kinds a Document holds.
	Kind string

	// Document is the root of every blueprint string. Exactly one member is set.
	Document struct {
		Blueprint      *Blueprint      `json:"blueprint,omitempty"`
		Book           *Book           `json:"blueprint_book,omitempty"`
		UpgradePlanner *UpgradePlanner `json:"upgrade_planner,omitempty"`
		DeconPlanner   *DeconPlanner   `json:"deconstruction_planner,omitempty"`
	}

	// InvalidDocumentError is returned when a document holds no kind or more
	// than one. It wraps ErrInvalidDocument for errors.Is() compatibility.
	InvalidDocumentError struct {
		Kinds []Kind
	}
)

// Error implements the error interface.
func (e *InvalidDocumentError) Error() string {
	if len(e.Kinds) == 0 {
		return "document holds no blueprint, blueprint_book, upgrade_planner or deconstruction_planner"
	}
	names := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		names[i] = string(k)
	}
	return fmt.Sprintf("document holds more than one kind: %s", strings.Join(names, ", "))
}

// Unwrap returns ErrInvalidDocument so callers can use errors.Is for classification.
func (e *InvalidDocumentError) Unwrap() error { return ErrInvalidDocument }

// Parse decodes a document from its JSON form. Unknown fields, trailing data
// and malformed nodes are errors that carry the path of the failing node.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := jsonstrict.Decode(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Decode reads a whole document from r.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Marshal encodes a document in its canonical JSON form.
func Marshal(doc *Document) ([]byte, error) {
	return json.Marshal(doc)
}

// Kinds returns the kinds that are set, in declaration order.
func (d *Document) Kinds() []Kind {
	if d == nil {
		return nil
	}
	var kinds []Kind
	if d.Blueprint != nil {
		kinds = append(kinds, KindBlueprint)
	}
	if d.Book != nil {
		kinds = append(kinds, KindBook)
	}
	if d.UpgradePlanner != nil {
		kinds = append(kinds, KindUpgradePlanner)
	}
	if d.DeconPlanner != nil {
		kinds = append(kinds, KindDeconPlanner)
	}
	return kinds
}

// Validate checks that exactly one kind is set.
func (d *Document) Validate() error {
	if kinds := d.Kinds(); len(kinds) != 1 {
		return &InvalidDocumentError{Kinds: kinds}
	}
	return nil
}

// Kind returns the kind of a valid document, or "" otherwise.
func (d *Document) Kind() Kind {
	if kinds := d.Kinds(); len(kinds) == 1 {
		return kinds[0]
	}
	return ""
}

// Common returns the shared fields of the held kind.
func (d *Document) Common() *Common {
	switch d.Kind() {
	case KindBlueprint:
		return &d.Blueprint.Common
	case KindBook:
		return &d.Book.Common
	case KindUpgradePlanner:
		return &d.UpgradePlanner.Common
	case KindDeconPlanner:
		return &d.DeconPlanner.Common
	default:
		return nil
	}
}

// Label returns the document label.
func (d *Document) Label() string {
	if c := d.Common(); c != nil {
		return c.Label
	}
	return ""
}

// Description returns the document description.
func (d *Document) Description() string {
	switch d.Kind() {
	case KindBlueprint:
		return d.Blueprint.Description
	case KindBook:
		return d.Book.Description
	case KindUpgradePlanner:
		if s := d.UpgradePlanner.Settings; s != nil {
			return s.Description
		}
	case KindDeconPlanner:
		if s := d.DeconPlanner.Settings; s != nil {
			return s.Description
		}
	}
	return ""
}

// Icons returns the document icons.
func (d *Document) Icons() indexed.Vec[Icon] {
	switch d.Kind() {
	case KindBlueprint:
		return d.Blueprint.Icons
	case KindBook:
		return d.Book.Icons
	case KindUpgradePlanner:
		if s := d.UpgradePlanner.Settings; s != nil {
			return s.Icons
		}
	case KindDeconPlanner:
		if s := d.DeconPlanner.Settings; s != nil {
			return s.Icons
		}
	}
	return indexed.Vec[Icon]{}
}

// ActiveBlueprint resolves the blueprint a document currently selects. A
// blueprint selects itself, a book follows its active entry recursively.
func (d *Document) ActiveBlueprint() (*Blueprint, bool) {
	for doc := d; doc != nil; {
		switch doc.Kind() {
		case KindBlueprint:
			return doc.Blueprint, true
		case KindBook:
			next, ok := doc.Book.Active()
			if !ok {
				return nil, false
			}
			doc = next
		default:
			return nil, false
		}
	}
	return nil, false
}

// Blueprints yields every blueprint of the document: the blueprint itself,
// or the entries of a book depth first in ascending key order.
func (d *Document) Blueprints() iter.Seq[*Blueprint] {
	return func(yield func(*Blueprint) bool) {
		d.walk(yield)
	}
}

func (d *Document) walk(yield func(*Blueprint) bool) bool {
	switch d.Kind() {
	case KindBlueprint:
		return yield(d.Blueprint)
	case KindBook:
		for child := range d.Book.Blueprints.Values() {
			if !child.walk(yield) {
				return false
			}
		}
	}
	return true
}

// References collects every reference in the document.
func (d *Document) References() refs.Set {
	switch d.Kind() {
	case KindBlueprint:
		return d.Blueprint.References()
	case KindBook:
		return d.Book.References()
	case KindUpgradePlanner:
		return d.UpgradePlanner.References()
	case KindDeconPlanner:
		return d.DeconPlanner.References()
	default:
		return refs.New()
	}
}

// UnmarshalJSON decodes the member naming the document kind. Errors are
// prefixed with that member.
func (d *Document) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	*d = Document{}
	for key, raw := range members {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var err error
		switch Kind(key) {
		case KindBlueprint:
			d.Blueprint = new(Blueprint)
			err = jsonstrict.Decode(raw, d.Blueprint)
		case KindBook:
			d.Book = new(Book)
			err = jsonstrict.Decode(raw, d.Book)
		case KindUpgradePlanner:
			d.UpgradePlanner = new(UpgradePlanner)
			err = jsonstrict.Decode(raw, d.UpgradePlanner)
		case KindDeconPlanner:
			d.DeconPlanner = new(DeconPlanner)
			err = jsonstrict.Decode(raw, d.DeconPlanner)
		default:
			return &jsonstrict.UnknownFieldError{Field: key}
		}
		if err != nil {
			return jsonstrict.WithPath(err, key)
		}
	}
	return d.Validate()
}

// MarshalJSON refuses documents that do not hold exactly one kind.
func (d Document) MarshalJSON() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	type plain Document
	return json.Marshal(plain(d))
}
