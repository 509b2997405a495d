// SPDX-License-Identifier: MPL-2.0

// Package jsonstrict decodes JSON documents with unknown-field rejection that
// survives custom UnmarshalJSON methods, and attaches document paths to errors.
package jsonstrict

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
)

const unknownFieldPrefix = `json: unknown field "`

var (
	// ErrUnknownField is the sentinel error wrapped by UnknownFieldError.
	ErrUnknownField = errors.New("unknown field")
	// ErrTrailingData is returned when a document is followed by more JSON values.
	ErrTrailingData = errors.New("trailing data after JSON value")

	knownFieldCache sync.Map // reflect.Type -> map[string]struct{}
)

type (
	// UnknownFieldError is returned when a strict decode meets a field that
	// the target type does not declare. It wraps ErrUnknownField for errors.Is().
	UnknownFieldError struct {
		Field string
	}

	// PathError attaches the document path of the failing node to an error.
	PathError struct {
		Path []string
		Err  error
	}
)

// Error implements the error interface.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// Unwrap returns ErrUnknownField so callers can use errors.Is for classification.
func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// Error implements the error interface.
func (e *PathError) Error() string {
	return strings.Join(e.Path, ".") + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error { return e.Err }

// String returns the dotted path.
func (e *PathError) String() string { return strings.Join(e.Path, ".") }

// WithPath prefixes err with a path segment. Consecutive calls from the inside
// out build the full path of the failing node.
func WithPath(err error, segment string) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PathError); ok { //nolint:errorlint // only direct PathErrors are merged
		path := make([]string, 0, len(pe.Path)+1)
		path = append(path, segment)
		path = append(path, pe.Path...)
		return &PathError{Path: path, Err: pe.Err}
	}
	return &PathError{Path: []string{segment}, Err: err}
}

// Decode unmarshals data into v, rejecting unknown fields and trailing data.
// Types with their own UnmarshalJSON must call Decode on an alias of
// themselves to keep the strictness.
func Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return classify(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

// DecodeWithExtras decodes the fields of data that v declares strictly and
// returns every other top-level field verbatim. v must point to a struct.
func DecodeWithExtras(data []byte, v any) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, classify(err)
	}

	known := knownFields(reflect.TypeOf(v))
	declared := make(map[string]json.RawMessage, len(raw))
	var extra map[string]json.RawMessage
	for k, msg := range raw {
		if _, ok := known[k]; ok {
			declared[k] = msg
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = msg
	}

	filtered, err := json.Marshal(declared)
	if err != nil {
		return nil, err
	}
	if err := Decode(filtered, v); err != nil {
		return nil, err
	}
	return extra, nil
}

// MarshalWithExtras marshals v and merges extra top-level fields into the
// resulting object. Declared fields take precedence over extras of the same name.
func MarshalWithExtras(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, msg := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = msg
		}
	}
	return json.Marshal(merged)
}

// classify maps encoding/json's unknown field message onto UnknownFieldError.
func classify(err error) error {
	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, unknownFieldPrefix); ok {
		return &UnknownFieldError{Field: strings.TrimSuffix(field, `"`)}
	}
	return err
}

// knownFields returns the JSON object keys a struct type declares, following
// untagged embedded structs the way encoding/json does.
func knownFields(t reflect.Type) map[string]struct{} {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := knownFieldCache.Load(t); ok {
		return cached.(map[string]struct{}) //nolint:forcetypeassert // cache only holds this type
	}

	fields := make(map[string]struct{})
	collectFields(t, fields)
	knownFieldCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, into map[string]struct{}) {
	if t.Kind() != reflect.Struct {
		return
	}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			collectFields(ft, into)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		into[name] = struct{}{}
	}
}
