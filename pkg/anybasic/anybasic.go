// SPDX-License-Identifier: MPL-2.0

// Package anybasic models the untyped metadata values authors attach to
// blueprint entities: text, booleans, numbers, tables and arrays.
//
// Value is a closed union. The five variants are the only implementations and
// every switch over them in this package is exhaustive.
package anybasic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ErrShapeMismatch is the sentinel error wrapped by ShapeMismatchError.
var ErrShapeMismatch = errors.New("shape mismatch")

type (
	// Value is one of String, Bool, Number, *Table or Array.
	Value interface {
		fmt.Stringer
		// Kind names the variant.
		Kind() Kind
		isValue()
	}

	// Kind names a Value variant.
	Kind string

	// String is a text value.
	String string

	// Bool is a boolean value.
	Bool bool

	// Number is a 64-bit float value.
	Number float64

	// Array is an ordered sequence of values.
	Array []Value

	// Table maps text keys to values. Key order is kept for display but
	// ignored by Equal.
	Table struct {
		keys   []string
		values map[string]Value
	}

	// ShapeMismatchError is returned when input does not have one of the
	// accepted shapes, or has a different shape than a caller expected.
	// It wraps ErrShapeMismatch for errors.Is() compatibility.
	ShapeMismatchError struct {
		// Path locates the offending value inside the parsed input.
		Path string
		// Want is the expected shape, Got the shape found.
		Want string
		Got  string
	}
)

// Value kinds.
const (
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
	KindTable  Kind = "table"
	KindArray  Kind = "array"
)

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	where := ""
	if e.Path != "" {
		where = " at " + e.Path
	}
	if e.Want == "" {
		return fmt.Sprintf("shape mismatch%s: unsupported %s", where, e.Got)
	}
	return fmt.Sprintf("shape mismatch%s: want %s, got %s", where, e.Want, e.Got)
}

// Unwrap returns ErrShapeMismatch so callers can use errors.Is for classification.
func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

func (String) isValue() {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (*Table) isValue() {}
func (Array) isValue()  {}

func (String) Kind() Kind { return KindString }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (*Table) Kind() Kind { return KindTable }
func (Array) Kind() Kind  { return KindArray }

// String renders the text verbatim.
func (s String) String() string { return string(s) }

// String renders true or false.
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// String renders the shortest decimal form that round-trips, without exponent.
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }

// String renders the table as {k: v, k: v} in key order.
func (t *Table) String() string {
	if t == nil {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(t.values[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// String renders the array as [v, v].
func (a Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// NewTable builds an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]Value)}
}

// Set stores v under key. A new key goes to the end of the display order;
// an existing key keeps its position.
func (t *Table) Set(key string, v Value) {
	if t.values == nil {
		t.values = make(map[string]Value)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

// Get returns the value stored under key.
func (t *Table) Get(key string) (Value, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the keys in display order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.keys)
}

// All yields the entries in display order.
func (t *Table) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if t == nil {
			return
		}
		for _, k := range t.keys {
			if !yield(k, t.values[k]) {
				return
			}
		}
	}
}

// Map returns the entries as a plain map.
func (t *Table) Map() map[string]Value {
	if t == nil {
		return nil
	}
	return maps.Clone(t.values)
}

// Equal reports structural equality. Tables compare without regard to key order.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case *Table:
		bv, ok := b.(*Table)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for k, v := range av.All() {
			other, found := bv.Get(k)
			if !found || !Equal(v, other) {
				return false
			}
		}
		return true
	case Array:
		bv, ok := b.(Array)
		return ok && slices.EqualFunc(av, bv, Equal)
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("anybasic: unexpected value type %T", a))
	}
}

// Equal reports whether t and other hold the same entries.
func (t *Table) Equal(other *Table) bool { return Equal(t, other) }

// AsTable returns v as a table or a ShapeMismatchError.
func AsTable(v Value) (*Table, error) {
	if t, ok := v.(*Table); ok {
		return t, nil
	}
	return nil, mismatch("", KindTable, v)
}

// AsString returns v as text or a ShapeMismatchError.
func AsString(v Value) (string, error) {
	if s, ok := v.(String); ok {
		return string(s), nil
	}
	return "", mismatch("", KindString, v)
}

func mismatch(path string, want Kind, got Value) *ShapeMismatchError {
	gotName := "nothing"
	if got != nil {
		gotName = string(got.Kind())
	}
	return &ShapeMismatchError{Path: path, Want: string(want), Got: gotName}
}

// ParseJSON parses a JSON value. Shapes are tried in the order text, boolean,
// number, table, array. null is rejected, as are tables that repeat a key.
// Table key order follows the input.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("anybasic: trailing data after value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder, path string) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch tok := tok.(type) {
	case string:
		return String(tok), nil
	case bool:
		return Bool(tok), nil
	case json.Number:
		f, err := tok.Float64()
		if err != nil {
			return nil, fmt.Errorf("anybasic: number %s at %q: %w", tok, path, err)
		}
		return Number(f), nil
	case json.Delim:
		switch tok {
		case '{':
			return parseTable(dec, path)
		case '[':
			return parseArray(dec, path)
		}
	}
	return nil, &ShapeMismatchError{Path: path, Got: describeToken(tok)}
}

func parseTable(dec *json.Decoder, path string) (*Table, error) {
	t := NewTable()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		if _, dup := t.values[key]; dup {
			return nil, fmt.Errorf("anybasic: duplicate key %q in table at %q", key, path)
		}
		v, err := parseValue(dec, join(path, key))
		if err != nil {
			return nil, err
		}
		t.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseArray(dec *json.Decoder, path string) (Array, error) {
	arr := Array{}
	for i := 0; dec.More(); i++ {
		v, err := parseValue(dec, join(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func join(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

func describeToken(tok json.Token) string {
	if tok == nil {
		return "null"
	}
	return fmt.Sprintf("%T", tok)
}

// FromAny converts a decoded Go value (string, bool, numeric types,
// map[string]any, []any) into a Value. Map keys are sorted for display order.
func FromAny(in any) (Value, error) {
	return fromAny(in, "")
}

func fromAny(in any, path string) (Value, error) {
	switch v := in.(type) {
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(v), nil
	case int:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case map[string]any:
		t := NewTable()
		for _, k := range slices.Sorted(maps.Keys(v)) {
			child, err := fromAny(v[k], join(path, k))
			if err != nil {
				return nil, err
			}
			t.Set(k, child)
		}
		return t, nil
	case []any:
		arr := make(Array, 0, len(v))
		for i, e := range v {
			child, err := fromAny(e, join(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			arr = append(arr, child)
		}
		return arr, nil
	case Value:
		return v, nil
	default:
		got := "null"
		if in != nil {
			got = fmt.Sprintf("%T", in)
		}
		return nil, &ShapeMismatchError{Path: path, Got: got}
	}
}

// ToAny converts v back into plain Go values.
func ToAny(v Value) any {
	switch v := v.(type) {
	case String:
		return string(v)
	case Bool:
		return bool(v)
	case Number:
		return float64(v)
	case *Table:
		out := make(map[string]any, v.Len())
		for k, e := range v.All() {
			out[k] = ToAny(e)
		}
		return out
	case Array:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = ToAny(e)
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON writes the table with keys in display order.
func (t *Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(t.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a table, keeping the input key order.
func (t *Table) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	parsed, err := AsTable(v)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// MarshalYAML lets YAML encoders see the table as a plain mapping.
func (t *Table) MarshalYAML() (any, error) { return ToAny(t), nil }

// MarshalJSON writes the array elements.
func (a Array) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(a))
}

// UnmarshalJSON parses an array of values.
func (a *Array) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	arr, ok := v.(Array)
	if !ok {
		return mismatch("", KindArray, v)
	}
	*a = arr
	return nil
}
