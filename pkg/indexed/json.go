// SPDX-License-Identifier: MPL-2.0

package indexed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fgardt/factorio-scanner-sub002/pkg/jsonstrict"
)

// legacyIndexField is the key carrying the element key in the list form.
const legacyIndexField = "index"

// MarshalJSON writes the keyed object form with keys in ascending order.
func (v Vec[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range v.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(e.key.String()))
		buf.WriteByte(':')
		data, err := json.Marshal(e.value)
		if err != nil {
			return nil, jsonstrict.WithPath(err, e.key.String())
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the keyed object form. Elements decode strictly and
// errors carry the key of the failing element. The list form, where each
// element is an object with an "index" member, is accepted as well.
func (v *Vec[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	v.entries = nil

	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '[':
		return v.unmarshalList(data)
	case len(data) > 0 && data[0] == '{':
		return v.unmarshalObject(data)
	default:
		return fmt.Errorf("indexed: expected keyed object, got %.20s", data)
	}
}

func (v *Vec[T]) unmarshalObject(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		raw, _ := tok.(string)
		key, err := ParseKey(raw)
		if err != nil {
			return err
		}

		var msg json.RawMessage
		if err := dec.Decode(&msg); err != nil {
			return jsonstrict.WithPath(err, raw)
		}
		var value T
		if err := jsonstrict.Decode(msg, &value); err != nil {
			return jsonstrict.WithPath(err, raw)
		}
		if err := v.Insert(key, value); err != nil {
			return err
		}
	}
	_, err := dec.Token()
	return err
}

func (v *Vec[T]) unmarshalList(data []byte) error {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("indexed: list form: %w", err)
	}
	for i, fields := range items {
		pos := strconv.Itoa(i)
		rawIndex, ok := fields[legacyIndexField]
		if !ok {
			return jsonstrict.WithPath(fmt.Errorf("missing %q", legacyIndexField), pos)
		}
		delete(fields, legacyIndexField)

		key, err := ParseKey(string(bytes.TrimSpace(rawIndex)))
		if err != nil {
			return jsonstrict.WithPath(err, pos)
		}
		rest, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		var value T
		if err := jsonstrict.Decode(rest, &value); err != nil {
			return jsonstrict.WithPath(err, key.String())
		}
		if err := v.Insert(key, value); err != nil {
			return err
		}
	}
	return nil
}
