// SPDX-License-Identifier: MPL-2.0

package indexed

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fgardt/factorio-scanner-sub002/pkg/jsonstrict"
)

type named struct {
	Name string `json:"name"`
}

type holder struct {
	Label   string     `json:"label,omitempty"`
	Filters Vec[named] `json:"filters,omitzero"`
}

func TestAppend(t *testing.T) {
	t.Parallel()

	var v Vec[string]
	if got := v.Append("a"); got != 1 {
		t.Errorf("Append() on empty = %d, want 1", got)
	}

	var gapped Vec[string]
	for _, k := range []Key{2, 5} {
		if err := gapped.Insert(k, k.String()); err != nil {
			t.Fatalf("Insert(%d) error: %v", k, err)
		}
	}
	if got := gapped.Append("x"); got != 6 {
		t.Errorf("Append() after {2, 5} = %d, want 6", got)
	}

	gapped.Delete(6)
	gapped.Delete(5)
	if got := gapped.Append("y"); got != 3 {
		t.Errorf("Append() after deleting the maximum = %d, want 3", got)
	}
}

func TestInsert(t *testing.T) {
	t.Parallel()

	var v Vec[int]
	for _, k := range []Key{7, 1, 3} {
		if err := v.Insert(k, int(k)*10); err != nil {
			t.Fatalf("Insert(%d) error: %v", k, err)
		}
	}

	if diff := cmp.Diff([]Key{1, 3, 7}, v.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	err := v.Insert(3, 99)
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) || dup.Key != 3 {
		t.Fatalf("Insert(3) again error = %v, want DuplicateKeyError{3}", err)
	}
	if !errors.Is(err, ErrDuplicateKey) {
		t.Error("DuplicateKeyError does not wrap ErrDuplicateKey")
	}
	if got, _ := v.Get(3); got != 30 {
		t.Errorf("failed insert replaced value: Get(3) = %d", got)
	}

	if err := v.Insert(0, 1); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Insert(0) error = %v, want ErrInvalidKey", err)
	}
}

func TestAll_Restartable(t *testing.T) {
	t.Parallel()

	var v Vec[string]
	_ = v.Insert(4, "d")
	_ = v.Insert(2, "b")

	seq := v.All()
	for range 2 {
		var keys []Key
		var values []string
		for k, val := range seq {
			keys = append(keys, k)
			values = append(values, val)
		}
		if !slices.Equal(keys, []Key{2, 4}) || !slices.Equal(values, []string{"b", "d"}) {
			t.Errorf("All() = %v %v, want [2 4] [b d]", keys, values)
		}
	}

	var first []string
	for val := range v.Values() {
		first = append(first, val)
		break
	}
	if !slices.Equal(first, []string{"b"}) {
		t.Errorf("early break yielded %v", first)
	}
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{in: "1", want: 1},
		{in: "42", want: 42},
		{in: "4294967295", want: 4294967295},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "+1", wantErr: true},
		{in: "a", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "", wantErr: true},
		{in: "4294967296", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ParseKey(%q) error does not wrap ErrInvalidKey", tt.in)
			}
			if got != tt.want {
				t.Errorf("ParseKey(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestJSON_RoundTripWithGaps(t *testing.T) {
	t.Parallel()

	var v Vec[named]
	for _, k := range []Key{7, 1, 3} {
		if err := v.Insert(k, named{Name: "n" + k.String()}); err != nil {
			t.Fatal(err)
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"1":{"name":"n1"},"3":{"name":"n3"},"7":{"name":"n7"}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back Vec[named]
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !Equal(v, back) {
		t.Errorf("round trip changed the container: %v vs %v", v.Keys(), back.Keys())
	}
}

func TestJSON_UnmarshalOrdersKeys(t *testing.T) {
	t.Parallel()

	var v Vec[int]
	if err := json.Unmarshal([]byte(`{"10": 1, "2": 2, "5": 3}`), &v); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if diff := cmp.Diff([]Key{2, 5, 10}, v.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_UnmarshalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "non-numeric key", input: `{"a": {"name": "x"}}`, wantErr: ErrInvalidKey},
		{name: "zero key", input: `{"0": {"name": "x"}}`, wantErr: ErrInvalidKey},
		{name: "negative key", input: `{"-2": {"name": "x"}}`, wantErr: ErrInvalidKey},
		{name: "repeated key", input: `{"1": {"name": "x"}, "1": {"name": "y"}}`, wantErr: ErrDuplicateKey},
		{name: "unknown element field", input: `{"1": {"name": "x", "nam": "y"}}`, wantErr: jsonstrict.ErrUnknownField},
		{name: "list form zero index", input: `[{"index": 0, "name": "x"}]`, wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var v Vec[named]
			err := json.Unmarshal([]byte(tt.input), &v)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Unmarshal(%s) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestJSON_ElementErrorCarriesKey(t *testing.T) {
	t.Parallel()

	var v Vec[named]
	err := json.Unmarshal([]byte(`{"1": {"name": "a"}, "4": {"name": 5}}`), &v)
	var pe *jsonstrict.PathError
	if !errors.As(err, &pe) {
		t.Fatalf("Unmarshal() error = %v, want *jsonstrict.PathError", err)
	}
	if pe.String() != "4" {
		t.Errorf("path = %q, want %q", pe.String(), "4")
	}
}

func TestJSON_ListForm(t *testing.T) {
	t.Parallel()

	var v Vec[named]
	if err := json.Unmarshal([]byte(`[{"index": 3, "name": "c"}, {"index": 1, "name": "a"}]`), &v); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"1":{"name":"a"},"3":{"name":"c"}}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestJSON_EmptyOmitted(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(holder{Label: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"label":"x"}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	h := holder{Filters: Of(named{Name: "a"})}
	data, err = json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"filters":{"1":{"name":"a"}}}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	a := Of("x", "y")
	b := Of("x", "y")
	if !Equal(a, b) {
		t.Error("identical containers should be equal")
	}

	var c Vec[string]
	_ = c.Insert(1, "x")
	_ = c.Insert(3, "y")
	if Equal(a, c) {
		t.Error("containers with different key sets must differ")
	}

	b.Delete(2)
	b.Append("z")
	if Equal(a, b) {
		t.Error("containers with different values must differ")
	}
}
