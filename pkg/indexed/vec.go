// SPDX-License-Identifier: MPL-2.0

// Package indexed provides Vec, an ordered collection whose elements carry
// stable positive integer keys. Keys may have gaps, and the gaps survive a
// round trip through the keyed JSON form:
//
//	{"1": {...}, "3": {...}, "7": {...}}
//
// Every list-shaped field of a blueprint document uses a Vec, so element
// identity (for example the slot a blueprint occupies inside a book) is kept
// when documents are edited and written back.
package indexed

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
)

var (
	// ErrInvalidKey is the sentinel error wrapped by InvalidKeyError.
	ErrInvalidKey = errors.New("invalid key")
	// ErrDuplicateKey is the sentinel error wrapped by DuplicateKeyError.
	ErrDuplicateKey = errors.New("duplicate key")
)

type (
	// Key identifies an element. Valid keys are positive.
	Key uint32

	// Vec is a sparse, ascending-key collection. The zero value is empty and
	// ready to use.
	Vec[T any] struct {
		entries []entry[T]
	}

	entry[T any] struct {
		key   Key
		value T
	}

	// InvalidKeyError is returned when a key is not a positive integer.
	// It wraps ErrInvalidKey for errors.Is() compatibility.
	InvalidKeyError struct {
		Raw string
	}

	// DuplicateKeyError is returned when a key is already present.
	// It wraps ErrDuplicateKey for errors.Is() compatibility.
	DuplicateKeyError struct {
		Key Key
	}
)

// Error implements the error interface.
func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: must be a positive integer", e.Raw)
}

// Unwrap returns ErrInvalidKey so callers can use errors.Is for classification.
func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %d", e.Key)
}

// Unwrap returns ErrDuplicateKey so callers can use errors.Is for classification.
func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// String renders the key in decimal.
func (k Key) String() string { return strconv.FormatUint(uint64(k), 10) }

// ParseKey parses a decimal key. Only digits are accepted and the value must
// be greater than zero.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return 0, &InvalidKeyError{Raw: s}
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return 0, &InvalidKeyError{Raw: s}
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, &InvalidKeyError{Raw: s}
	}
	return Key(n), nil
}

// Of builds a Vec holding values under keys 1..n.
func Of[T any](values ...T) Vec[T] {
	var v Vec[T]
	for _, value := range values {
		v.Append(value)
	}
	return v
}

// Len returns the number of elements.
func (v Vec[T]) Len() int { return len(v.entries) }

// IsZero reports whether the Vec is empty. encoding/json consults it for
// fields tagged omitzero.
func (v Vec[T]) IsZero() bool { return len(v.entries) == 0 }

// All yields (key, value) pairs in ascending key order. The sequence can be
// ranged over any number of times.
func (v Vec[T]) All() iter.Seq2[Key, T] {
	return func(yield func(Key, T) bool) {
		for _, e := range v.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Values yields the elements in ascending key order.
func (v Vec[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range v.entries {
			if !yield(e.value) {
				return
			}
		}
	}
}

// Keys returns the stored keys in ascending order.
func (v Vec[T]) Keys() []Key {
	keys := make([]Key, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.key
	}
	return keys
}

// Get returns the element stored under key.
func (v Vec[T]) Get(key Key) (T, bool) {
	i, found := v.search(key)
	if !found {
		var zero T
		return zero, false
	}
	return v.entries[i].value, true
}

// Insert stores value under key.
func (v *Vec[T]) Insert(key Key, value T) error {
	if key == 0 {
		return &InvalidKeyError{Raw: key.String()}
	}
	i, found := v.search(key)
	if found {
		return &DuplicateKeyError{Key: key}
	}
	v.entries = slices.Insert(v.entries, i, entry[T]{key: key, value: value})
	return nil
}

// Append stores value under the key after the current maximum, or 1 when
// the Vec is empty. Gaps below the maximum are never reused.
func (v *Vec[T]) Append(value T) Key {
	key := Key(1)
	if n := len(v.entries); n > 0 {
		key = v.entries[n-1].key + 1
		if key == 0 {
			panic("indexed: key space exhausted")
		}
	}
	v.entries = append(v.entries, entry[T]{key: key, value: value})
	return key
}

// Delete removes the element stored under key and reports whether it existed.
func (v *Vec[T]) Delete(key Key) bool {
	i, found := v.search(key)
	if !found {
		return false
	}
	v.entries = slices.Delete(v.entries, i, i+1)
	return true
}

func (v Vec[T]) search(key Key) (int, bool) {
	return slices.BinarySearchFunc(v.entries, key, func(e entry[T], k Key) int {
		switch {
		case e.key < k:
			return -1
		case e.key > k:
			return 1
		default:
			return 0
		}
	})
}

// EqualFunc reports whether a and b hold the same keys with values that
// satisfy eq.
func EqualFunc[T any](a, b Vec[T], eq func(T, T) bool) bool {
	return slices.EqualFunc(a.entries, b.entries, func(x, y entry[T]) bool {
		return x.key == y.key && eq(x.value, y.value)
	})
}

// Equal reports whether a and b hold the same keys and equal values.
func Equal[T comparable](a, b Vec[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}
