// SPDX-License-Identifier: MPL-2.0

package deps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fgardt/factorio-scanner-sub002/pkg/catalog"
)

// Constraint operators, in mod dependency notation.
const (
	OpAny       Op = ""
	OpLess      Op = "<"
	OpLessEq    Op = "<="
	OpEqual     Op = "="
	OpGreaterEq Op = ">="
	OpGreater   Op = ">"
)

// ErrInvalidConstraint is the sentinel error wrapped by InvalidConstraintError.
var ErrInvalidConstraint = errors.New("invalid version constraint")

type (
	// Op compares a version against a constraint version.
	Op string

	// Constraint restricts the acceptable versions of a package.
	Constraint struct {
		Op      Op
		Version catalog.Version
	}

	// InvalidConstraintError is returned when a constraint string is malformed.
	// It wraps ErrInvalidConstraint for errors.Is() compatibility.
	InvalidConstraintError struct {
		Value string
		Err   error
	}
)

// Error implements the error interface.
func (e *InvalidConstraintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid version constraint %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid version constraint %q", e.Value)
}

// Unwrap returns ErrInvalidConstraint so callers can use errors.Is for classification.
func (e *InvalidConstraintError) Unwrap() error { return ErrInvalidConstraint }

// Any accepts every version.
func Any() Constraint { return Constraint{} }

// Exact accepts only v.
func Exact(v catalog.Version) Constraint { return Constraint{Op: OpEqual, Version: v} }

// AtLeast accepts v and newer.
func AtLeast(v catalog.Version) Constraint { return Constraint{Op: OpGreaterEq, Version: v} }

// ParseConstraint parses "", or an operator followed by X.Y.Z, for example
// ">= 1.3.23". Whitespace between operator and version is optional.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Any(), nil
	}

	// Two-character operators first so "<=" is not read as "<".
	for _, op := range []Op{OpLessEq, OpGreaterEq, OpLess, OpGreater, OpEqual} {
		rest, ok := strings.CutPrefix(s, string(op))
		if !ok {
			continue
		}
		v, err := catalog.ParseVersion(strings.TrimSpace(rest))
		if err != nil {
			return Constraint{}, &InvalidConstraintError{Value: s, Err: err}
		}
		return Constraint{Op: op, Version: v}, nil
	}
	return Constraint{}, &InvalidConstraintError{Value: s}
}

// String renders the constraint as "op version", or "" for Any.
func (c Constraint) String() string {
	if c.Op == OpAny {
		return ""
	}
	return string(c.Op) + " " + c.Version.String()
}

// Allows reports whether v satisfies the constraint.
func (c Constraint) Allows(v catalog.Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case OpAny:
		return true
	case OpLess:
		return cmp < 0
	case OpLessEq:
		return cmp <= 0
	case OpEqual:
		return cmp == 0
	case OpGreaterEq:
		return cmp >= 0
	case OpGreater:
		return cmp > 0
	default:
		return false
	}
}

// MarshalText renders the constraint string.
func (c Constraint) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText parses a constraint string.
func (c *Constraint) UnmarshalText(text []byte) error {
	parsed, err := ParseConstraint(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
