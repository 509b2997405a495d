// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

type (
	// Version is a package version in major.minor.patch form.
	Version struct {
		Major uint16
		Minor uint16
		Patch uint16
	}

	// InvalidVersionError is returned when a version string is malformed.
	// It wraps ErrInvalidVersion for errors.Is() compatibility.
	InvalidVersionError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is for classification.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// NewVersion builds a version from its parts.
func NewVersion(major, minor, patch uint16) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// ParseVersion parses "X.Y.Z" where every part is a decimal in [0, 65535].
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, &InvalidVersionError{Value: s, Reason: "expected major.minor.patch"}
	}

	var nums [3]uint16
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, &InvalidVersionError{Value: s, Reason: "parts must be decimal numbers"}
		}
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Version{}, &InvalidVersionError{Value: s, Reason: "part out of range"}
		}
		nums[i] = uint16(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParseVersion is like ParseVersion but panics on error. For constants only.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version as major.minor.patch.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether v is 0.0.0.
func (v Version) IsZero() bool { return v == Version{} }

// Compare orders versions by major, minor, then patch.
func (v Version) Compare(other Version) int {
	return cmp.Or(
		cmp.Compare(v.Major, other.Major),
		cmp.Compare(v.Minor, other.Minor),
		cmp.Compare(v.Patch, other.Patch),
	)
}

// MarshalText renders the version string.
func (v Version) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses a version string.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
