// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
)

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"
)

// ErrInvalidSeverity is returned when a Severity value is not recognized.
var ErrInvalidSeverity = errors.New("invalid diagnostic severity")

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic is a non-fatal problem found while walking the scan roots.
	// Diagnostics are returned to callers instead of written to stderr so the
	// CLI decides how to render them.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity `json:"severity"`
		// Code is a machine-readable identifier (e.g., "path_unreadable").
		Code string `json:"code"`
		// Message is the human-readable description.
		Message string `json:"message"`
		// Path is the file path associated with this diagnostic (optional).
		Path string `json:"path,omitempty"`
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error `json:"-"`
	}

	// InvalidSeverityError is returned when a Severity value is not recognized.
	// It wraps ErrInvalidSeverity for errors.Is() compatibility.
	InvalidSeverityError struct {
		Value Severity
	}
)

// IsValid returns whether the Severity is one of the defined levels.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{&InvalidSeverityError{Value: s}}
	}
}

// Error implements the error interface.
func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid diagnostic severity %q", e.Value)
}

// Unwrap returns ErrInvalidSeverity for errors.Is() compatibility.
func (e *InvalidSeverityError) Unwrap() error { return ErrInvalidSeverity }

// String renders the diagnostic as "severity: message".
func (d Diagnostic) String() string {
	return string(d.Severity) + ": " + d.Message
}
