// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"errors"
	"fmt"

	"github.com/fgardt/factorio-scanner-sub002/pkg/jsonstrict"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

// Parameter kinds.
const (
	ParameterID     ParameterKind = "id"
	ParameterNumber ParameterKind = "number"
)

// ErrInvalidParameterKind is the sentinel error wrapped by InvalidParameterKindError.
var ErrInvalidParameterKind = errors.New("invalid parameter kind")

type (
	// ParameterKind discriminates the two parameter flavours.
	ParameterKind string

	// InvalidParameterKindError is returned when a parameter has an unknown type.
	// It wraps ErrInvalidParameterKind for errors.Is() compatibility.
	InvalidParameterKindError struct {
		Value ParameterKind
	}

	// Parameter is a placeholder of a parametrised blueprint. ID parameters
	// stand in for a prototype, number parameters for a constant.
	Parameter struct {
		Kind            ParameterKind `json:"type"`
		NotParametrised bool          `json:"not-parametrised,omitempty"`
		Name            string        `json:"name,omitempty"`

		ID               string            `json:"id,omitempty"`
		QualityCondition *QualityCondition `json:"quality-condition,omitempty"`
		IngredientOf     string            `json:"ingredient-of,omitempty"`

		Number   string `json:"number,omitempty"`
		Variable string `json:"variable,omitempty"`
		Formula  string `json:"formula,omitempty"`
	}

	// StockConnection couples a rolling stock to its neighbours.
	StockConnection struct {
		Stock uint32  `json:"stock"`
		Front *uint32 `json:"front,omitempty"`
		Back  *uint32 `json:"back,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidParameterKindError) Error() string {
	return fmt.Sprintf("invalid parameter type %q (valid: id, number)", e.Value)
}

// Unwrap returns ErrInvalidParameterKind so callers can use errors.Is for classification.
func (e *InvalidParameterKindError) Unwrap() error { return ErrInvalidParameterKind }

// UnmarshalJSON decodes the parameter strictly and checks its kind.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	type plain Parameter
	if err := jsonstrict.Decode(data, (*plain)(p)); err != nil {
		return err
	}
	switch p.Kind {
	case ParameterID, ParameterNumber:
		return nil
	default:
		return &InvalidParameterKindError{Value: p.Kind}
	}
}

// References records the quality an ID parameter is restricted to.
func (p Parameter) References() refs.Set {
	return refs.Of(p.QualityCondition)
}
