// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"errors"
	"fmt"

	"github.com/fgardt/factorio-scanner-sub002/pkg/indexed"
	"github.com/fgardt/factorio-scanner-sub002/pkg/jsonstrict"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

// NormalQuality is the quality assumed when a node names none.
const NormalQuality = "normal"

// Signal types.
const (
	SignalItem          SignalType = "item"
	SignalFluid         SignalType = "fluid"
	SignalVirtual       SignalType = "virtual"
	SignalEntity        SignalType = "entity"
	SignalRecipe        SignalType = "recipe"
	SignalSpaceLocation SignalType = "space-location"
	SignalAsteroidChunk SignalType = "asteroid-chunk"
	SignalQuality       SignalType = "quality"
)

// ErrInvalidSignalType is the sentinel error wrapped by InvalidSignalTypeError.
var ErrInvalidSignalType = errors.New("invalid signal type")

type (
	// SignalType names the kind of object a signal refers to. The empty
	// value means item.
	SignalType string

	// InvalidSignalTypeError is returned when a signal names an unknown type.
	// It wraps ErrInvalidSignalType for errors.Is() compatibility.
	InvalidSignalTypeError struct {
		Value SignalType
	}

	// SignalID identifies a circuit signal.
	SignalID struct {
		Type    SignalType `json:"type,omitempty"`
		Name    string     `json:"name,omitempty"`
		Quality string     `json:"quality,omitempty"`
	}

	// Icon is one icon slot of a document.
	Icon struct {
		Signal SignalID `json:"signal"`
	}

	// NameRef is an element of a plain name list, such as a planner filter.
	NameRef struct {
		Name string `json:"name"`
	}

	// CircuitCondition compares a signal against another signal or a constant.
	CircuitCondition struct {
		Comparator           string            `json:"comparator,omitempty"`
		FirstSignal          *SignalID         `json:"first_signal,omitempty"`
		SecondSignal         *SignalID         `json:"second_signal,omitempty"`
		Constant             *int32            `json:"constant,omitempty"`
		FirstSignalNetworks  *NetworkSelection `json:"first_signal_networks,omitempty"`
		SecondSignalNetworks *NetworkSelection `json:"second_signal_networks,omitempty"`
	}

	// NetworkSelection picks the wire colours a signal is read from.
	NetworkSelection struct {
		Red   bool `json:"red"`
		Green bool `json:"green"`
	}

	// QualityCondition restricts a match to qualities relative to Quality.
	QualityCondition struct {
		Quality    string `json:"quality,omitempty"`
		Comparator string `json:"comparator,omitempty"`
	}

	// RequestCondition names the item of a request wait condition.
	RequestCondition struct {
		Name    string `json:"name"`
		Quality string `json:"quality,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidSignalTypeError) Error() string {
	return fmt.Sprintf("invalid signal type %q (valid: item, fluid, virtual, entity, recipe, space-location, asteroid-chunk, quality)", e.Value)
}

// Unwrap returns ErrInvalidSignalType so callers can use errors.Is for classification.
func (e *InvalidSignalTypeError) Unwrap() error { return ErrInvalidSignalType }

// Category maps the signal type onto its reference category.
func (t SignalType) Category() (refs.Category, bool) {
	switch t {
	case "", SignalItem:
		return refs.Item, true
	case SignalFluid:
		return refs.Fluid, true
	case SignalVirtual:
		return refs.VirtualSignal, true
	case SignalEntity:
		return refs.Entity, true
	case SignalRecipe:
		return refs.Recipe, true
	case SignalSpaceLocation:
		return refs.SpaceLocation, true
	case SignalAsteroidChunk:
		return refs.AsteroidChunk, true
	case SignalQuality:
		return refs.Quality, true
	default:
		return "", false
	}
}

// IsValid returns whether the SignalType is a known signal type,
// and a list of validation errors if it is not.
func (t SignalType) IsValid() (bool, []error) {
	if _, ok := t.Category(); !ok {
		return false, []error{&InvalidSignalTypeError{Value: t}}
	}
	return true, nil
}

// UnmarshalJSON decodes the signal strictly and validates its type.
func (s *SignalID) UnmarshalJSON(data []byte) error {
	type plain SignalID
	if err := jsonstrict.Decode(data, (*plain)(s)); err != nil {
		return err
	}
	if ok, errs := s.Type.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// References records the signal name under its type's category and the
// quality under quality. A quality signal has no separate quality.
func (s SignalID) References() refs.Set {
	ids := refs.New()
	if c, ok := s.Type.Category(); ok {
		ids.Insert(c, s.Name)
	}
	if s.Type != SignalQuality {
		ids.Insert(refs.Quality, s.Quality)
	}
	return ids
}

// References returns the references of the icon's signal.
func (i Icon) References() refs.Set { return i.Signal.References() }

// References returns the references of both compared signals.
func (c CircuitCondition) References() refs.Set {
	ids := refs.Of(c.FirstSignal)
	ids.Merge(refs.Of(c.SecondSignal))
	return ids
}

// References records the quality the condition compares against.
func (q QualityCondition) References() refs.Set {
	ids := refs.New()
	ids.Insert(refs.Quality, q.Quality)
	return ids
}

// References records the requested item and its quality.
func (r RequestCondition) References() refs.Set {
	ids := refs.New()
	ids.Insert(refs.Item, r.Name)
	ids.Insert(refs.Quality, r.Quality)
	return ids
}

// namesIn records every name of list under category c.
func namesIn(c refs.Category, list indexed.Vec[NameRef]) refs.Set {
	ids := refs.New()
	for n := range list.Values() {
		ids.Insert(c, n.Name)
	}
	return ids
}
