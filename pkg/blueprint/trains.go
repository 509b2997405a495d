// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"encoding/json"
	"fmt"

	"github.com/fgardt/factorio-scanner-sub002/pkg/jsonstrict"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

// Wait condition types with special members.
const (
	waitCircuit             = "circuit"
	waitItemCount           = "item_count"
	waitFluidCount          = "fluid_count"
	waitFuelItemCountAll    = "fuel_item_count_all"
	waitFuelItemCountAny    = "fuel_item_count_any"
	waitRequestSatisfied    = "request_satisfied"
	waitRequestNotSatisfied = "request_not_satisfied"
	waitAnyPlanetImportZero = "any_planet_import_zero"
)

const defaultWaitCompareType = "or"

type (
	// Schedule is a train schedule shared by a set of locomotives.
	Schedule struct {
		Locomotives []uint32     `json:"locomotives,omitempty"`
		Schedule    ScheduleData `json:"schedule"`
	}

	// ScheduleData holds the stops and interrupts of a schedule.
	ScheduleData struct {
		Records    []ScheduleRecord    `json:"records,omitempty"`
		Group      string              `json:"group,omitempty"`
		Interrupts []ScheduleInterrupt `json:"interrupts,omitempty"`
	}

	// ScheduleRecord is one stop of a schedule.
	ScheduleRecord struct {
		Station         string          `json:"station,omitempty"`
		WaitConditions  []WaitCondition `json:"wait_conditions,omitempty"`
		Temporary       bool            `json:"temporary,omitempty"`
		AllowsUnloading *bool           `json:"allows_unloading,omitempty"`
	}

	// ScheduleInterrupt redirects a train when its conditions hold.
	ScheduleInterrupt struct {
		Name            string           `json:"name"`
		Conditions      []WaitCondition  `json:"conditions,omitempty"`
		Targets         []ScheduleRecord `json:"targets,omitempty"`
		InsideInterrupt bool             `json:"inside_interrupt,omitempty"`
	}

	// WaitCondition is one departure condition. Which of the optional
	// members is set depends on Type.
	WaitCondition struct {
		Type        string `json:"type"`
		CompareType string `json:"compare_type,omitempty"`

		Ticks   *uint32  `json:"ticks,omitempty"`
		Damage  *uint32  `json:"damage,omitempty"`
		Station string   `json:"station,omitempty"`
		Planet  *NameRef `json:"planet,omitempty"`

		Circuit *CircuitCondition `json:"-"`
		Request *RequestCondition `json:"-"`
	}

	waitConditionWire struct {
		Type        string          `json:"type"`
		CompareType string          `json:"compare_type,omitempty"`
		Ticks       *uint32         `json:"ticks,omitempty"`
		Damage      *uint32         `json:"damage,omitempty"`
		Station     string          `json:"station,omitempty"`
		Planet      *NameRef        `json:"planet,omitempty"`
		Condition   json.RawMessage `json:"condition,omitempty"`
	}
)

// UnloadingAllowed reports whether the stop allows unloading.
func (r ScheduleRecord) UnloadingAllowed() bool {
	if r.AllowsUnloading == nil {
		return true
	}
	return *r.AllowsUnloading
}

// Compare returns the combinator joining this condition to the previous one.
func (w WaitCondition) Compare() string {
	if w.CompareType == "" {
		return defaultWaitCompareType
	}
	return w.CompareType
}

// UnmarshalJSON decodes the condition object according to the wait type.
func (w *WaitCondition) UnmarshalJSON(data []byte) error {
	var wire waitConditionWire
	if err := jsonstrict.Decode(data, &wire); err != nil {
		return err
	}
	*w = WaitCondition{
		Type:        wire.Type,
		CompareType: wire.CompareType,
		Ticks:       wire.Ticks,
		Damage:      wire.Damage,
		Station:     wire.Station,
		Planet:      wire.Planet,
	}
	if len(wire.Condition) == 0 {
		return nil
	}

	switch wire.Type {
	case waitCircuit, waitItemCount, waitFluidCount, waitFuelItemCountAll, waitFuelItemCountAny:
		w.Circuit = new(CircuitCondition)
		if err := jsonstrict.Decode(wire.Condition, w.Circuit); err != nil {
			return jsonstrict.WithPath(err, "condition")
		}
	case waitRequestSatisfied, waitRequestNotSatisfied:
		w.Request = new(RequestCondition)
		if err := jsonstrict.Decode(wire.Condition, w.Request); err != nil {
			return jsonstrict.WithPath(err, "condition")
		}
	default:
		return fmt.Errorf("wait condition %q does not take a condition", wire.Type)
	}
	return nil
}

// MarshalJSON writes the condition object back under "condition".
func (w WaitCondition) MarshalJSON() ([]byte, error) {
	wire := waitConditionWire{
		Type:        w.Type,
		CompareType: w.CompareType,
		Ticks:       w.Ticks,
		Damage:      w.Damage,
		Station:     w.Station,
		Planet:      w.Planet,
	}
	var err error
	switch {
	case w.Circuit != nil:
		wire.Condition, err = json.Marshal(w.Circuit)
	case w.Request != nil:
		wire.Condition, err = json.Marshal(w.Request)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// References collects the signals, items and planets the condition names.
func (w WaitCondition) References() refs.Set {
	ids := refs.Of(w.Circuit)
	ids.Merge(refs.Of(w.Request))
	if w.Planet != nil && w.Type == waitAnyPlanetImportZero {
		ids.Insert(refs.SpaceLocation, w.Planet.Name)
	}
	return ids
}

// References collects the references of every wait condition.
func (r ScheduleRecord) References() refs.Set {
	return collectSlice(r.WaitConditions)
}

// References collects the references of the conditions and targets.
func (i ScheduleInterrupt) References() refs.Set {
	ids := collectSlice(i.Conditions)
	ids.Merge(collectSlice(i.Targets))
	return ids
}

// References collects the references of every record and interrupt.
func (s Schedule) References() refs.Set {
	ids := collectSlice(s.Schedule.Records)
	ids.Merge(collectSlice(s.Schedule.Interrupts))
	return ids
}

func collectSlice[T refs.Collector](nodes []T) refs.Set {
	ids := refs.New()
	for _, n := range nodes {
		ids.Merge(n.References())
	}
	return ids
}
