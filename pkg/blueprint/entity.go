// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"encoding/json"
	"strings"

	"github.com/fgardt/factorio-scanner-sub002/pkg/anybasic"
	"github.com/fgardt/factorio-scanner-sub002/pkg/indexed"
	"github.com/fgardt/factorio-scanner-sub002/pkg/jsonstrict"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

type (
	// Entity is a placed entity. Entities are decoded leniently: settings of
	// entity kinds without a modelled field are kept verbatim in Extra and
	// written back unchanged.
	Entity struct {
		EntityNumber        uint32                `json:"entity_number"`
		Name                string                `json:"name"`
		Position            Position              `json:"position"`
		Direction           uint8                 `json:"direction,omitempty"`
		Mirror              bool                  `json:"mirror,omitempty"`
		Quality             string                `json:"quality,omitempty"`
		Items               []InsertPlan          `json:"items,omitempty"`
		Tags                *anybasic.Table       `json:"tags,omitempty"`
		BurnerFuelInventory *InventoryWithFilters `json:"burner_fuel_inventory,omitempty"`

		Recipe           string                  `json:"recipe,omitempty"`
		RecipeQuality    string                  `json:"recipe_quality,omitempty"`
		Filters          indexed.Vec[ItemFilter] `json:"filters,omitzero"`
		Filter           *EntityFilter           `json:"filter,omitempty"`
		RequestFilters   *LogisticSections       `json:"request_filters,omitempty"`
		ChunkFilter      indexed.Vec[NameRef]    `json:"chunk-filter,omitzero"`
		PriorityList     indexed.Vec[NameRef]    `json:"priority-list,omitzero"`
		FluidFilter      string                  `json:"fluid_filter,omitempty"`
		Icon             *SignalID               `json:"icon,omitempty"`
		Grid             []EquipmentPlacement    `json:"grid,omitempty"`
		Inventory        *InventoryWithFilters   `json:"inventory,omitempty"`
		TrunkInventory   *InventoryWithFilters   `json:"trunk_inventory,omitempty"`
		AmmoInventory    *InventoryWithFilters   `json:"ammo_inventory,omitempty"`
		InfinitySettings *InfinitySettings       `json:"infinity_settings,omitempty"`
		ControlBehavior  *ControlBehavior        `json:"control_behavior,omitempty"`

		Extra map[string]json.RawMessage `json:"-"`
	}

	// ControlBehavior is the circuit network configuration of an entity.
	// Conditions and sections are modelled, everything else is kept in Extra.
	ControlBehavior struct {
		CircuitCondition  *CircuitCondition `json:"circuit_condition,omitempty"`
		LogisticCondition *CircuitCondition `json:"logistic_condition,omitempty"`
		Sections          *LogisticSections `json:"sections,omitempty"`

		Extra map[string]json.RawMessage `json:"-"`
	}
)

// QualityOrNormal returns the entity quality, defaulting to normal.
func (e Entity) QualityOrNormal() string {
	if e.Quality == "" {
		return NormalQuality
	}
	return e.Quality
}

// HasTag reports whether the entity carries a tag named key.
func (e Entity) HasTag(key string) bool {
	if e.Tags == nil {
		return false
	}
	_, ok := e.Tags.Get(key)
	return ok
}

// UnmarshalJSON decodes the modelled fields strictly and keeps the rest.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	var p plain
	extra, err := jsonstrict.DecodeWithExtras(data, &p)
	if err != nil {
		return err
	}
	p.Extra = extra
	*e = Entity(p)
	return nil
}

// MarshalJSON writes the modelled fields followed by the kept ones.
func (e Entity) MarshalJSON() ([]byte, error) {
	type plain Entity
	return jsonstrict.MarshalWithExtras(plain(e), e.Extra)
}

// References collects every prototype the entity and its settings name.
// Tag keys are recorded under other.
func (e Entity) References() refs.Set {
	ids := refs.New()
	ids.Insert(refs.Entity, e.Name)
	ids.Insert(refs.Quality, e.QualityOrNormal())
	ids.Merge(collectSlice(e.Items))
	ids.Merge(refs.Of(e.BurnerFuelInventory))

	ids.Insert(refs.Recipe, e.Recipe)
	ids.Insert(refs.Quality, e.RecipeQuality)
	ids.Merge(refs.CollectAll(e.Filters.Values()))
	ids.Merge(refs.Of(e.Filter))
	ids.Merge(refs.Of(e.RequestFilters))
	ids.Merge(namesIn(refs.AsteroidChunk, e.ChunkFilter))
	ids.Merge(namesIn(refs.Entity, e.PriorityList))
	ids.Insert(refs.Fluid, e.FluidFilter)
	ids.Merge(refs.Of(e.Icon))
	ids.Merge(collectSlice(e.Grid))
	ids.Merge(refs.Of(e.Inventory))
	ids.Merge(refs.Of(e.TrunkInventory))
	ids.Merge(refs.Of(e.AmmoInventory))
	ids.Merge(refs.Of(e.InfinitySettings))
	ids.Merge(refs.Of(e.ControlBehavior))
	ids.Merge(signalReferences(e.Extra))

	if e.Tags != nil {
		for _, key := range e.Tags.Keys() {
			ids.Insert(refs.Other, key)
		}
	}
	return ids
}

// UnmarshalJSON decodes the modelled fields strictly and keeps the rest.
func (c *ControlBehavior) UnmarshalJSON(data []byte) error {
	type plain ControlBehavior
	var p plain
	extra, err := jsonstrict.DecodeWithExtras(data, &p)
	if err != nil {
		return err
	}
	p.Extra = extra
	*c = ControlBehavior(p)
	return nil
}

// MarshalJSON writes the modelled fields followed by the kept ones.
func (c ControlBehavior) MarshalJSON() ([]byte, error) {
	type plain ControlBehavior
	return jsonstrict.MarshalWithExtras(plain(c), c.Extra)
}

// References collects the conditions, sections and every signal found in
// the kept settings.
func (c ControlBehavior) References() refs.Set {
	ids := refs.Of(c.CircuitCondition)
	ids.Merge(refs.Of(c.LogisticCondition))
	ids.Merge(refs.Of(c.Sections))
	ids.Merge(signalReferences(c.Extra))
	return ids
}

// signalReferences scans unmodelled settings for signal objects. A signal
// is an object with a name stored under a key ending in "signal" or
// "signal_id", such as output_signal or icon_signal_id.
func signalReferences(extra map[string]json.RawMessage) refs.Set {
	ids := refs.New()
	for key, raw := range extra {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		collectSignals(key, v, &ids)
	}
	return ids
}

func collectSignals(key string, v any, ids *refs.Set) {
	switch v := v.(type) {
	case map[string]any:
		if strings.HasSuffix(key, "signal") || strings.HasSuffix(key, "signal_id") {
			if sig, ok := signalFromMap(v); ok {
				ids.Merge(sig.References())
			}
			return
		}
		for k, child := range v {
			collectSignals(k, child, ids)
		}
	case []any:
		for _, child := range v {
			collectSignals(key, child, ids)
		}
	}
}

func signalFromMap(m map[string]any) (SignalID, bool) {
	name, _ := m["name"].(string)
	typ, _ := m["type"].(string)
	quality, _ := m["quality"].(string)
	sig := SignalID{Type: SignalType(typ), Name: name, Quality: quality}
	if _, ok := sig.Type.Category(); !ok || name == "" {
		return SignalID{}, false
	}
	return sig, true
}
