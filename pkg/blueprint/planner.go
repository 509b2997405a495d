// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"errors"
	"fmt"

	"github.com/fgardt/factorio-scanner-sub002/pkg/indexed"
	"github.com/fgardt/factorio-scanner-sub002/pkg/jsonstrict"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

// Mapped object types of an upgrade planner.
const (
	MappedEntity MappedType = "entity"
	MappedItem   MappedType = "item"
)

// Decon planner filter modes.
const (
	FilterWhitelist uint8 = 0
	FilterBlacklist uint8 = 1
)

// Decon planner tile selection modes.
const (
	TileSelectionNormal uint8 = iota
	TileSelectionAlways
	TileSelectionNever
	TileSelectionOnly
)

// ErrInvalidPlannerSetting is the sentinel error wrapped by InvalidPlannerSettingError.
var ErrInvalidPlannerSetting = errors.New("invalid planner setting")

type (
	// MappedType is the kind of object an upgrade mapping replaces.
	MappedType string

	// InvalidPlannerSettingError is returned when a planner setting is out of range.
	// It wraps ErrInvalidPlannerSetting for errors.Is() compatibility.
	InvalidPlannerSettingError struct {
		Setting string
		Value   string
	}

	// UpgradePlanner replaces entities or modules with other ones.
	UpgradePlanner struct {
		Common
		Settings *UpgradeSettings `json:"settings,omitempty"`
	}

	// UpgradeSettings holds the mapping table of an upgrade planner.
	UpgradeSettings struct {
		Description string                    `json:"description,omitempty"`
		Icons       indexed.Vec[Icon]         `json:"icons,omitzero"`
		Mappers     indexed.Vec[MappingEntry] `json:"mappers,omitzero"`
	}

	// MappingEntry replaces From with To.
	MappingEntry struct {
		From *MappedValue `json:"from,omitempty"`
		To   *MappedValue `json:"to,omitempty"`
	}

	// MappedValue names the object on one side of a mapping.
	MappedValue struct {
		Type       MappedType `json:"type"`
		Name       string     `json:"name"`
		Quality    string     `json:"quality,omitempty"`
		Comparator string     `json:"comparator,omitempty"`
	}

	// DeconPlanner marks entities and tiles for deconstruction.
	DeconPlanner struct {
		Common
		Settings *DeconSettings `json:"settings,omitempty"`
	}

	// DeconSettings holds the filters of a deconstruction planner.
	DeconSettings struct {
		Description       string                     `json:"description,omitempty"`
		Icons             indexed.Vec[Icon]          `json:"icons,omitzero"`
		EntityFilterMode  uint8                      `json:"entity_filter_mode,omitempty"`
		EntityFilters     indexed.Vec[PlannerFilter] `json:"entity_filters,omitzero"`
		TreesAndRocksOnly bool                       `json:"trees_and_rocks_only,omitempty"`
		TileFilterMode    uint8                      `json:"tile_filter_mode,omitempty"`
		TileSelectionMode uint8                      `json:"tile_selection_mode,omitempty"`
		TileFilters       indexed.Vec[PlannerFilter] `json:"tile_filters,omitzero"`
	}

	// PlannerFilter names an entity or tile a planner acts on.
	PlannerFilter struct {
		Name       string `json:"name"`
		Quality    string `json:"quality,omitempty"`
		Comparator string `json:"comparator,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidPlannerSettingError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Setting, e.Value)
}

// Unwrap returns ErrInvalidPlannerSetting so callers can use errors.Is for classification.
func (e *InvalidPlannerSettingError) Unwrap() error { return ErrInvalidPlannerSetting }

// UnmarshalJSON decodes the value strictly and checks the mapped type.
func (m *MappedValue) UnmarshalJSON(data []byte) error {
	type plain MappedValue
	if err := jsonstrict.Decode(data, (*plain)(m)); err != nil {
		return err
	}
	if m.Type != MappedEntity && m.Type != MappedItem {
		return &InvalidPlannerSettingError{Setting: "mapping type", Value: string(m.Type)}
	}
	return nil
}

// References records the mapped object under its type's category.
func (m MappedValue) References() refs.Set {
	ids := refs.New()
	switch m.Type {
	case MappedEntity:
		ids.Insert(refs.Entity, m.Name)
	case MappedItem:
		ids.Insert(refs.Item, m.Name)
	}
	ids.Insert(refs.Quality, m.Quality)
	return ids
}

// References records both sides of the mapping.
func (e MappingEntry) References() refs.Set {
	ids := refs.Of(e.From)
	ids.Merge(refs.Of(e.To))
	return ids
}

// References collects the icons and every mapping.
func (s UpgradeSettings) References() refs.Set {
	ids := refs.CollectAll(s.Icons.Values())
	ids.Merge(refs.CollectAll(s.Mappers.Values()))
	return ids
}

// References collects the planner settings.
func (p UpgradePlanner) References() refs.Set { return refs.Of(p.Settings) }

// UnmarshalJSON decodes the settings strictly and checks the mode ranges.
func (s *DeconSettings) UnmarshalJSON(data []byte) error {
	type plain DeconSettings
	if err := jsonstrict.Decode(data, (*plain)(s)); err != nil {
		return err
	}
	switch {
	case s.EntityFilterMode > FilterBlacklist:
		return &InvalidPlannerSettingError{Setting: "entity_filter_mode", Value: fmt.Sprint(s.EntityFilterMode)}
	case s.TileFilterMode > FilterBlacklist:
		return &InvalidPlannerSettingError{Setting: "tile_filter_mode", Value: fmt.Sprint(s.TileFilterMode)}
	case s.TileSelectionMode > TileSelectionOnly:
		return &InvalidPlannerSettingError{Setting: "tile_selection_mode", Value: fmt.Sprint(s.TileSelectionMode)}
	}
	return nil
}

// References collects the icons, the filtered entities and the filtered tiles.
func (s DeconSettings) References() refs.Set {
	ids := refs.CollectAll(s.Icons.Values())
	for f := range s.EntityFilters.Values() {
		ids.Insert(refs.Entity, f.Name)
		ids.Insert(refs.Quality, f.Quality)
	}
	for f := range s.TileFilters.Values() {
		ids.Insert(refs.Tile, f.Name)
	}
	return ids
}

// References collects the planner settings.
func (p DeconPlanner) References() refs.Set { return refs.Of(p.Settings) }
