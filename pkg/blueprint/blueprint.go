// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"encoding/json"
	"fmt"

	"github.com/fgardt/factorio-scanner-sub002/pkg/indexed"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

type (
	// Common holds the fields every document kind carries.
	Common struct {
		Item       string `json:"item"`
		Label      string `json:"label,omitempty"`
		LabelColor *Color `json:"label_color,omitempty"`
		// Version is the game version that wrote the document, packed as
		// four 16 bit parts.
		Version uint64 `json:"version"`
	}

	// Blueprint is a single blueprint.
	Blueprint struct {
		Common
		Description string            `json:"description,omitempty"`
		Icons       indexed.Vec[Icon] `json:"icons,omitzero"`

		SnapToGrid             *Position `json:"snap-to-grid,omitempty"`
		AbsoluteSnapping       bool      `json:"absolute-snapping,omitempty"`
		PositionRelativeToGrid *Position `json:"position-relative-to-grid,omitempty"`

		Entities         []Entity          `json:"entities,omitempty"`
		Tiles            []Tile            `json:"tiles,omitempty"`
		Schedules        []Schedule        `json:"schedules,omitempty"`
		StockConnections []StockConnection `json:"stock_connections,omitempty"`
		Wires            []Wire            `json:"wires,omitempty"`
		Parameters       []Parameter       `json:"parameters,omitempty"`
	}

	// Position is a map position in tiles.
	Position struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// Color is an RGBA colour with components in [0, 1].
	Color struct {
		R float64 `json:"r"`
		G float64 `json:"g"`
		B float64 `json:"b"`
		A float64 `json:"a,omitempty"`
	}

	// Tile is a placed tile.
	Tile struct {
		Name     string   `json:"name"`
		Position Position `json:"position"`
	}

	// Wire connects two circuit or copper connectors: source entity, source
	// connector, target entity, target connector.
	Wire [4]uint32
)

// VersionString renders the packed game version as major.minor.patch.
func (c Common) VersionString() string {
	major := c.Version >> 48
	minor := (c.Version >> 32) & 0xFFFF
	patch := (c.Version >> 16) & 0xFFFF
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// UnmarshalJSON requires exactly four connector values.
func (w *Wire) UnmarshalJSON(data []byte) error {
	var parts []uint32
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != len(w) {
		return fmt.Errorf("wire needs %d values, got %d", len(w), len(parts))
	}
	copy(w[:], parts)
	return nil
}

// References records the tile name.
func (t Tile) References() refs.Set {
	ids := refs.New()
	ids.Insert(refs.Tile, t.Name)
	return ids
}

// References collects the references of the icons, entities, tiles,
// schedules and parameters.
func (b Blueprint) References() refs.Set {
	ids := refs.CollectAll(b.Icons.Values())
	ids.Merge(collectSlice(b.Entities))
	ids.Merge(collectSlice(b.Tiles))
	ids.Merge(collectSlice(b.Schedules))
	ids.Merge(collectSlice(b.Parameters))
	return ids
}

// EntitiesTagged returns the entities carrying a tag named key, in stored order.
func (b Blueprint) EntitiesTagged(key string) []Entity {
	var out []Entity
	for _, e := range b.Entities {
		if e.HasTag(key) {
			out = append(out, e)
		}
	}
	return out
}
