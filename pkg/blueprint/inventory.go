// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"encoding/json"

	"github.com/fgardt/factorio-scanner-sub002/pkg/indexed"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

type (
	// ItemFilter restricts an inventory slot or splitter output to an item.
	ItemFilter struct {
		Name       string `json:"name,omitempty"`
		Quality    string `json:"quality,omitempty"`
		Comparator string `json:"comparator,omitempty"`
	}

	// InventoryWithFilters is an inventory with slot filters and a limit bar.
	InventoryWithFilters struct {
		Bar     *uint16                 `json:"bar,omitempty"`
		Filters indexed.Vec[ItemFilter] `json:"filters,omitzero"`
	}

	// InsertPlan asks construction robots to deliver an item into an entity.
	InsertPlan struct {
		ID    ItemRef        `json:"id"`
		Items InsertLocation `json:"items"`
	}

	// ItemRef names an item at a quality.
	ItemRef struct {
		Name    string `json:"name"`
		Quality string `json:"quality,omitempty"`
	}

	// InsertLocation holds where the planned items go.
	InsertLocation struct {
		InInventory []InventoryPosition `json:"in_inventory,omitempty"`
		GridCount   uint32              `json:"grid_count,omitempty"`
	}

	// InventoryPosition is a slot in one of an entity's inventories.
	InventoryPosition struct {
		Inventory uint32 `json:"inventory"`
		Stack     uint32 `json:"stack"`
		Count     uint32 `json:"count,omitempty"`
	}

	// EquipmentPlacement is a piece of equipment inside an entity's grid.
	EquipmentPlacement struct {
		Equipment ItemRef `json:"equipment"`
		// Position is kept verbatim; the game writes both {x, y} and [x, y].
		Position json.RawMessage `json:"position,omitempty"`
	}

	// InfinitySettings configures an infinity chest or pipe. Chests use
	// Filters, pipes use the fluid fields.
	InfinitySettings struct {
		Filters               indexed.Vec[InfinityFilter] `json:"filters,omitzero"`
		RemoveUnfilteredItems bool                        `json:"remove_unfiltered_items,omitempty"`
		Name                  string                      `json:"name,omitempty"`
		Percentage            *float64                    `json:"percentage,omitempty"`
		Temperature           *float64                    `json:"temperature,omitempty"`
		Mode                  string                      `json:"mode,omitempty"`
	}

	// InfinityFilter keeps an item stocked at a count.
	InfinityFilter struct {
		Name    string `json:"name"`
		Quality string `json:"quality,omitempty"`
		Count   uint32 `json:"count,omitempty"`
		Mode    string `json:"mode,omitempty"`
	}

	// EntityFilter is the filter setting of a splitter or a mining drill.
	// Splitters use the item fields, mining drills list resource entities.
	EntityFilter struct {
		Name       string               `json:"name,omitempty"`
		Quality    string               `json:"quality,omitempty"`
		Comparator string               `json:"comparator,omitempty"`
		Filters    indexed.Vec[NameRef] `json:"filters,omitzero"`
		Mode       string               `json:"mode,omitempty"`
	}
)

// References records the filtered item and quality.
func (f ItemFilter) References() refs.Set {
	ids := refs.New()
	ids.Insert(refs.Item, f.Name)
	ids.Insert(refs.Quality, f.Quality)
	return ids
}

// References collects the references of every slot filter.
func (i InventoryWithFilters) References() refs.Set {
	return refs.CollectAll(i.Filters.Values())
}

// References records the planned item and its quality.
func (p InsertPlan) References() refs.Set { return p.ID.itemReferences() }

// References records the equipment and its quality.
func (e EquipmentPlacement) References() refs.Set {
	ids := refs.New()
	ids.Insert(refs.Equipment, e.Equipment.Name)
	ids.Insert(refs.Quality, e.Equipment.Quality)
	return ids
}

// References records the stocked items or the piped fluid.
func (s InfinitySettings) References() refs.Set {
	ids := refs.CollectAll(s.Filters.Values())
	ids.Insert(refs.Fluid, s.Name)
	return ids
}

// References records the stocked item and quality.
func (f InfinityFilter) References() refs.Set {
	return ItemRef{Name: f.Name, Quality: f.Quality}.itemReferences()
}

// References records the splitter item or the mined resources.
func (f EntityFilter) References() refs.Set {
	ids := ItemFilter{Name: f.Name, Quality: f.Quality}.References()
	ids.Merge(namesIn(refs.Entity, f.Filters))
	return ids
}

func (r ItemRef) itemReferences() refs.Set {
	ids := refs.New()
	ids.Insert(refs.Item, r.Name)
	ids.Insert(refs.Quality, r.Quality)
	return ids
}
