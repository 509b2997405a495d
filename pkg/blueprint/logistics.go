// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"github.com/fgardt/factorio-scanner-sub002/pkg/indexed"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

type (
	// LogisticSections is the request configuration of a logistic container,
	// character or constant combinator.
	LogisticSections struct {
		Sections           indexed.Vec[LogisticSection] `json:"sections,omitzero"`
		TrashNotRequested  bool                         `json:"trash_not_requested,omitempty"`
		RequestFromBuffers bool                         `json:"request_from_buffers,omitempty"`
	}

	// LogisticSection is one section of requests. Active defaults to true
	// and Multiplier to 1 when absent.
	LogisticSection struct {
		Active     *bool                       `json:"active,omitempty"`
		Filters    indexed.Vec[LogisticFilter] `json:"filters,omitzero"`
		Group      string                      `json:"group,omitempty"`
		Multiplier *float64                    `json:"multiplier,omitempty"`
	}

	// LogisticFilter requests or outputs a single signal.
	LogisticFilter struct {
		Type                 SignalType `json:"type,omitempty"`
		Name                 string     `json:"name,omitempty"`
		Quality              string     `json:"quality,omitempty"`
		Comparator           string     `json:"comparator,omitempty"`
		Count                int32      `json:"count,omitempty"`
		MaxCount             *uint32    `json:"max_count,omitempty"`
		MinimumDeliveryCount *uint32    `json:"minimum_delivery_count,omitempty"`
		ImportFrom           string     `json:"import_from,omitempty"`
	}
)

// References collects the references of every section.
func (l LogisticSections) References() refs.Set {
	return refs.CollectAll(l.Sections.Values())
}

// IsActive reports whether the section is enabled.
func (s LogisticSection) IsActive() bool { return s.Active == nil || *s.Active }

// Factor returns the section multiplier.
func (s LogisticSection) Factor() float64 {
	if s.Multiplier == nil {
		return 1
	}
	return *s.Multiplier
}

// References collects the references of every filter in the section.
func (s LogisticSection) References() refs.Set {
	return refs.CollectAll(s.Filters.Values())
}

// References records the filtered signal, its quality and the space
// location the request imports from.
func (f LogisticFilter) References() refs.Set {
	ids := SignalID{Type: f.Type, Name: f.Name, Quality: f.Quality}.References()
	ids.Insert(refs.SpaceLocation, f.ImportFrom)
	return ids
}
