// SPDX-License-Identifier: MPL-2.0

package deps

import (
	"errors"

	"github.com/fgardt/factorio-scanner-sub002/pkg/anybasic"
	"github.com/fgardt/factorio-scanner-sub002/pkg/blueprint"
	"github.com/fgardt/factorio-scanner-sub002/pkg/catalog"
)

// Metadata keys.
const (
	// MarkerTag is the entity tag carrying author metadata.
	MarkerTag  = "bp_meta_info"
	modsKey    = "mods"
	startupKey = "startup"
)

// ErrNoMetadata is returned when a document carries no marker tag, or the
// marker entity lacks the requested record.
var ErrNoMetadata = errors.New("no metadata record")

// ParseMods reads the explicit package list from the first entity tagged
// with MarkerTag. Every package version must be an X.Y.Z string; the result
// holds exact constraints. Shape errors are *anybasic.ShapeMismatchError.
func ParseMods(doc *blueprint.Document) (*List, error) {
	meta, err := markerTable(doc)
	if err != nil {
		return nil, err
	}
	raw, ok := meta.Get(modsKey)
	if !ok {
		return nil, ErrNoMetadata
	}
	mods, err := asTable(raw, MarkerTag+"."+modsKey)
	if err != nil {
		return nil, err
	}

	list := NewList()
	for name, v := range mods.All() {
		s, ok := v.(anybasic.String)
		if !ok {
			return nil, &anybasic.ShapeMismatchError{
				Path: MarkerTag + "." + modsKey + "." + name,
				Want: string(anybasic.KindString),
				Got:  string(v.Kind()),
			}
		}
		version, err := catalog.ParseVersion(string(s))
		if err != nil {
			return nil, err
		}
		list.Add(name, Exact(version))
	}
	return list, nil
}

// ExplicitMods is ParseMods with every failure reported as absent, so
// foreign or malformed metadata never blocks processing.
func ExplicitMods(doc *blueprint.Document) (*List, bool) {
	list, err := ParseMods(doc)
	if err != nil {
		return nil, false
	}
	return list, true
}

// ParseStartup returns the startup settings table of the first entity
// tagged with MarkerTag. Later tagged entities are never consulted, even if
// the first one is malformed.
func ParseStartup(doc *blueprint.Document) (*anybasic.Table, error) {
	meta, err := markerTable(doc)
	if err != nil {
		return nil, err
	}
	raw, ok := meta.Get(startupKey)
	if !ok {
		return nil, ErrNoMetadata
	}
	return asTable(raw, MarkerTag+"."+startupKey)
}

// StartupSettings is ParseStartup with every failure reported as absent.
func StartupSettings(doc *blueprint.Document) (*anybasic.Table, bool) {
	t, err := ParseStartup(doc)
	if err != nil {
		return nil, false
	}
	return t, true
}

// markerTable finds the first entity carrying MarkerTag, walking the
// blueprints of doc depth first and entities in stored order.
func markerTable(doc *blueprint.Document) (*anybasic.Table, error) {
	for bp := range doc.Blueprints() {
		for _, e := range bp.Entities {
			if e.Tags == nil {
				continue
			}
			if v, ok := e.Tags.Get(MarkerTag); ok {
				return asTable(v, MarkerTag)
			}
		}
	}
	return nil, ErrNoMetadata
}

func asTable(v anybasic.Value, path string) (*anybasic.Table, error) {
	t, err := anybasic.AsTable(v)
	var sme *anybasic.ShapeMismatchError
	if errors.As(err, &sme) {
		sme.Path = path
		return nil, sme
	}
	return t, err
}
