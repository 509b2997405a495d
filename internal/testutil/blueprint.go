// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// BlueprintJSON returns a blueprint document labelled label whose entities
// are the given JSON member lists, for example `"name": "kr-loader"`.
// Entity numbers and positions are filled in.
func BlueprintJSON(label string, entities ...string) string {
	return `{"blueprint": ` + blueprintBody(label, entities) + `}`
}

// BookJSON returns a blueprint book whose children are the given documents,
// keyed 1..n, with the first child active.
func BookJSON(label string, children ...string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = fmt.Sprintf("%q: %s", fmt.Sprint(i+1), c)
	}
	return fmt.Sprintf(`{"blueprint_book": {"item": "blueprint-book", "label": %q, "version": 562949954076673, "active_index": 1, "blueprints": {%s}}}`,
		label, strings.Join(parts, ", "))
}

// MarkerTags returns an entity member list carrying explicit mod metadata.
func MarkerTags(name string, mods map[string]string) string {
	pairs := make([]string, 0, len(mods))
	for _, k := range slices.Sorted(maps.Keys(mods)) {
		pairs = append(pairs, fmt.Sprintf("%q: %q", k, mods[k]))
	}
	return fmt.Sprintf(`"name": %q, "tags": {"bp_meta_info": {"mods": {%s}}}`, name, strings.Join(pairs, ", "))
}

func blueprintBody(label string, entities []string) string {
	parts := make([]string, len(entities))
	for i, e := range entities {
		parts[i] = fmt.Sprintf(`{"entity_number": %d, "position": {"x": %d.5, "y": 0.5}, %s}`, i+1, i, e)
	}
	return fmt.Sprintf(`{"item": "blueprint", "label": %q, "version": 562949954076673, "entities": [%s]}`,
		label, strings.Join(parts, ", "))
}
