// SPDX-License-Identifier: MPL-2.0

package blueprint

import (
	"github.com/fgardt/factorio-scanner-sub002/pkg/indexed"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

// Book is an ordered collection of documents. Entries may be books themselves.
type Book struct {
	Common
	Description string                 `json:"description,omitempty"`
	Icons       indexed.Vec[Icon]      `json:"icons,omitzero"`
	Blueprints  indexed.Vec[*Document] `json:"blueprints,omitzero"`
	// ActiveIndex is the key of the selected entry.
	ActiveIndex uint32 `json:"active_index"`
}

// Active returns the selected entry.
func (b Book) Active() (*Document, bool) {
	doc, ok := b.Blueprints.Get(indexed.Key(b.ActiveIndex))
	return doc, ok && doc != nil
}

// References collects the icons and the references of every entry.
func (b Book) References() refs.Set {
	ids := refs.CollectAll(b.Icons.Values())
	for doc := range b.Blueprints.Values() {
		ids.Merge(doc.References())
	}
	return ids
}
