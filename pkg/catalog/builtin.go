// SPDX-License-Identifier: MPL-2.0

package catalog

import "sync"

// Package names of the built-in entries.
const (
	Krastorio2       = "Krastorio2"
	SpaceExploration = "space-exploration"
	SeaBlockMetaPack = "SeaBlockMetaPack"
)

var (
	k2 = Requirement{Package: Krastorio2, Version: NewVersion(1, 3, 23)}
	se = Requirement{Package: SpaceExploration, Version: NewVersion(0, 6, 119)}
	sb = Requirement{Package: SeaBlockMetaPack, Version: NewVersion(1, 1, 4)}

	builtinEntries = []Entry{
		{Name: "K2", Aliases: []string{"krastorio"}, Prefix: "kr-", Requires: []Requirement{k2}},
		{Name: "SE", Aliases: []string{"space-exploration"}, Prefix: "se-", Requires: []Requirement{se}},
		{Name: "K2SE", Aliases: []string{"K2+SE", "SEK2", "SE+K2"}, Requires: []Requirement{k2, se}},
		{Name: "SeaBlock", Aliases: []string{"SB"}, Prefix: "sb-", Requires: []Requirement{sb}},
	}

	defaultCatalog = sync.OnceValue(func() *Catalog {
		c, err := New(builtinEntries...)
		if err != nil {
			panic("catalog: invalid built-in entries: " + err.Error())
		}
		return c
	})
)

// Default returns the built-in catalog: K2, SE, K2SE, SeaBlock.
func Default() *Catalog { return defaultCatalog() }
