package runtime

import (
	"sort"

	"github.com/xdsai/persephone/pkg/domain"
)

// ApplyEffects mutates state in a fixed order so interacting keys stay deterministic:
//  1. stat deltas, in domain.StatNames order
//  2. shortMode overwrite
//  3. flag writes in key order, mirrored pairs written together
//  4. lore discoveries, registered slugs only and never twice
func ApplyEffects(eff *domain.Effects, state *domain.State, lore domain.LoreRegistry) {
	if eff == nil {
		return
	}

	for _, name := range domain.StatNames {
		if delta, ok := eff.Deltas[name]; ok {
			state.AddStat(name, delta)
		}
	}

	if eff.ShortMode != nil {
		state.ShortMode = *eff.ShortMode
	}

	keys := make([]string, 0, len(eff.Flags))
	for k := range eff.Flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		state.SetFlag(k, eff.Flags[k])
	}

	for _, slug := range eff.AddLore {
		if slug == "" || !lore.Has(slug) || state.HasLore(slug) {
			continue
		}
		state.LoreDiscoveries = append(state.LoreDiscoveries, slug)
	}
}
