package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/pkg/domain"
)

var testLore = domain.LoreRegistry{
	{Slug: "ghost-protocol", Title: "Ghost Protocol"},
	{Slug: "black-ice", Title: "Black ICE"},
}

func decodeEffects(t *testing.T, raw map[string]any) *domain.Effects {
	t.Helper()
	eff, err := domain.DecodeEffects(raw)
	require.NoError(t, err)
	return eff
}

func TestApplyEffects(t *testing.T) {
	state := domain.NewState()
	state.Heat = 2

	runtime.ApplyEffects(decodeEffects(t, map[string]any{
		"heat":      3,
		"credits":   -5,
		"shortMode": true,
		"met_fixer": true,
		"betrayed":  false,
		"addLore":   []any{"black-ice", "unregistered"},
	}), &state, testLore)

	assert.Equal(t, 5, state.Heat)
	assert.Equal(t, -5, state.Credits)
	assert.True(t, state.ShortMode)
	assert.Equal(t, map[string]bool{"met_fixer": true, "betrayed": false}, state.Flags)
	assert.Equal(t, []string{"black-ice"}, state.LoreDiscoveries, "unregistered slugs are ignored")
}

func TestApplyEffects_LoreIsIdempotent(t *testing.T) {
	state := domain.NewState()
	eff := decodeEffects(t, map[string]any{"addLore": "ghost-protocol"})

	runtime.ApplyEffects(eff, &state, testLore)
	runtime.ApplyEffects(eff, &state, testLore)

	assert.Equal(t, []string{"ghost-protocol"}, state.LoreDiscoveries)
}

func TestApplyEffects_MirroredFlags(t *testing.T) {
	for _, pair := range [][2]string{{"ally_johnny", "ally_gotara"}, {"ally_gotara", "ally_johnny"}} {
		t.Run(pair[0], func(t *testing.T) {
			state := domain.NewState()

			runtime.ApplyEffects(decodeEffects(t, map[string]any{pair[0]: true}), &state, nil)
			assert.Equal(t, true, state.Var(pair[1]))

			runtime.ApplyEffects(decodeEffects(t, map[string]any{pair[0]: false}), &state, nil)
			assert.Equal(t, false, state.Var(pair[1]))
		})
	}
}

func TestApplyEffects_NilIsNoop(t *testing.T) {
	state := domain.NewState()
	before := state.Clone()

	runtime.ApplyEffects(nil, &state, testLore)

	assert.Equal(t, before, state)
}
