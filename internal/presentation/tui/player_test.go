package tui_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone"
	"github.com/xdsai/persephone/internal/presentation/tui"
	"github.com/xdsai/persephone/internal/testutils"
	"github.com/xdsai/persephone/pkg/adapters/memory"
	"github.com/xdsai/persephone/pkg/domain"
)

func play(t *testing.T, input string, opts ...tui.PlayerOption) (*persephone.Engine, string) {
	t.Helper()
	engine := persephone.New(testutils.NeonFixture(t))
	var out bytes.Buffer
	p := tui.NewPlayer(engine, strings.NewReader(input), &out, opts...)
	require.NoError(t, p.Run(context.Background()))
	return engine, out.String()
}

func TestPlayer_ShowsNodeAndChoices(t *testing.T) {
	_, out := play(t, "")

	assert.Contains(t, out, "Rain on chrome.")
	assert.Contains(t, out, "  1. Jack in")
	assert.Contains(t, out, "  2. Call Johnny")
	assert.Contains(t, out, "Bribe the guard (You need 10 credits.)")
	assert.NotContains(t, out, "Follow the static")
	assert.Contains(t, out, "heat 0 | cyber 0 | empathy 0 | credits 5 | corpRep 0")
	assert.NotContains(t, out, "> ", "no prompt when not interactive")
}

func TestPlayer_NavigatesAndGoesBack(t *testing.T) {
	engine, out := play(t, "1\n1\nback\nlore\nq\n2\n")

	assert.Equal(t, "hub", engine.CurrentID())
	assert.Contains(t, out, "She counts your chips.")
	assert.Contains(t, out, "Ghost Protocol: A backdoor older than the city.")
	assert.Equal(t, []string{"intro"}, engine.History(), "input after quit is ignored")
}

func TestPlayer_RejectsBadInput(t *testing.T) {
	engine, out := play(t, "9\nfly\nb\n")

	assert.Equal(t, "intro", engine.CurrentID())
	assert.Contains(t, out, "That choice is not available.")
	assert.Contains(t, out, "Unknown command.")
	assert.Contains(t, out, "There is no way back.")
}

func TestPlayer_HiddenCommands(t *testing.T) {
	engine, out := play(t, "/ghost\n2\n/GH\n")

	assert.Contains(t, out, "Nothing answers.")
	assert.Equal(t, "vault", engine.CurrentID())
	assert.Contains(t, out, "Cold air and old money.")
}

func TestPlayer_EndingAndReset(t *testing.T) {
	engine, out := play(t, "1\n2\n1\nreset\n")

	assert.Contains(t, out, "THE END: Burnout")
	assert.Contains(t, out, "Type reset to play again")
	assert.Equal(t, "intro", engine.CurrentID())
	assert.Equal(t, 0, engine.State().Heat)
}

func TestPlayer_NumbersOnlyOfferedChoices(t *testing.T) {
	story := &domain.Story{
		Start: "bar",
		Nodes: []domain.Node{
			{ID: "bar", Text: "Smoke and neon.", Choices: []domain.Choice{
				{Text: "ask", To: "fixer", Slug: "fixer", Variant: domain.VariantAvailable},
				{Text: "already asked", To: "fixer", Slug: "fixer", Variant: domain.VariantDone},
				{Text: "leave", To: "street"},
			}},
			{ID: "fixer", Text: "She shrugs."},
			{ID: "street", Text: "Wet asphalt."},
		},
	}
	engine := persephone.New(story)
	var out bytes.Buffer
	require.NoError(t, tui.NewPlayer(engine, strings.NewReader("3\n2\n"), &out).Run(context.Background()))

	assert.Contains(t, out.String(), "  1. already asked\n  2. leave\n")
	assert.NotContains(t, out.String(), "  3.")
	assert.Contains(t, out.String(), "That choice is not available.")
	assert.Equal(t, "street", engine.CurrentID())
}

func TestPlayer_SaveAndLoad(t *testing.T) {
	store := memory.NewStore()

	_, out := play(t, "load\n1\nsave\n", tui.WithStore(store))
	assert.Contains(t, out, "No usable save. Starting over.")
	assert.Contains(t, out, "Run saved.")

	engine, _ := play(t, "load\n", tui.WithStore(store))
	assert.Equal(t, "hub", engine.CurrentID())
	assert.Equal(t, 2, engine.State().Cyber)
}

func TestPlayer_SaveWithoutStore(t *testing.T) {
	_, out := play(t, "save\n")
	assert.Contains(t, out, "Saving is not configured.")
}

func TestPlayer_InteractivePromptAndRenderer(t *testing.T) {
	render := func(md string) (string, error) { return "<<" + md + ">>", nil }

	_, out := play(t, "help\n", tui.WithInteractive(true), tui.WithRenderer(render))

	assert.Contains(t, out, "<<Rain on chrome.>>")
	assert.Contains(t, out, "> ")
	assert.Contains(t, out, "/<name>")
}

func TestPlayer_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := tui.NewPlayer(persephone.New(testutils.NeonFixture(t)), strings.NewReader("1\n"), &bytes.Buffer{})
	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
}

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	tui.PrintBanner(&out, "Neon Debt", "Persephone")

	assert.Contains(t, out.String(), "Neon Debt")
	assert.Contains(t, out.String(), "as Persephone")
}
