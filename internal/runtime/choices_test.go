package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/internal/testutils"
	"github.com/xdsai/persephone/pkg/domain"
)

func choiceTexts(choices []domain.Choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Text
	}
	return out
}

func TestVisibleChoices_SkipsDanglingAndFailing(t *testing.T) {
	rec := &testutils.DiagnosticRecorder{}
	e := runtime.NewEngine(testutils.NeonFixture(t), runtime.WithLifecycleHooks(rec.Hooks()))

	visible := e.VisibleChoices()

	assert.Equal(t, []string{"Jack in", "Call Johnny"}, choiceTexts(visible))
	for _, c := range visible {
		assert.True(t, e.Graph().Has(c.To))
	}
	require.Len(t, rec.All(), 1)
	assert.Equal(t, domain.DiagDanglingTarget, rec.All()[0].Kind)
	assert.Equal(t, "nowhere", rec.All()[0].Value)
}

func TestRenderableChoices_LockedEntries(t *testing.T) {
	e := runtime.NewEngine(testutils.NeonFixture(t))

	rendered := e.RenderableChoices()

	require.Len(t, rendered, 3)
	assert.Equal(t, "Jack in", rendered[0].Choice.Text)
	assert.True(t, rendered[0].Enabled)
	assert.Equal(t, 0, rendered[0].Index)
	assert.Equal(t, "Call Johnny", rendered[1].Choice.Text)
	assert.Equal(t, 1, rendered[1].Index)

	bribe := rendered[2]
	assert.Equal(t, "Bribe the guard", bribe.Choice.Text)
	assert.False(t, bribe.Enabled)
	assert.Equal(t, "You need 10 credits.", bribe.Reason)
	assert.Equal(t, -1, bribe.Index)
}

func TestRenderableChoices_LockedHiddenWhenStoryDisablesThem(t *testing.T) {
	story := testutils.NeonFixture(t)
	story.Meta.UX.ShowLockedChoices = false
	e := runtime.NewEngine(story)

	rendered := e.RenderableChoices()

	require.Len(t, rendered, 2)
	for _, r := range rendered {
		assert.True(t, r.Enabled)
	}
}

func TestRenderableChoices_DefaultLockedReason(t *testing.T) {
	story := &domain.Story{
		Start: "a",
		Meta:  domain.Meta{UX: domain.UX{ShowLockedChoices: true}},
		Nodes: []domain.Node{
			{ID: "a", Choices: []domain.Choice{{
				Text:         "Hack",
				To:           "b",
				Conditions:   []domain.Condition{{Var: "cyber", Op: ">", Value: 3}},
				ShowIfLocked: true,
			}}},
			{ID: "b"},
		},
	}

	rendered := runtime.NewEngine(story).RenderableChoices()

	require.Len(t, rendered, 1)
	assert.Equal(t, domain.DefaultLockedReason, rendered[0].Reason)
}

// groupStory has a "g" group whose done member fails its condition while the
// available member passes.
func groupStory(showDone bool) *domain.Story {
	return &domain.Story{
		Start: "a",
		Meta:  domain.Meta{UX: domain.UX{ShowLockedChoices: true}},
		Nodes: []domain.Node{
			{ID: "a", Choices: []domain.Choice{
				{Text: "before", To: "b"},
				{
					Text: "ask", To: "b", Slug: "g", Variant: domain.VariantAvailable,
				},
				{
					Text: "asked", To: "b", Slug: "g", Variant: domain.VariantDone,
					Conditions:   []domain.Condition{{Var: "asked", Op: "=", Value: true}},
					ShowIfLocked: showDone,
				},
				{Text: "after", To: "b"},
			}},
			{ID: "b"},
		},
	}
}

func renderedTexts(rendered []runtime.RenderedChoice) []string {
	out := make([]string, len(rendered))
	for i, r := range rendered {
		out[i] = r.Choice.Text
	}
	return out
}

func TestRenderableChoices_GroupCollapse(t *testing.T) {
	t.Run("visible done member wins", func(t *testing.T) {
		rendered := runtime.NewEngine(groupStory(true)).RenderableChoices()

		assert.Equal(t, []string{"before", "asked", "after"}, renderedTexts(rendered))
		assert.False(t, rendered[1].Enabled)
	})

	t.Run("available member wins when done is hidden", func(t *testing.T) {
		rendered := runtime.NewEngine(groupStory(false)).RenderableChoices()

		assert.Equal(t, []string{"before", "ask", "after"}, renderedTexts(rendered))
		assert.True(t, rendered[1].Enabled)
		assert.Equal(t, 1, rendered[1].Index)
		assert.Equal(t, 2, rendered[2].Index)
	})
}

func TestRenderableChoices_GroupTieBreaks(t *testing.T) {
	story := &domain.Story{
		Start: "a",
		Meta:  domain.Meta{UX: domain.UX{ShowLockedChoices: true}},
		Nodes: []domain.Node{
			{ID: "a", Choices: []domain.Choice{
				{Text: "locked first", To: "b", Slug: "g", ShowIfLocked: true,
					Conditions: []domain.Condition{{Var: "heat", Op: ">", Value: 9}}},
				{Text: "open second", To: "b", Slug: "g"},
				{Text: "open third", To: "b", Slug: "g"},
				{Text: "solo", To: "b"},
				{Text: "locked variant", To: "b", Slug: "h", Variant: domain.VariantLocked},
				{Text: "unknown variant", To: "b", Slug: "h", Variant: "mystery"},
			}},
			{ID: "b"},
		},
	}

	rendered := runtime.NewEngine(story).RenderableChoices()

	assert.Equal(t, []string{"open second", "solo", "locked variant"}, renderedTexts(rendered),
		"enabled beats disabled on a precedence tie, then the lowest index wins")
}

func TestVisibleChoices_EndingHasNone(t *testing.T) {
	story := &domain.Story{
		Start: "end",
		Nodes: []domain.Node{{ID: "end", Type: domain.NodeTypeEnding, EndingID: "x", Title: "X"}},
	}
	e := runtime.NewEngine(story)

	assert.True(t, e.IsEnding())
	assert.Empty(t, e.VisibleChoices())
	assert.Empty(t, e.RenderableChoices())
}

func TestVisibleChoices_UnknownOperatorIsReported(t *testing.T) {
	rec := &testutils.DiagnosticRecorder{}
	story := &domain.Story{
		Start: "a",
		Nodes: []domain.Node{
			{ID: "a", Choices: []domain.Choice{
				{Text: "weird", To: "b", Conditions: []domain.Condition{{Var: "heat", Op: "=~", Value: 0}}},
				{Text: "fine", To: "b"},
			}},
			{ID: "b"},
		},
	}
	e := runtime.NewEngine(story, runtime.WithLifecycleHooks(rec.Hooks()))

	assert.Equal(t, []string{"fine"}, choiceTexts(e.VisibleChoices()))
	assert.Equal(t, []domain.DiagnosticKind{domain.DiagUnknownOperator}, rec.Kinds())
}

// rivalStory has a group whose members both pass, so collapse hides a
// choice that VisibleChoices still lists.
func rivalStory() *domain.Story {
	return &domain.Story{
		Start: "a",
		Nodes: []domain.Node{
			{ID: "a", Choices: []domain.Choice{
				{Text: "ask", To: "ask", Slug: "g", Variant: domain.VariantAvailable},
				{Text: "already asked", To: "b", Slug: "g", Variant: domain.VariantDone},
				{Text: "leave", To: "b"},
			}},
			{ID: "ask"},
			{ID: "b"},
		},
	}
}

func TestChooseOffered_RejectsCollapsedVariant(t *testing.T) {
	rec := &testutils.DiagnosticRecorder{}
	e := runtime.NewEngine(rivalStory(), runtime.WithLifecycleHooks(rec.Hooks()))

	assert.Len(t, e.VisibleChoices(), 3)
	assert.Equal(t, []string{"already asked", "leave"}, renderedTexts(e.RenderableChoices()))
	assert.Equal(t, []int{1, 2}, e.OfferedIndices())

	assert.False(t, e.ChooseOffered(0), "the hidden variant cannot be taken")
	assert.Equal(t, "a", e.CurrentID())
	assert.Equal(t, []domain.DiagnosticKind{domain.DiagInvalidChoice}, rec.Kinds())

	require.True(t, e.ChooseOffered(1))
	assert.Equal(t, "b", e.CurrentID())
}

func TestChooseOffered_OutOfRange(t *testing.T) {
	e := runtime.NewEngine(rivalStory())
	assert.False(t, e.ChooseOffered(-1))
	assert.False(t, e.ChooseOffered(3))
	assert.Equal(t, "a", e.CurrentID())
}
