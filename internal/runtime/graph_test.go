package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/internal/testutils"
	"github.com/xdsai/persephone/pkg/domain"
)

func TestGraph_IndexesInDeclarationOrder(t *testing.T) {
	var diags []domain.Diagnostic
	g := runtime.NewGraph([]domain.Node{
		{ID: "a", Text: "first"},
		{ID: "", Text: "no id"},
		{ID: "b"},
		{ID: "a", Text: "shadowed"},
	}, func(d domain.Diagnostic) { diags = append(diags, d) })

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"a", "b"}, g.IDs())
	assert.Equal(t, "a", g.First())
	assert.True(t, g.Has("b"))
	assert.False(t, g.Has("c"))

	n, ok := g.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", n.Text, "first declaration wins")

	require.Len(t, diags, 2)
	assert.Equal(t, domain.DiagInvalidNode, diags[0].Kind)
	assert.Equal(t, domain.DiagDuplicateNode, diags[1].Kind)
}

func TestGraph_Empty(t *testing.T) {
	g := runtime.NewGraph(nil, nil)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, "", g.First())
	_, ok := g.Get("")
	assert.False(t, ok)
}

func TestEngine_MissingStartFallsBackToFirstNode(t *testing.T) {
	rec := &testutils.DiagnosticRecorder{}
	story := &domain.Story{
		Start: "ghost",
		Nodes: []domain.Node{{ID: "one"}, {ID: "two"}},
	}

	e := runtime.NewEngine(story, runtime.WithLifecycleHooks(rec.Hooks()))

	assert.Equal(t, "one", e.CurrentID())
	assert.Equal(t, "one", e.StartID())
	assert.Equal(t, []domain.DiagnosticKind{domain.DiagMissingStart}, rec.Kinds())
}

func TestEngine_EmptyGraphDoesNotFail(t *testing.T) {
	e := runtime.NewEngine(nil)

	assert.Equal(t, "", e.CurrentID())
	node := e.Current()
	assert.False(t, node.IsEnding())
	assert.Empty(t, node.Choices)
	assert.NotEmpty(t, node.Text, "placeholder text")
	assert.Empty(t, e.VisibleChoices())
	assert.False(t, e.Choose(0))
}

func TestEngine_StartsRoamingWithoutDeclaredState(t *testing.T) {
	e := runtime.NewEngine(&domain.Story{Start: "a", Nodes: []domain.Node{{ID: "a"}}})
	assert.True(t, e.State().CanRoam)
	assert.NotNil(t, e.State().Flags)
}
