package runtime_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/internal/testutils"
	"github.com/xdsai/persephone/pkg/domain"
)

func TestCodec_RoundTrip(t *testing.T) {
	story := testutils.NeonFixture(t)

	runs := map[string][]int{
		"fresh":     nil,
		"roaming":   {0, 0, 0},
		"shortcut":  {1},
		"locked":    {0, 1},
		"at ending": {1, 1, 0},
	}
	for name, path := range runs {
		t.Run(name, func(t *testing.T) {
			src := runtime.NewEngine(story)
			for _, idx := range path {
				require.True(t, src.Choose(idx))
			}
			payload, err := src.Serialize()
			require.NoError(t, err)

			dst := runtime.NewEngine(story)
			require.True(t, dst.Deserialize(payload))

			assert.Equal(t, src.Snapshot(), dst.Snapshot())
		})
	}
}

func TestCodec_EncodeShape(t *testing.T) {
	payload, err := runtime.Encode(domain.Snapshot{CurrentID: "intro", State: domain.NewState()})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"currentId": "intro",
		"state": {"heat":0,"cyber":0,"empathy":0,"credits":0,"corpRep":0,"shortMode":false,"flags":{},"loreDiscoveries":[],"canRoam":true},
		"history": []
	}`, payload)
}

func TestCodec_StaleSaveFallsBackToStart(t *testing.T) {
	rec := &testutils.DiagnosticRecorder{}
	e := runtime.NewEngine(testutils.NeonFixture(t), runtime.WithLifecycleHooks(rec.Hooks()))

	ok := e.Deserialize(`{"currentId":"demolished","state":{"credits":42,"flags":{"x":true}},"history":["hub","gone","fixer",7]}`)

	require.True(t, ok)
	assert.Equal(t, "intro", e.CurrentID())
	assert.Equal(t, 42, e.State().Credits)
	assert.True(t, e.State().CanRoam, "missing canRoam defaults to true")
	assert.Equal(t, []string{"hub", "fixer"}, e.History())
	assert.Equal(t, []domain.DiagnosticKind{domain.DiagStaleSave}, rec.Kinds())
}

func TestCodec_FractionalStatsAreTruncated(t *testing.T) {
	rec := &testutils.DiagnosticRecorder{}
	e := runtime.NewEngine(testutils.NeonFixture(t), runtime.WithLifecycleHooks(rec.Hooks()))

	ok := e.Deserialize(`{"currentId":"hub","state":{"heat":1.5,"cyber":-2.7,"credits":1e30},"history":[]}`)

	require.True(t, ok)
	assert.Equal(t, "hub", e.CurrentID())
	assert.Equal(t, 1, e.State().Heat)
	assert.Equal(t, -2, e.State().Cyber)
	assert.Equal(t, math.MaxInt, e.State().Credits)
	assert.Empty(t, rec.Kinds())
}

func TestCodec_CorruptSaveResetsRun(t *testing.T) {
	payloads := map[string]string{
		"not json":         `{{{`,
		"null":             `null`,
		"array":            `[]`,
		"missing state":    `{"currentId":"hub"}`,
		"missing id":       `{"state":{}}`,
		"numeric id":       `{"currentId":3,"state":{}}`,
		"state not object": `{"currentId":"hub","state":"rich"}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			rec := &testutils.DiagnosticRecorder{}
			e := runtime.NewEngine(testutils.NeonFixture(t), runtime.WithLifecycleHooks(rec.Hooks()))
			require.True(t, e.Choose(0))
			fresh := runtime.NewEngine(testutils.NeonFixture(t)).Snapshot()

			assert.False(t, e.Deserialize(payload))

			assert.Equal(t, fresh, e.Snapshot())
			assert.Contains(t, rec.Kinds(), domain.DiagCorruptSave)
		})
	}
}

func TestCodec_DecodeRejectsMalformed(t *testing.T) {
	_, err := runtime.Decode(`{"currentId":"a"}`)
	assert.ErrorIs(t, err, runtime.ErrCorruptSave)

	snap, err := runtime.Decode(`{"currentId":"a","state":{"canRoam":false},"history":"oops"}`)
	require.NoError(t, err)
	assert.Equal(t, "a", snap.CurrentID)
	assert.False(t, snap.State.CanRoam)
	assert.Nil(t, snap.History)
}

func TestCodec_RestoringEarlierSaveUndoesLock(t *testing.T) {
	e := runtime.NewEngine(testutils.NeonFixture(t))
	require.True(t, e.Choose(0))
	saved, err := e.Serialize()
	require.NoError(t, err)

	require.True(t, e.Choose(1)) // tower locks the run
	require.False(t, e.CanBack())

	require.True(t, e.Deserialize(saved))
	assert.True(t, e.CanBack())
	assert.Equal(t, "hub", e.CurrentID())
}
