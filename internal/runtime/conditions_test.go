package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/pkg/domain"
)

func TestEvaluateCondition(t *testing.T) {
	state := domain.NewState()
	state.Credits = 10
	state.ShortMode = true
	state.Flags["met_oracle"] = true
	state.Flags["ally_gotara"] = true
	state.Flags["code"] = false

	tests := []struct {
		name string
		cond domain.Condition
		want bool
	}{
		{"stat equal", domain.Condition{Var: "credits", Op: "=", Value: 10}, true},
		{"stat equal float", domain.Condition{Var: "credits", Op: "=", Value: 10.0}, true},
		{"strict equal rejects numeric string", domain.Condition{Var: "credits", Op: "=", Value: "10"}, false},
		{"strict not equal on kind mismatch", domain.Condition{Var: "credits", Op: "!=", Value: "10"}, true},
		{"relational coerces numeric string", domain.Condition{Var: "credits", Op: ">=", Value: "10"}, true},
		{"relational less", domain.Condition{Var: "credits", Op: "<", Value: 11}, true},
		{"relational greater fails", domain.Condition{Var: "credits", Op: ">", Value: 10}, false},
		{"relational on bool field", domain.Condition{Var: "shortMode", Op: ">", Value: 0}, true},
		{"direct field", domain.Condition{Var: "canRoam", Op: "=", Value: true}, true},
		{"flag", domain.Condition{Var: "met_oracle", Op: "=", Value: true}, true},
		{"false flag is not missing", domain.Condition{Var: "code", Op: "=", Value: false}, true},
		{"mirror alias", domain.Condition{Var: "ally_johnny", Op: "=", Value: true}, true},
		{"missing var equality", domain.Condition{Var: "unknown", Op: "=", Value: false}, false},
		{"missing var inequality", domain.Condition{Var: "unknown", Op: "!=", Value: true}, true},
		{"missing var never equals explicit null", domain.Condition{Var: "unknown", Op: "=", Value: nil}, false},
		{"missing var differs from explicit null", domain.Condition{Var: "unknown", Op: "!=", Value: nil}, true},
		{"present var differs from null", domain.Condition{Var: "credits", Op: "=", Value: nil}, false},
		{"missing var relational", domain.Condition{Var: "unknown", Op: "<", Value: 100}, false},
		{"non numeric string relational", domain.Condition{Var: "credits", Op: "<", Value: "lots"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runtime.EvaluateCondition(tt.cond, &state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateCondition_UnknownOperator(t *testing.T) {
	state := domain.NewState()
	got, err := runtime.EvaluateCondition(domain.Condition{Var: "heat", Op: "~=", Value: 0}, &state)

	assert.False(t, got)
	assert.ErrorIs(t, err, runtime.ErrUnknownOperator)
}

func TestEvaluateAll_ShortCircuits(t *testing.T) {
	state := domain.NewState()

	ok, err := runtime.EvaluateAll(nil, &state)
	require.NoError(t, err)
	assert.True(t, ok, "empty list passes")

	ok, err = runtime.EvaluateAll([]domain.Condition{
		{Var: "heat", Op: "=", Value: 1},
		{Var: "heat", Op: "??", Value: 1},
	}, &state)
	require.NoError(t, err, "evaluation stops before the unknown operator")
	assert.False(t, ok)

	ok, err = runtime.EvaluateAll([]domain.Condition{
		{Var: "heat", Op: "=", Value: 0},
		{Var: "heat", Op: "??", Value: 1},
	}, &state)
	assert.ErrorIs(t, err, runtime.ErrUnknownOperator)
	assert.False(t, ok)
}
