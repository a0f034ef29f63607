package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vars(m map[string]any) Resolver {
	return func(name string) any { return m[name] }
}

func TestEvalRequires(t *testing.T) {
	resolve := vars(map[string]any{
		"ghostKey":     true,
		"corpContract": false,
		"cyber":        3,
		"credits":      0,
		"label":        "3",
	})

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"true", true},
		{"false", false},
		{"ghostKey", true},
		{"!ghostKey", false},
		{"!!ghostKey", true},
		{"missing", false},
		{"ghostKey && !corpContract", true},
		{"ghostKey && corpContract", false},
		{"corpContract || ghostKey", true},
		{"false && ghostKey || true", true},
		{"ghostKey || false && false", true},
		{"(ghostKey || false) && false", false},
		{"!(corpContract || false)", true},
		{"ghostKey == true", true},
		{"ghostKey === true", true},
		{"corpContract != true", true},
		{"cyber == label", true},
		{"cyber === label", false},
		{"cyber !== label", true},
		{"credits == false", true},
		{"credits === false", false},
		{"missing == false", false},
		{"missing === missing", true},
		{"true_thing", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := EvalRequires(tt.expr, resolve)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalRequires_FailsClosed(t *testing.T) {
	bad := []string{
		"(ghostKey",
		"ghostKey)",
		"ghostKey &&",
		"&& ghostKey",
		"ghostKey corpContract",
		"cyber > 2",
		"ghostKey & corpContract",
		"'quoted'",
		"!",
		"()",
	}
	for _, expr := range bad {
		t.Run(expr, func(t *testing.T) {
			got, err := EvalRequires(expr, vars(map[string]any{"ghostKey": true}))
			assert.False(t, got)

			var syn *SyntaxError
			assert.ErrorAs(t, err, &syn)
		})
	}
}

func TestEvalRequires_NilResolver(t *testing.T) {
	got, err := EvalRequires("anything || true", nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestTokenize_LongestMatch(t *testing.T) {
	toks, err := tokenize("a!==b===c")
	require.NoError(t, err)

	kinds := make([]tokenKind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.kind)
	}
	assert.Equal(t, []tokenKind{tokIdent, tokStrictNeq, tokIdent, tokStrictEq, tokIdent, tokEOF}, kinds)
}
