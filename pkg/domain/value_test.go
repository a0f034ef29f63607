package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrictEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int vs float64", 3, 3.0, true},
		{"json number", json.Number("2"), 2, true},
		{"number vs string", 3, "3", false},
		{"bool vs number", true, 1, false},
		{"bools", true, true, true},
		{"strings", "a", "a", true},
		{"nil vs nil", nil, nil, true},
		{"nil vs false", nil, false, false},
		{"slices never equal", []string{}, []string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrictEqual(tt.a, tt.b))
		})
	}
}

func TestLooseEqual(t *testing.T) {
	assert.True(t, LooseEqual(1, true))
	assert.True(t, LooseEqual(0, false))
	assert.True(t, LooseEqual("3", 3))
	assert.True(t, LooseEqual("a", "a"))
	assert.False(t, LooseEqual("a", 0))
	assert.False(t, LooseEqual(nil, false))
	assert.True(t, LooseEqual(nil, nil))
}

func TestCoerceAndTruthy(t *testing.T) {
	assert.Equal(t, 1.0, Coerce(true))
	assert.Equal(t, 0.0, Coerce(""))
	assert.Equal(t, 4.5, Coerce(" 4.5 "))
	assert.True(t, math.IsNaN(Coerce(nil)))
	assert.True(t, math.IsNaN(Coerce("abc")))

	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(math.NaN()))
	assert.True(t, Truthy(2))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(map[string]any{}))
}
