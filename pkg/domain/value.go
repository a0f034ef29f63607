package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Values held in State or Conditions are loosely typed (stories come from JSON
// or YAML), so comparisons go through the helpers below instead of ==.

// AsNumber returns v as a float64 when v is of a numeric kind.
// Booleans and strings are not numbers here; see Coerce for the lenient form.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Coerce converts v to a number the way relational comparisons expect:
// booleans become 1/0, numeric strings are parsed, the empty string is 0.
// A missing value (nil) or anything else is NaN, so comparisons against it fail.
func Coerce(v any) float64 {
	if n, ok := AsNumber(v); ok {
		return n
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// StrictEqual compares two values without type coercion.
// All numeric kinds compare as numbers; otherwise both sides must share a kind.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := AsNumber(a); ok {
		y, ok := AsNumber(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	}
	return false
}

// LooseEqual compares two values with coercion: nil only equals nil,
// two strings compare as strings, and scalars otherwise compare numerically.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return x == y
		}
	}
	if !isScalar(a) || !isScalar(b) {
		return false
	}
	return Coerce(a) == Coerce(b)
}

// Truthy reports the boolean interpretation of v.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if n, ok := AsNumber(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case bool, string:
		return true
	}
	_, ok := AsNumber(v)
	return ok
}
