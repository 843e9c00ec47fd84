package payload

import "encoding/json"

// Field values decoded from JSON arrive as float64, bool, string, or
// json.Number depending on the decoder configuration. The coercers below
// accept the shapes real payloads contain and reject everything else;
// malformed values are dropped by callers, never corrected.

// AsFloat coerces a decoded JSON value to float64
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// AsInt64 coerces a decoded JSON value to int64, rejecting fractional floats
func AsInt64(v any) (int64, bool) {
	f, ok := AsFloat(v)
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// AsBool coerces a decoded JSON value to bool. Numeric values count as
// measured: nonzero is true. Anything else is unmeasured
func AsBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	default:
		if f, ok := AsFloat(v); ok {
			return f != 0, true
		}
		return false, false
	}
}

// Num is one element of a numeric measurement array. OK is false when the
// element was present but not numeric; the position is preserved so paired
// arrays stay index-aligned
type Num struct {
	F  float64
	OK bool
}

// AsNums coerces a decoded JSON array to positional numeric elements.
// A nil value yields an empty slice; a non-array value yields ok=false
func AsNums(v any) ([]Num, bool) {
	if v == nil {
		return nil, true
	}
	arr, isArr := v.([]any)
	if !isArr {
		return nil, false
	}
	out := make([]Num, len(arr))
	for i, e := range arr {
		f, fok := AsFloat(e)
		out[i] = Num{F: f, OK: fok}
	}
	return out, true
}
