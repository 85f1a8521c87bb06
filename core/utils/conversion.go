package utils

import (
	"encoding/json"
	"math"
)

// NonNegativeInt reports whether val holds a whole number >= 0 and returns it.
// Values decoded from JSON arrive as float64 or json.Number; strings are rejected.
func NonNegativeInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, v >= 0
	case int64:
		return int(v), v >= 0
	case int32:
		return int(v), v >= 0
	case uint:
		return int(v), true
	case uint64:
		return int(v), true
	case uint32:
		return int(v), true
	case float64:
		if v < 0 || v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case float32:
		return NonNegativeInt(float64(v))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), i >= 0
		}
		// 5.0 and 5e0 are whole numbers too.
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return NonNegativeInt(f)
	default:
		return 0, false
	}
}

// String returns val as a string when it is one.
func String(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// StringOr returns val as a string, or fallback when val is not a string.
func StringOr(val any, fallback string) string {
	if s, ok := String(val); ok {
		return s
	}
	return fallback
}

// FirstPresent returns the value of the first key in keys that is set to a
// non-nil value in m. A JSON null counts as absent.
func FirstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Map returns val as a JSON object.
func Map(val any) (map[string]any, bool) {
	m, ok := val.(map[string]any)
	return m, ok
}

// Slice returns val as a JSON array.
func Slice(val any) ([]any, bool) {
	s, ok := val.([]any)
	return s, ok
}

// CloneMap returns a shallow copy of m.
func CloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
