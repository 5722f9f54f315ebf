package reactive

import (
	"encoding/json"
	"math"
)

// AsBool returns property name as a bool.
func (in *instance) AsBool(name string) (bool, bool) {
	v, _ := in.Get(name)
	b, ok := v.(bool)
	return b, ok
}

// AsInt64 returns property name as an int64. Floats convert only when they
// hold a whole number.
func (in *instance) AsInt64(name string) (int64, bool) {
	v, _ := in.Get(name)
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
		if n != math.Trunc(n) || n >= 1<<63 || n < -(1<<63) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// AsFloat64 returns property name as a float64.
func (in *instance) AsFloat64(name string) (float64, bool) {
	v, _ := in.Get(name)
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// AsString returns property name as a string.
func (in *instance) AsString(name string) (string, bool) {
	v, _ := in.Get(name)
	s, ok := v.(string)
	return s, ok
}

// AsArray returns property name as an array.
func (in *instance) AsArray(name string) ([]any, bool) {
	v, _ := in.Get(name)
	a, ok := v.([]any)
	return a, ok
}

// AsObject returns property name as an object.
func (in *instance) AsObject(name string) (map[string]any, bool) {
	v, _ := in.Get(name)
	o, ok := v.(map[string]any)
	return o, ok
}
