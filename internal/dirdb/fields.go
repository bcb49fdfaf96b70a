package dirdb

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DataField is the key under which a data object reports its bulk array in
// its metadata mapping. The store moves the array to the payload file and
// writes null in its place.
const DataField = "data"

// Fields is the metadata mapping of one row.
//
// Values decoded from disk keep the types of the document codec: JSON numbers
// are json.Number, YAML integers are int. Use the typed accessors or [Decode]
// rather than asserting concrete types.
type Fields map[string]any

// String returns the string value at key, or "".
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the numeric value at key.
func (f Fields) Float(key string) (float64, bool) {
	return toFloat(f[key])
}

// Int returns the integral value at key.
func (f Fields) Int(key string) (int, bool) {
	return toInt(f[key])
}

// Ints returns the list of integral values at key.
func (f Fields) Ints(key string) ([]int, bool) {
	switch v := f[key].(type) {
	case []int:
		return v, true
	case []any:
		out := make([]int, 0, len(v))
		for _, x := range v {
			i, ok := toInt(x)
			if !ok {
				return nil, false
			}
			out = append(out, i)
		}
		return out, true
	default:
		return nil, false
	}
}

// Decode stores fields into the struct pointed to by v, using v's json tags.
func Decode(fields Fields, v any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		if t > math.MaxInt {
			return 0, false
		}
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	default:
		return 0, false
	}
}

// toFloats converts the bulk array of a data object. nil means no data.
func toFloats(v any) ([]float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return t, nil
	case []float32:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out, nil
	case []int:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out, nil
	case []any:
		out := make([]float64, len(t))
		for i, x := range t {
			f, ok := toFloat(x)
			if !ok {
				return nil, fmt.Errorf("%w: element %d of %q is %T, not a number", ErrSerialization, i, DataField, x)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q holds %T, not a numeric array", ErrSerialization, DataField, v)
	}
}
