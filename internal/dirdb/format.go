// Metadata document encodings.

package dirdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of metadata documents.
type Format string

const (
	// FormatJSON writes indented JSON documents.
	FormatJSON Format = "json"
	// FormatYAML writes YAML documents.
	FormatYAML Format = "yaml"
)

// Validate returns an error for unknown formats.
func (f Format) Validate() error {
	switch f {
	case FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: unknown metadata format %q", ErrInvalidOptions, string(f))
	}
}

func (f Format) marshal(fields Fields) ([]byte, error) {
	switch f {
	case FormatYAML:
		// yaml happily writes .nan; keep documents readable by both encodings.
		if err := checkFinite(fields); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any(fields)); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

func (f Format) unmarshal(data []byte) (Fields, error) {
	var fields Fields
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, err
		}
	}
	if fields == nil {
		return nil, fmt.Errorf("document is not a mapping")
	}
	return fields, nil
}

// checkFinite rejects NaN and infinities anywhere in v.
func checkFinite(v any) error {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("unsupported value %v", t)
		}
	case float32:
		return checkFinite(float64(t))
	case []float64:
		for _, x := range t {
			if err := checkFinite(x); err != nil {
				return err
			}
		}
	case []any:
		for _, x := range t {
			if err := checkFinite(x); err != nil {
				return err
			}
		}
	case Fields:
		for _, x := range t {
			if err := checkFinite(x); err != nil {
				return err
			}
		}
	case map[string]any:
		for _, x := range t {
			if err := checkFinite(x); err != nil {
				return err
			}
		}
	}
	return nil
}
