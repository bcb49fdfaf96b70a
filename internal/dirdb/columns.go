// Describes the metadata fields of a record kind by JSON schema reflection.

package dirdb

import (
	"fmt"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// ColumnType is the coarse type of a metadata field.
type ColumnType string

// Column types reported by Columns.
const (
	ColumnText   ColumnType = "text"
	ColumnNumber ColumnType = "number"
	ColumnBool   ColumnType = "bool"
	ColumnDate   ColumnType = "date"
	ColumnArray  ColumnType = "array"
	ColumnObject ColumnType = "object"
)

// Column describes one metadata field.
type Column struct {
	Name        string     `json:"name"`
	Type        ColumnType `json:"type"`
	Required    bool       `json:"required,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Columns describes the metadata fields of record, a struct or pointer to
// struct whose json tags match the keys written to disk.
//
// Descriptions come from `jsonschema:"description=..."` tags.
func Columns(record any) ([]Column, error) {
	t := reflect.TypeOf(record)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record must be a struct or pointer to struct, got %T", record)
	}

	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	schema := r.ReflectFromType(t)

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	var columns []Column
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		colType := ColumnText
		for i := range t.NumField() {
			field := t.Field(i)
			if jsonFieldName(&field) == pair.Key {
				colType = goTypeToColumnType(field.Type)
				break
			}
		}
		columns = append(columns, Column{
			Name:        pair.Key,
			Type:        colType,
			Required:    required[pair.Key],
			Description: pair.Value.Description,
		})
	}
	return columns, nil
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(field *reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	for i, c := range tag {
		if c == ',' {
			if i == 0 {
				return field.Name
			}
			return tag[:i]
		}
	}
	return tag
}

func goTypeToColumnType(t reflect.Type) ColumnType {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == reflect.TypeFor[time.Time]() {
		return ColumnDate
	}
	switch t.Kind() { //nolint:exhaustive // Everything else is shown as text.
	case reflect.Bool:
		return ColumnBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return ColumnNumber
	case reflect.Slice, reflect.Array:
		return ColumnArray
	case reflect.Struct, reflect.Map:
		return ColumnObject
	default:
		return ColumnText
	}
}
