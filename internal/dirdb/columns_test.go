package dirdb

import (
	"testing"
	"time"
)

type columnsRecord struct {
	Name  string    `json:"name" jsonschema:"description=Display name"`
	Count int       `json:"count,omitempty"`
	Ok    bool      `json:"ok"`
	When  time.Time `json:"when"`
	IDs   []int     `json:"ids"`
	Extra Fields    `json:"extra"`
}

func TestColumns(t *testing.T) {
	cols, err := Columns(&columnsRecord{})
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	want := map[string]ColumnType{
		"name":  ColumnText,
		"count": ColumnNumber,
		"ok":    ColumnBool,
		"when":  ColumnDate,
		"ids":   ColumnArray,
		"extra": ColumnObject,
	}
	if len(cols) != len(want) {
		t.Fatalf("Columns() = %+v, want %d columns", cols, len(want))
	}
	for _, c := range cols {
		if want[c.Name] != c.Type {
			t.Errorf("column %q type = %q, want %q", c.Name, c.Type, want[c.Name])
		}
		if c.Name == "name" {
			if c.Description != "Display name" {
				t.Errorf("name description = %q", c.Description)
			}
			if !c.Required {
				t.Error("name should be required")
			}
		}
		if c.Name == "count" && c.Required {
			t.Error("omitempty field should not be required")
		}
	}

	if _, err := Columns(42); err == nil {
		t.Error("Columns(int) should fail")
	}
	if _, err := Columns(nil); err == nil {
		t.Error("Columns(nil) should fail")
	}
}
