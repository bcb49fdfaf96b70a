package dirdb

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRowStem(t *testing.T) {
	tests := []struct {
		id   int
		name string
		want string
	}{
		{0, "alpha", "0_alpha"},
		{12, "my_series_name", "12_my_series_name"},
		{3, "", "3_"},
		{4, "a/b", "4_a-b"},
	}
	for _, tt := range tests {
		if got := RowStem(tt.id, tt.name); got != tt.want {
			t.Errorf("RowStem(%d, %q) = %q, want %q", tt.id, tt.name, got, tt.want)
		}
	}
}

func TestIDFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   int
		wantOK bool
	}{
		{"0_alpha.ix", 0, true},
		{"/data/measurement/42_M2-x.npy", 42, true},
		{"7_with_underscores.ix", 7, true},
		{"9.ix", 9, true},
		{"notanumber_foo.ix", 0, false},
		{"-1_neg.ix", 0, false},
		{"+1_plus.ix", 0, false},
		{"_noid.ix", 0, false},
		{".123.tmp", 0, false},
		{"99999999999999999999999_big.ix", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := IDFromPath(tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("IDFromPath(%q) = (%d, %v), want (%d, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"0_alpha.ix", "alpha"},
		{"7_with_underscores.ix", "with_underscores"},
		{"3_a.b.ix", "a.b"},
		{"9.ix", ""},
		{"9_.ix", ""},
	}
	for _, tt := range tests {
		if got := NameFromPath(tt.path); got != tt.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPathCodecProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("id and name survive encoding", prop.ForAll(
		func(id int, a, b string) bool {
			name := a + "_" + b
			path := RowStem(id, name) + DefaultMetaExt
			got, ok := IDFromPath(path)
			return ok && got == id && NameFromPath(path) == name
		},
		gen.IntRange(0, 1<<30),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
