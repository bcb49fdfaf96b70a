package cinfdata

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/maruel/ixstore/internal/dirdb"
	"github.com/maruel/ixstore/internal/series"
)

type fakeSource struct {
	data map[string]Column
	meta map[string]Metadata
	err  error
}

func (f *fakeSource) DataGroup(ctx context.Context, token string) (map[string]Column, error) {
	return f.data, f.err
}

func (f *fakeSource) MetadataGroup(ctx context.Context, token string) (map[string]Metadata, error) {
	return f.meta, nil
}

func TestReadMS(t *testing.T) {
	started := time.Date(2021, 5, 4, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		data: map[string]Column{
			"10": {T: []float64{0, 500}, V: []float64{7, 8}},
			"9":  {T: []float64{0, 1000, 2000}, V: []float64{1, 2, 3}},
		},
		meta: map[string]Metadata{
			"9":  {"mass_label": "M2", "unixtime": "1620129600", "time": started, "comment": "Pt foil"},
			"10": {"mass_label": "Reactor pressure", "unixtime": 1620129600.0},
		},
	}
	m, err := NewReader().ReadMS(t.Context(), src, "2021-05-04 12:00:00")
	if err != nil {
		t.Fatalf("ReadMS() error = %v", err)
	}
	if m.Name != "2021-05-04 12:00:00" || m.SampleName != "Pt foil" || m.Technique != "MS" || m.Tstamp != 1620129600 {
		t.Errorf("ReadMS() = %+v", m)
	}
	all, err := m.Series()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range all {
		names = append(names, s.Name+"/"+s.Unit)
	}
	want := []string{"M2-x/s", "M2/A", "Reactor pressure-x/s", "Reactor pressure/bar"}
	if !slices.Equal(names, want) {
		t.Errorf("series = %v, want %v", names, want)
	}
	got, _ := all[0].Values()
	if !slices.Equal(got, []float64{0, 1, 2}) {
		t.Errorf("scaled times = %v", got)
	}
	if all[0].Tstamp != 1620129600 {
		t.Errorf("time series tstamp = %v", all[0].Tstamp)
	}
	if ts, _ := all[1].TimeSeries(); ts != all[0] {
		t.Error("value series not linked to its time series")
	}
}

func TestReadMSErrors(t *testing.T) {
	ctx := t.Context()
	t.Run("empty group", func(t *testing.T) {
		_, err := NewReader().ReadMS(ctx, &fakeSource{}, "x")
		if !errors.Is(err, ErrNoData) {
			t.Errorf("ReadMS() error = %v, want ErrNoData", err)
		}
	})
	t.Run("source error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewReader().ReadMS(ctx, &fakeSource{err: boom}, "x")
		if !errors.Is(err, boom) {
			t.Errorf("ReadMS() error = %v, want boom", err)
		}
	})
	t.Run("no unixtime", func(t *testing.T) {
		src := &fakeSource{
			data: map[string]Column{"1": {T: []float64{0}, V: []float64{1}}},
			meta: map[string]Metadata{"1": {"mass_label": "M2"}},
		}
		if _, err := NewReader().ReadMS(ctx, src, "x"); err == nil {
			t.Error("ReadMS() succeeded without unixtime")
		}
	})
	t.Run("ragged column", func(t *testing.T) {
		src := &fakeSource{
			data: map[string]Column{"1": {T: []float64{0, 1}, V: []float64{1}}},
			meta: map[string]Metadata{"1": {"mass_label": "M2", "unixtime": 1.0}},
		}
		if _, err := NewReader().ReadMS(ctx, src, "x"); err == nil {
			t.Error("ReadMS() succeeded with mismatched lengths")
		}
	})
}

func TestColumnUnit(t *testing.T) {
	tests := []struct {
		column string
		want   string
	}{
		{"M2-y", "A"},
		{"M44-x", "s"},
		{"Reactor pressure-y", "bar"},
		{"Chamber pressure-y", "mbar"},
		{"Sample temperature-y", "celcius"},
		{"Flow 1", "ml/min"},
		{"Voltage-y", ""},
	}
	for _, tt := range tests {
		if got := ColumnUnit(tt.column); got != tt.want {
			t.Errorf("ColumnUnit(%q) = %q, want %q", tt.column, got, tt.want)
		}
	}
}

const export = `# time: 2021-05-04 12:00:00
# unixtime: 1620129600
# Comment: Pt foil
M2,0,1.5e-10
M4, 0, 3e-11
M2,1000,2.5e-10
`

func TestCSVSource(t *testing.T) {
	src, err := ParseCSV(strings.NewReader(export))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if got := src.Header()["Comment"]; got != "Pt foil" {
		t.Errorf("Header()[Comment] = %v", got)
	}
	data, err := src.DataGroup(t.Context(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 2 || !slices.Equal(data["0"].V, []float64{1.5e-10, 2.5e-10}) || !slices.Equal(data["1"].T, []float64{0}) {
		t.Errorf("DataGroup() = %v", data)
	}
	if other, _ := src.DataGroup(t.Context(), "2000-01-01 00:00:00"); len(other) != 0 {
		t.Errorf("DataGroup(other token) = %v, want empty", other)
	}

	m, err := NewReader().ReadMS(t.Context(), src, "Pt foil")
	if err != nil {
		t.Fatalf("ReadMS() error = %v", err)
	}
	s, err := dirdb.New(dirdb.Options{Root: filepath.Join(t.TempDir(), "data")})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Save(m)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	ids, err := s.ListIDs(series.TableSeries)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []int{0, 1, 2, 3}) {
		t.Errorf("series ids = %v", ids)
	}
	name, err := s.RowName(series.TableMeasurement, b.ID())
	if err != nil || name != "2021-05-04 12:00:00" {
		t.Errorf("RowName() = %q, %v", name, err)
	}
}

func TestParseCSVErrors(t *testing.T) {
	for _, in := range []string{"M2,0\n", "M2,x,1\n", "M2,0,y\n"} {
		if _, err := ParseCSV(strings.NewReader(in)); err == nil {
			t.Errorf("ParseCSV(%q) succeeded", in)
		}
	}
}
