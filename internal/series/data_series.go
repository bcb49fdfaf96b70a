package series

import (
	"fmt"

	"github.com/maruel/ixstore/internal/dirdb"
)

// TableSeries is the table data series are stored in.
const TableSeries = "data_series"

// Type distinguishes the flavours of DataSeries.
type Type string

// Series types.
const (
	TypeData  Type = "data"
	TypeTime  Type = "time"
	TypeValue Type = "value"
)

// SeriesRecord is the metadata document of a data series row.
type SeriesRecord struct {
	Name   string    `json:"name" jsonschema:"description=Series name such as M2 or M2-x"`
	Unit   string    `json:"unit_name" jsonschema:"description=Unit of the values"`
	Type   Type      `json:"series_type" jsonschema:"enum=data,enum=time,enum=value"`
	Tstamp *float64  `json:"tstamp,omitempty" jsonschema:"description=Unix time of t=0 (time series only)"`
	TID    *int      `json:"t_id,omitempty" jsonschema:"description=Row id of the time series (value series only)"`
	Data   []float64 `json:"data" jsonschema:"description=Always null on disk; the values live in the payload file"`
}

// DataSeries is a named numeric column.
type DataSeries struct {
	dirdb.Binding

	Name string
	Unit string
	Type Type
	// Tstamp is the unix time of t=0. Time series only.
	Tstamp float64

	tseries *DataSeries
	tID     *int
	data    []float64
	loaded  bool
}

// NewDataSeries returns a plain data series.
func NewDataSeries(name, unit string, data []float64) *DataSeries {
	return &DataSeries{Name: name, Unit: unit, Type: TypeData, data: data, loaded: true}
}

// NewTimeSeries returns a series of times in seconds relative to tstamp.
func NewTimeSeries(name, unit string, data []float64, tstamp float64) *DataSeries {
	return &DataSeries{Name: name, Unit: unit, Type: TypeTime, Tstamp: tstamp, data: data, loaded: true}
}

// NewValueSeries returns a series of values sampled at the times of t.
func NewValueSeries(name, unit string, data []float64, t *DataSeries) *DataSeries {
	return &DataSeries{Name: name, Unit: unit, Type: TypeValue, tseries: t, data: data, loaded: true}
}

// TableName implements dirdb.Storable.
func (s *DataSeries) TableName() string {
	return TableSeries
}

// DisplayName implements dirdb.Storable.
func (s *DataSeries) DisplayName() string {
	return s.Name
}

// HasBulkData implements dirdb.DataObject.
func (s *DataSeries) HasBulkData() bool {
	return true
}

// DataObjects implements dirdb.Owner: a value series needs its time series
// saved first.
func (s *DataSeries) DataObjects() []dirdb.DataObject {
	if s.Type != TypeValue {
		return nil
	}
	t, err := s.TimeSeries()
	if err != nil || t == nil {
		return nil
	}
	return []dirdb.DataObject{t}
}

// Fields implements dirdb.Storable. The values are loaded first if the series
// was opened and not read yet.
func (s *DataSeries) Fields() (dirdb.Fields, error) {
	data, err := s.Values()
	if err != nil {
		return nil, err
	}
	f := dirdb.Fields{
		"name":          s.Name,
		"unit_name":     s.Unit,
		"series_type":   string(s.Type),
		dirdb.DataField: data,
	}
	switch s.Type {
	case TypeTime:
		f["tstamp"] = s.Tstamp
	case TypeValue:
		switch {
		case s.tseries != nil && s.tseries.Bound():
			f["t_id"] = s.tseries.ID()
		case s.tseries != nil:
			return nil, fmt.Errorf("time series %q of %q is not saved", s.tseries.Name, s.Name)
		case s.tID != nil:
			f["t_id"] = *s.tID
		}
	}
	return f, nil
}

// Values returns the series values, reading the payload from the bound store
// on first use. An opened series without payload has no values.
func (s *DataSeries) Values() ([]float64, error) {
	if s.loaded || !s.Bound() {
		return s.data, nil
	}
	data, _, err := s.Store().LoadObjData(s)
	if err != nil {
		return nil, fmt.Errorf("failed to load values of %q: %w", s.Name, err)
	}
	s.data = data
	s.loaded = true
	return s.data, nil
}

// TimeSeries returns the time series of a value series, opening it from the
// bound store on first use. Returns nil for other series types.
func (s *DataSeries) TimeSeries() (*DataSeries, error) {
	if s.tseries != nil || s.tID == nil || !s.Bound() {
		return s.tseries, nil
	}
	obj, err := s.Store().Open(SeriesKind{}, *s.tID)
	if err != nil {
		return nil, fmt.Errorf("failed to open time series of %q: %w", s.Name, err)
	}
	s.tseries = obj.(*DataSeries)
	return s.tseries, nil
}

// SeriesKind reconstructs DataSeries rows.
type SeriesKind struct{}

// TableName implements dirdb.Kind.
func (SeriesKind) TableName() string {
	return TableSeries
}

// FromFields implements dirdb.Kind.
func (SeriesKind) FromFields(fields dirdb.Fields) (dirdb.Storable, error) {
	var rec SeriesRecord
	if err := dirdb.Decode(fields, &rec); err != nil {
		return nil, err
	}
	s := &DataSeries{Name: rec.Name, Unit: rec.Unit, Type: rec.Type, tID: rec.TID}
	if s.Type == "" {
		s.Type = TypeData
	}
	if rec.Tstamp != nil {
		s.Tstamp = *rec.Tstamp
	}
	return s, nil
}
