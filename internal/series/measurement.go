package series

import (
	"fmt"

	"github.com/maruel/ixstore/internal/dirdb"
)

// TableMeasurement is the table measurements are stored in.
const TableMeasurement = "measurement"

// MeasurementRecord is the metadata document of a measurement row.
type MeasurementRecord struct {
	Name       string  `json:"name" jsonschema:"description=Measurement name"`
	SampleName string  `json:"sample_name,omitempty" jsonschema:"description=Name of the measured sample"`
	Technique  string  `json:"technique" jsonschema:"description=Measurement technique such as MS"`
	Tstamp     float64 `json:"tstamp" jsonschema:"description=Unix time of the start of the measurement"`
	SeriesIDs  []int   `json:"s_ids" jsonschema:"description=Row ids of the data series in table data_series"`
}

// Measurement groups the series recorded by one run of an instrument.
type Measurement struct {
	dirdb.Binding

	Name       string
	SampleName string
	Technique  string
	Tstamp     float64

	series  []*DataSeries
	sIDs    []int
	loaded  bool
	loadErr error
}

// NewMeasurement returns an unsaved measurement owning series.
func NewMeasurement(name, technique string, tstamp float64, series ...*DataSeries) *Measurement {
	return &Measurement{Name: name, Technique: technique, Tstamp: tstamp, series: series, loaded: true}
}

// TableName implements dirdb.Storable.
func (m *Measurement) TableName() string {
	return TableMeasurement
}

// DisplayName implements dirdb.Storable.
func (m *Measurement) DisplayName() string {
	return m.Name
}

// AddSeries appends series to the measurement.
func (m *Measurement) AddSeries(series ...*DataSeries) error {
	if _, err := m.Series(); err != nil {
		return err
	}
	m.series = append(m.series, series...)
	return nil
}

// Series returns the measurement's series, opening them from the bound store
// on first use.
func (m *Measurement) Series() ([]*DataSeries, error) {
	if m.loaded || !m.Bound() {
		return m.series, nil
	}
	out := make([]*DataSeries, 0, len(m.sIDs))
	for _, id := range m.sIDs {
		obj, err := m.Store().Open(SeriesKind{}, id)
		if err != nil {
			return nil, fmt.Errorf("failed to open series %d of %q: %w", id, m.Name, err)
		}
		out = append(out, obj.(*DataSeries))
	}
	// Share time series instances that are also members of the measurement.
	byID := make(map[int]*DataSeries, len(out))
	for _, s := range out {
		byID[s.ID()] = s
	}
	for _, s := range out {
		if s.tID != nil && s.tseries == nil {
			s.tseries = byID[*s.tID]
		}
	}
	m.series = out
	m.loaded = true
	return m.series, nil
}

// SeriesByName returns the first series named name, or nil.
func (m *Measurement) SeriesByName(name string) (*DataSeries, error) {
	all, err := m.Series()
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, nil
}

// DataObjects implements dirdb.Owner.
func (m *Measurement) DataObjects() []dirdb.DataObject {
	all, err := m.Series()
	if err != nil {
		m.loadErr = err
		return nil
	}
	out := make([]dirdb.DataObject, len(all))
	for i, s := range all {
		out[i] = s
	}
	return out
}

// Fields implements dirdb.Storable. Every series must be saved.
func (m *Measurement) Fields() (dirdb.Fields, error) {
	if m.loadErr != nil {
		err := m.loadErr
		m.loadErr = nil
		return nil, err
	}
	ids := m.sIDs
	if m.loaded {
		ids = make([]int, len(m.series))
		for i, s := range m.series {
			if !s.Bound() {
				return nil, fmt.Errorf("series %q of %q is not saved", s.Name, m.Name)
			}
			ids[i] = s.ID()
		}
	}
	if ids == nil {
		ids = []int{}
	}
	f := dirdb.Fields{
		"name":      m.Name,
		"technique": m.Technique,
		"tstamp":    m.Tstamp,
		"s_ids":     ids,
	}
	if m.SampleName != "" {
		f["sample_name"] = m.SampleName
	}
	return f, nil
}

// MeasurementKind reconstructs Measurement rows.
type MeasurementKind struct{}

// TableName implements dirdb.Kind.
func (MeasurementKind) TableName() string {
	return TableMeasurement
}

// FromFields implements dirdb.Kind.
func (MeasurementKind) FromFields(fields dirdb.Fields) (dirdb.Storable, error) {
	var rec MeasurementRecord
	if err := dirdb.Decode(fields, &rec); err != nil {
		return nil, err
	}
	return &Measurement{
		Name:       rec.Name,
		SampleName: rec.SampleName,
		Technique:  rec.Technique,
		Tstamp:     rec.Tstamp,
		sIDs:       rec.SeriesIDs,
	}, nil
}
