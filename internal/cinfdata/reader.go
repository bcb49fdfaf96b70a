// Package cinfdata builds measurements from cinfdata style data groups.
//
// A data group is the set of columns recorded by one setup run, keyed by
// column id. Each column has paired time and value samples and its own
// metadata; the metadata of the first column describes the whole run.
package cinfdata

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/maruel/ixstore/internal/series"
)

// TimeLayout is the layout of the run's "time" metadata.
const TimeLayout = "2006-01-02 15:04:05"

// ErrNoData is returned when a data group has no columns.
var ErrNoData = errors.New("no data found")

// Column is one column of a data group.
type Column struct {
	// T are the sample times, in the source's time unit.
	T []float64
	// V are the sample values.
	V []float64
}

// Metadata describes one column. Known keys are "mass_label", "unixtime",
// "time", "Comment" and "comment".
type Metadata map[string]any

// Source is a cinfdata database, or anything that looks like one.
type Source interface {
	// DataGroup returns the columns of the group identified by token.
	DataGroup(ctx context.Context, token string) (map[string]Column, error)
	// MetadataGroup returns the metadata of each column of the group.
	MetadataGroup(ctx context.Context, token string) (map[string]Metadata, error)
}

// Reader converts data groups into measurements.
type Reader struct {
	// TimeScale converts source times to seconds.
	TimeScale float64
	// Technique is recorded on the measurement.
	Technique string
}

// NewReader returns a Reader for cinfdata mass spectrometer groups, which
// record times in milliseconds.
func NewReader() *Reader {
	return &Reader{TimeScale: 1e-3, Technique: "MS"}
}

// ReadMS reads the group identified by token as a measurement with one time
// series "<label>-x" and one value series "<label>" per column.
func (r *Reader) ReadMS(ctx context.Context, src Source, token string) (*series.Measurement, error) {
	data, err := src.DataGroup(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data group %q: %w", token, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoData, token)
	}
	meta, err := src.MetadataGroup(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata group %q: %w", token, err)
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	run := meta[keys[0]]
	tstamp, err := toFloat(run["unixtime"])
	if err != nil {
		return nil, fmt.Errorf("invalid unixtime of %q: %w", token, err)
	}
	m := series.NewMeasurement(runName(run, token), r.Technique, tstamp)
	m.SampleName = sampleName(run)
	for _, key := range keys {
		col := data[key]
		if len(col.T) != len(col.V) {
			return nil, fmt.Errorf("column %s of %q has %d times and %d values", key, token, len(col.T), len(col.V))
		}
		label, _ := meta[key]["mass_label"].(string)
		if label == "" {
			label = key
		}
		t := make([]float64, len(col.T))
		for i, v := range col.T {
			t[i] = v * r.TimeScale
		}
		tunit := ColumnUnit(label + "-x")
		if tunit == "" {
			tunit = "s"
		}
		ts := series.NewTimeSeries(label+"-x", tunit, t, tstamp)
		vs := series.NewValueSeries(label, ColumnUnit(label+"-y"), slices.Clone(col.V), ts)
		if err := m.AddSeries(ts, vs); err != nil {
			return nil, err
		}
		slog.Debug("cinfdata: column", "token", token, "key", key, "label", label, "n", len(t))
	}
	return m, nil
}

// ColumnUnit returns the unit of a cinfdata column from its name, or "" when
// unknown.
func ColumnUnit(column string) string {
	switch {
	case strings.HasPrefix(column, "M") && strings.HasSuffix(column, "-y"):
		return "A"
	case strings.HasPrefix(column, "M") && strings.HasSuffix(column, "-x"):
		return "s"
	case strings.HasPrefix(column, "Reactor") && strings.HasSuffix(column, "pressure-y"):
		return "bar"
	case strings.HasSuffix(column, "pressure-y"):
		return "mbar"
	case strings.HasSuffix(column, "temperature-y"):
		return "celcius"
	case strings.HasPrefix(column, "Flow"):
		return "ml/min"
	default:
		return ""
	}
}

// compareKeys orders numeric column ids numerically, and before other ids.
func compareKeys(a, b string) int {
	ia, erra := strconv.Atoi(a)
	ib, errb := strconv.Atoi(b)
	switch {
	case erra == nil && errb == nil:
		return cmp.Compare(ia, ib)
	case erra == nil:
		return -1
	case errb == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func runName(run Metadata, token string) string {
	switch v := run["time"].(type) {
	case time.Time:
		return v.Format(TimeLayout)
	case string:
		if v != "" {
			return v
		}
	}
	return token
}

func sampleName(run Metadata) string {
	for _, k := range []string{"Comment", "comment"} {
		if v, ok := run[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	slog.Debug("cinfdata: no comment to use as sample name")
	return ""
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	case nil:
		return 0, errors.New("missing")
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}
