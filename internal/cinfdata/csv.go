package cinfdata

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVSource is a Source holding a single data group read from a text export.
//
// The file starts with "# key: value" metadata lines followed by
// "label,t,v" sample lines. Times are in milliseconds, as in the database:
//
//	# time: 2021-05-04 12:00:00
//	# unixtime: 1620129600
//	# Comment: Pt foil
//	M2,0,1.2e-10
//	M2,1000,1.3e-10
//	M4,0,3e-11
type CSVSource struct {
	header  Metadata
	labels  []string
	columns map[string]Column
}

// OpenCSV reads the file at path.
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user supplied import file
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	src, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// ParseCSV reads a data group export from r.
func ParseCSV(r io.Reader) (*CSVSource, error) {
	br := bufio.NewReader(r)
	src := &CSVSource{header: Metadata{}, columns: map[string]Column{}}
	for {
		b, err := br.Peek(1)
		if err != nil || b[0] != '#' {
			break
		}
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		k, v, ok := strings.Cut(strings.TrimPrefix(line, "#"), ":")
		if !ok {
			continue
		}
		src.header[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		label := rec[0]
		t, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid time for %s: %w", label, err)
		}
		v, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", label, err)
		}
		col, ok := src.columns[label]
		if !ok {
			src.labels = append(src.labels, label)
		}
		col.T = append(col.T, t)
		col.V = append(col.V, v)
		src.columns[label] = col
	}
	return src, nil
}

// Header returns the metadata lines of the file.
func (c *CSVSource) Header() Metadata {
	return c.header
}

// matches reports whether token selects the group: empty, or equal to the
// "time" or "comment" metadata.
func (c *CSVSource) matches(token string) bool {
	if token == "" {
		return true
	}
	for _, k := range []string{"time", "Comment", "comment"} {
		if v, ok := c.header[k].(string); ok && v == token {
			return true
		}
	}
	return false
}

// DataGroup implements Source. Columns are keyed by their order of appearance.
func (c *CSVSource) DataGroup(ctx context.Context, token string) (map[string]Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := map[string]Column{}
	if !c.matches(token) {
		return out, nil
	}
	for i, label := range c.labels {
		out[strconv.Itoa(i)] = c.columns[label]
	}
	return out, nil
}

// MetadataGroup implements Source.
func (c *CSVSource) MetadataGroup(ctx context.Context, token string) (map[string]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := map[string]Metadata{}
	if !c.matches(token) {
		return out, nil
	}
	for i, label := range c.labels {
		m := make(Metadata, len(c.header)+1)
		for k, v := range c.header {
			m[k] = v
		}
		m["mass_label"] = label
		out[strconv.Itoa(i)] = m
	}
	return out, nil
}
