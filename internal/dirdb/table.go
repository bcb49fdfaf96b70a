// Enumerates and allocates row identifiers within one table directory.

package dirdb

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Table is one table of a Store: a directory of row files.
//
// A Table does no caching; every call scans the directory.
type Table struct {
	name    string
	dir     string
	metaExt string
	dataExt string
	format  Format
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Dir returns the table directory.
func (t *Table) Dir() string {
	return t.dir
}

// EnsureExists creates the table directory if it is absent.
func (t *Table) EnsureExists() error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil { //nolint:gosec // G301: data directories are world readable
		return fmt.Errorf("failed to create table directory %s: %w", t.dir, err)
	}
	return nil
}

// IDs returns the ids of all row files in the table, sorted and without
// duplicates. Files whose name has no leading integer and sub-directories are
// skipped. A missing table has no ids.
func (t *Table) IDs() ([]int, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read table %s: %w", t.name, err)
	}
	var ids []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := IDFromPath(e.Name())
		if !ok {
			slog.Debug("dirdb: skipping file without row id", "table", t.name, "file", e.Name())
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// NextID returns the id the next saved row gets: one more than the largest
// existing id, or FirstID for an empty table.
func (t *Table) NextID() (int, error) {
	ids, err := t.IDs()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return FirstID, nil
	}
	return ids[len(ids)-1] + 1, nil
}

// FindRow returns the path of the metadata file for id, or false if the table
// has none.
func (t *Table) FindRow(id int) (string, bool, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read table %s: %w", t.name, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), t.metaExt) {
			continue
		}
		if got, ok := IDFromPath(e.Name()); ok && got == id {
			return filepath.Join(t.dir, e.Name()), true, nil
		}
	}
	return "", false, nil
}

// Contains reports whether the table has a metadata file for id.
func (t *Table) Contains(id int) (bool, error) {
	_, ok, err := t.FindRow(id)
	return ok, err
}

// RowName returns the display name of row id.
func (t *Table) RowName(id int) (string, error) {
	path, ok, err := t.FindRow(id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s/%d", ErrRowNotFound, t.name, id)
	}
	_, name, _ := strings.Cut(strings.TrimSuffix(filepath.Base(path), t.metaExt), "_")
	return name, nil
}
