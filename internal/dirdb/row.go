// Serializes one row: a metadata document and an optional numeric payload.

package dirdb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteMetadata writes fields as the metadata document of row id and returns
// its path. An existing document with the same stem is overwritten.
func (t *Table) WriteMetadata(id int, name string, fields Fields) (string, error) {
	data, err := t.format.marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%w: row %s/%d: %w", ErrSerialization, t.name, id, err)
	}
	path := filepath.Join(t.dir, RowStem(id, name)+t.metaExt)
	err = writeFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// ReadMetadata reads the metadata document of row id.
//
// Returns ErrRowNotFound if the table has no such row.
func (t *Table) ReadMetadata(id int) (Fields, error) {
	path, ok, err := t.FindRow(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%d", ErrRowNotFound, t.name, id)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read row %s/%d: %w", t.name, id, err)
	}
	fields, err := t.format.unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSerialization, path, err)
	}
	return fields, nil
}

// WritePayload writes data as the payload file of row id and returns its path.
func (t *Table) WritePayload(id int, name string, data []float64) (string, error) {
	path := filepath.Join(t.dir, RowStem(id, name)+t.dataExt)
	if err := writeFileAtomic(path, func(w io.Writer) error { return writeNpy(w, data) }); err != nil {
		return "", err
	}
	return path, nil
}

// ReadPayload reads the payload of row id. The payload file shares the stem of
// the row's metadata document.
//
// Returns false, and no error, when the row or its payload file does not exist.
func (t *Table) ReadPayload(id int) ([]float64, bool, error) {
	meta, ok, err := t.FindRow(id)
	if err != nil || !ok {
		return nil, false, err
	}
	path := strings.TrimSuffix(meta, t.metaExt) + t.dataExt
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to open payload %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	fi, err := f.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat payload %s: %w", path, err)
	}
	data, err := readNpy(f, fi.Size())
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrSerialization, path, err)
	}
	return data, true, nil
}

// writeFileAtomic writes through a temporary file in the target directory and
// renames it into place, so a failed write leaves nothing behind.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		return errors.Join(fmt.Errorf("failed to write %s: %w", path, err), f.Close(), os.Remove(tmp))
	}
	if err := f.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Join(fmt.Errorf("failed to rename %s into place: %w", path, err), os.Remove(tmp))
	}
	return nil
}
