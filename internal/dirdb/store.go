package dirdb

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Store persists objects as rows in a directory tree, one directory per table.
type Store struct {
	opts Options
	// root and info identify the store; computed once in New.
	root string
	info os.FileInfo

	// mu serializes id allocation within this process.
	mu sync.Mutex
}

// New opens the store described by opts, creating the root directory if needed.
// Unset options take their documented defaults.
func New(opts Options) (*Store, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := os.MkdirAll(opts.Root, 0o755); err != nil { //nolint:gosec // G301: data directories are world readable
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	opts.Root = root
	return &Store{opts: opts, root: root, info: info}, nil
}

// Name returns a display name for the store.
func (s *Store) Name() string {
	return "DirBackend(" + s.root + ")"
}

// Root returns the canonical root directory.
func (s *Store) Root() string {
	return s.root
}

// Options returns the effective options.
func (s *Store) Options() Options {
	return s.opts
}

// Equal reports whether s and other are the same backend: the same instance,
// or both opened on the same canonical directory that was the same file
// system object when each was opened.
func (s *Store) Equal(other *Store) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.root == other.root && os.SameFile(s.info, other.info)
}

// Table returns the table with the given name. The directory is not created.
func (s *Store) Table(name string) *Table {
	return &Table{
		name:    name,
		dir:     filepath.Join(s.root, name),
		metaExt: s.opts.MetaExt,
		dataExt: s.opts.DataExt,
		format:  s.opts.Format,
	}
}

// Tables returns the names of the table directories, sorted.
func (s *Store) Tables() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && e.Name()[0] != '.' {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Contains reports whether table has a row id.
func (s *Store) Contains(table string, id int) (bool, error) {
	return s.Table(table).Contains(id)
}

// Save persists obj and binds it to s.
//
// Data objects owned by obj are saved first, in order, through SaveDataObj, so
// that obj's metadata embeds their assigned ids. A data object carrying bulk
// data is itself saved through SaveDataObj. Save mutates obj: on success its
// Binding holds s and the new id, and a copy of that binding is returned.
//
// Only data objects are deduplicated. Saving a plain object again writes a new
// row with a new id, recording its current state; its owned data objects that
// are unchanged rows of s are reused.
func (s *Store) Save(obj Storable) (Binding, error) {
	if d, ok := obj.(DataObject); ok && d.HasBulkData() {
		return s.SaveDataObj(d)
	}
	if err := s.saveOwned(obj); err != nil {
		return Binding{}, err
	}
	table := obj.TableName()
	if table == "" {
		return Binding{}, fmt.Errorf("%w: %T", ErrNoTableName, obj)
	}
	fields, err := obj.Fields()
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %T: %w", ErrSerialization, obj, err)
	}
	id, path, err := s.addRow(table, obj.DisplayName(), fields)
	if err != nil {
		return Binding{}, err
	}
	b := obj.StoreBinding()
	b.bind(s, id)
	s.commit(table, id, path)
	return *b, nil
}

// SaveDataObj persists a data object, writing its bulk array to a payload
// file next to the metadata document, and binds it to s.
//
// If the object is already bound to s and its row still exists, nothing is
// written and the existing binding is returned. An object without data (nil
// array) gets no payload file. When the payload cannot be written the
// metadata document is removed and the object keeps its previous binding.
func (s *Store) SaveDataObj(d DataObject) (Binding, error) {
	b := d.StoreBinding()
	table := d.TableName()
	if table == "" {
		return Binding{}, fmt.Errorf("%w: %T", ErrNoTableName, d)
	}
	if b.Bound() && b.Store().Equal(s) {
		ok, err := s.Contains(table, b.ID())
		if err != nil {
			return Binding{}, err
		}
		if ok {
			slog.Debug("dirdb: already saved", "table", table, "id", b.ID())
			return *b, nil
		}
	}
	if err := s.saveOwned(d); err != nil {
		return Binding{}, err
	}
	fields, err := d.Fields()
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %T: %w", ErrSerialization, d, err)
	}
	data, err := toFloats(fields[DataField])
	if err != nil {
		return Binding{}, err
	}
	meta := make(Fields, len(fields)+1)
	for k, v := range fields {
		meta[k] = v
	}
	meta[DataField] = nil
	name := d.DisplayName()
	id, metaPath, err := s.addRow(table, name, meta)
	if err != nil {
		return Binding{}, err
	}
	files := []string{metaPath}
	if data != nil {
		dataPath, err := s.Table(table).WritePayload(id, name, data)
		if err != nil {
			// Drop the row so a retry does not take it for a complete one.
			return Binding{}, errors.Join(err, os.Remove(metaPath))
		}
		files = append(files, dataPath)
	}
	b.bind(s, id)
	s.commit(table, id, files...)
	return *b, nil
}

// Open reads row id of kind's table and reconstructs the object, bound to s.
// Bulk payloads are not read; see LoadObjData.
//
// Returns ErrRowNotFound if the row does not exist.
func (s *Store) Open(kind Kind, id int) (Storable, error) {
	table := kind.TableName()
	if table == "" {
		return nil, fmt.Errorf("%w: %T", ErrNoTableName, kind)
	}
	fields, err := s.Table(table).ReadMetadata(id)
	if err != nil {
		return nil, err
	}
	obj, err := kind.FromFields(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct %s/%d: %w", table, id, err)
	}
	obj.StoreBinding().bind(s, id)
	return obj, nil
}

// ReadMetadata returns the raw metadata of a row.
func (s *Store) ReadMetadata(table string, id int) (Fields, error) {
	return s.Table(table).ReadMetadata(id)
}

// LoadObjData reads the payload of a data object bound to s.
//
// It returns false, without touching the file system, when the object's kind
// has no bulk data or the object is not bound to s, and false when the payload
// file does not exist. Missing data is never an error.
func (s *Store) LoadObjData(d DataObject) ([]float64, bool, error) {
	if !d.HasBulkData() {
		return nil, false, nil
	}
	b := d.StoreBinding()
	if !b.Bound() || !b.Store().Equal(s) {
		return nil, false, nil
	}
	return s.Table(d.TableName()).ReadPayload(b.ID())
}

// NextID returns the id the next row saved to table gets.
func (s *Store) NextID(table string) (int, error) {
	return s.Table(table).NextID()
}

func (s *Store) saveOwned(obj Storable) error {
	o, ok := obj.(Owner)
	if !ok {
		return nil
	}
	for _, d := range o.DataObjects() {
		if d == nil {
			continue
		}
		if _, err := s.SaveDataObj(d); err != nil {
			return fmt.Errorf("failed to save data object %q of %q: %w", d.DisplayName(), obj.DisplayName(), err)
		}
	}
	return nil
}

// addRow allocates an id in table and writes the metadata document.
func (s *Store) addRow(table, name string, fields Fields) (int, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.Table(table)
	if err := t.EnsureExists(); err != nil {
		return 0, "", err
	}
	id, err := t.NextID()
	if err != nil {
		return 0, "", err
	}
	path, err := t.WriteMetadata(id, name, fields)
	if err != nil {
		return 0, "", err
	}
	slog.Debug("dirdb: row written", "table", table, "id", id, "name", name)
	return id, path, nil
}

// commit hands the written files to the configured Committer. Failures are
// logged; the rows are already on disk.
func (s *Store) commit(table string, id int, paths ...string) {
	if s.opts.Committer == nil {
		return
	}
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			rel = p
		}
		files = append(files, filepath.ToSlash(rel))
	}
	if err := s.opts.Committer.Commit(fmt.Sprintf("save %s/%d", table, id), files); err != nil {
		slog.Warn("dirdb: failed to commit row", "table", table, "id", id, "err", err)
	}
}

// ListIDs returns the row ids of table, sorted ascending.
func (s *Store) ListIDs(table string) ([]int, error) {
	return s.Table(table).IDs()
}

// RowName returns the display name of a row as decoded from its file name.
func (s *Store) RowName(table string, id int) (string, error) {
	return s.Table(table).RowName(id)
}
