package dirdb

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// setupStore creates a store in the test's temp directory.
func setupStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Root == "" {
		opts.Root = filepath.Join(t.TempDir(), "data")
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTable(t *testing.T) {
	t.Run("missing table", func(t *testing.T) {
		tbl := setupStore(t, Options{}).Table("nothing")
		ids, err := tbl.IDs()
		if err != nil {
			t.Fatalf("IDs() error = %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("IDs() = %v, want none", ids)
		}
		next, err := tbl.NextID()
		if err != nil {
			t.Fatalf("NextID() error = %v", err)
		}
		if next != FirstID {
			t.Errorf("NextID() = %d, want %d", next, FirstID)
		}
		if _, ok, err := tbl.FindRow(0); err != nil || ok {
			t.Errorf("FindRow(0) = (%v, %v), want absent", ok, err)
		}
		if _, err := os.Stat(tbl.Dir()); !os.IsNotExist(err) {
			t.Errorf("table directory was created by a read: %v", err)
		}
	})

	t.Run("EnsureExists", func(t *testing.T) {
		tbl := setupStore(t, Options{}).Table("measurement")
		for range 2 {
			if err := tbl.EnsureExists(); err != nil {
				t.Fatalf("EnsureExists() error = %v", err)
			}
		}
		if fi, err := os.Stat(tbl.Dir()); err != nil || !fi.IsDir() {
			t.Fatalf("table directory missing: %v", err)
		}
	})

	t.Run("skips foreign entries", func(t *testing.T) {
		tbl := setupStore(t, Options{}).Table("t")
		if err := tbl.EnsureExists(); err != nil {
			t.Fatal(err)
		}
		touch(t, filepath.Join(tbl.Dir(), "0_a.ix"))
		touch(t, filepath.Join(tbl.Dir(), "0_a.npy"))
		touch(t, filepath.Join(tbl.Dir(), "5_b_c.ix"))
		touch(t, filepath.Join(tbl.Dir(), "notanumber_foo.ix"))
		touch(t, filepath.Join(tbl.Dir(), "README"))
		if err := os.Mkdir(filepath.Join(tbl.Dir(), "99_dir"), 0o755); err != nil {
			t.Fatal(err)
		}

		ids, err := tbl.IDs()
		if err != nil {
			t.Fatalf("IDs() error = %v", err)
		}
		if want := []int{0, 5}; !slices.Equal(ids, want) {
			t.Errorf("IDs() = %v, want %v", ids, want)
		}
		next, err := tbl.NextID()
		if err != nil {
			t.Fatal(err)
		}
		if next != 6 {
			t.Errorf("NextID() = %d, want 6", next)
		}
		name, err := tbl.RowName(5)
		if err != nil {
			t.Fatalf("RowName() error = %v", err)
		}
		if name != "b_c" {
			t.Errorf("RowName(5) = %q, want %q", name, "b_c")
		}
	})

	t.Run("FindRow matches metadata only", func(t *testing.T) {
		tbl := setupStore(t, Options{}).Table("t")
		if err := tbl.EnsureExists(); err != nil {
			t.Fatal(err)
		}
		touch(t, filepath.Join(tbl.Dir(), "3_only_payload.npy"))
		touch(t, filepath.Join(tbl.Dir(), "4_row.ix"))

		if ok, err := tbl.Contains(3); err != nil || ok {
			t.Errorf("Contains(3) = (%v, %v), want false", ok, err)
		}
		path, ok, err := tbl.FindRow(4)
		if err != nil || !ok {
			t.Fatalf("FindRow(4) = (%v, %v)", ok, err)
		}
		if filepath.Base(path) != "4_row.ix" {
			t.Errorf("FindRow(4) = %q", path)
		}
	})
}
