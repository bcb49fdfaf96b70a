package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maruel/ixstore/internal/dirdb"
	"github.com/maruel/ixstore/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `# time: 2021-05-04 12:00:00
# unixtime: 1620129600
# Comment: Pt foil
M2,0,1.5e-10
M2,1000,2.5e-10
M4,0,3e-11
`

// run executes the CLI with args against the data root and returns its output.
func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&slog.LevelVar{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func mustRun(t *testing.T, root string, args ...string) string {
	t.Helper()
	out, err := run(t, root, args...)
	require.NoError(t, err, "ixstore %s\n%s", strings.Join(args, " "), out)
	return out
}

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))
	return path
}

func TestCLI(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	assert.Equal(t, "0\n", mustRun(t, root, "import", writeExport(t)), "measurement id")
	assert.Equal(t, "data_series\nmeasurement\n", mustRun(t, root, "tables"))

	ls := mustRun(t, root, "ls", series.TableSeries)
	assert.Contains(t, ls, "1  M2\n")
	assert.Contains(t, ls, "2  M4-x\n")

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, root, "show", series.TableMeasurement, "0")), &meta))
	assert.Equal(t, "Pt foil", meta["sample_name"])
	assert.Equal(t, "MS", meta["technique"])
	assert.Equal(t, []any{0.0, 1.0, 2.0, 3.0}, meta["s_ids"])

	assert.Equal(t, "0\n1\n", mustRun(t, root, "data", series.TableSeries, "0"), "times are scaled to seconds")
	assert.Equal(t, "4\n", mustRun(t, root, "next-id", series.TableSeries))
	assert.Equal(t, "0\n", mustRun(t, root, "next-id", "missing"))
	assert.Contains(t, mustRun(t, root, "schema", series.TableMeasurement), "s_ids")
}

func TestCLIErrors(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	mustRun(t, root, "import", writeExport(t))
	tests := []struct {
		name string
		args []string
	}{
		{"missing row", []string{"show", "measurement", "7"}},
		{"bad id", []string{"show", "measurement", "x"}},
		{"no payload", []string{"data", "measurement", "0"}},
		{"unknown schema", []string{"schema", "nope"}},
		{"no history", []string{"log"}},
		{"bad format", []string{"--format", "xml", "tables"}},
		{"bad log level", []string{"--log-level", "loud", "tables"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, root, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCLIGitAndConfig(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	cfg := "git: true\nformat: yaml\nmeta-ext: .meta\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "ixstore.yaml"), []byte(cfg), 0o644))

	mustRun(t, root, "import", writeExport(t))
	row := "measurement/0_2021-05-04 12:00:00.meta"
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(row)))
	require.NoError(t, err, "config file not applied")
	assert.Contains(t, mustRun(t, root, "log", row), "save measurement/0")
	assert.Contains(t, mustRun(t, root, "--json", "tables"), `"measurement"`)
}

type note struct {
	dirdb.Binding
	name string
}

func (n *note) TableName() string             { return "note" }
func (n *note) DisplayName() string           { return n.name }
func (n *note) Fields() (dirdb.Fields, error) { return dirdb.Fields{"name": n.name}, nil }

func TestWatchStore(t *testing.T) {
	s, err := dirdb.New(dirdb.Options{Root: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()
	events := make(chan rowEvent, 100)
	done := make(chan error, 1)
	go func() {
		done <- watchStore(ctx, s, func(r rowEvent) { events <- r })
	}()
	// Keep writing until the watcher, which starts asynchronously, sees a row.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case r := <-events:
			assert.Equal(t, "note", r.Table)
			assert.Equal(t, "hello_world", r.Name)
			cancel()
			assert.ErrorIs(t, <-done, context.Canceled)
			return
		case <-tick.C:
			_, err := s.Save(&note{name: "hello_world"})
			require.NoError(t, err)
		case <-ctx.Done():
			t.Fatal("no row event received")
		}
	}
}
