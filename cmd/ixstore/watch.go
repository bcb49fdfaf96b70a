package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/ixstore/internal/dirdb"
	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report rows as they are written to the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			return watchStore(cmd.Context(), s, func(r rowEvent) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", r.Table, r.ID, r.Name)
			})
		},
	}
}

// rowEvent is a metadata document appearing in a table directory.
type rowEvent struct {
	Table string
	ID    int
	Name  string
}

// watchStore calls fn for every row written to s until ctx is done. New table
// directories are watched as they appear.
func watchStore(ctx context.Context, s *dirdb.Store, fn func(rowEvent)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(s.Root()); err != nil {
		return err
	}
	tables, err := s.Tables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		if err := w.Add(s.Table(t).Dir()); err != nil {
			return err
		}
	}
	metaExt := s.Options().MetaExt
	slog.InfoContext(ctx, "watching", "root", s.Root(), "tables", len(tables))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Rows are renamed into place, which shows as Create.
			if !event.Has(fsnotify.Create) {
				continue
			}
			dir, base := filepath.Split(event.Name)
			if filepath.Clean(dir) == s.Root() {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() && !strings.HasPrefix(base, ".") {
					if err := w.Add(event.Name); err != nil {
						slog.WarnContext(ctx, "failed to watch table", "table", base, "err", err)
					}
				}
				continue
			}
			if !strings.HasSuffix(base, metaExt) {
				continue
			}
			id, ok := dirdb.IDFromPath(base)
			if !ok {
				continue
			}
			fn(rowEvent{Table: filepath.Base(dir), ID: id, Name: dirdb.NameFromPath(base)})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "error watching store", "err", err)
		}
	}
}
