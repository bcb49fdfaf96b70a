// Commands writing to the store.

package main

import (
	"fmt"
	"log/slog"

	"github.com/maruel/ixstore/internal/cinfdata"
	"github.com/spf13/cobra"
)

func (a *app) importCmd() *cobra.Command {
	var token string
	var technique string
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a cinfdata text export as a measurement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := cinfdata.OpenCSV(args[0])
			if err != nil {
				return err
			}
			r := cinfdata.NewReader()
			if technique != "" {
				r.Technique = technique
			}
			m, err := r.ReadMS(cmd.Context(), src, token)
			if err != nil {
				return err
			}
			s, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			b, err := s.Save(m)
			if err != nil {
				return err
			}
			all, _ := m.Series()
			slog.Info("imported", "file", args[0], "measurement", b.ID(), "series", len(all))
			if a.json {
				return printJSON(cmd.OutOrStdout(), rowEntry{ID: b.ID(), Name: m.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "group to import, matched against the time or comment metadata")
	cmd.Flags().StringVar(&technique, "technique", "", "technique recorded on the measurement (default \"MS\")")
	return cmd
}
