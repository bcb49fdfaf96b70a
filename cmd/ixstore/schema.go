package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/maruel/ixstore/internal/dirdb"
	"github.com/maruel/ixstore/internal/series"
	"github.com/spf13/cobra"
)

// records maps table names to the record describing their metadata.
var records = map[string]any{
	series.TableSeries:      series.SeriesRecord{},
	series.TableMeasurement: series.MeasurementRecord{},
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Describe the metadata columns of a known table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, ok := records[args[0]]
			if !ok {
				known := make([]string, 0, len(records))
				for k := range records {
					known = append(known, k)
				}
				slices.Sort(known)
				return fmt.Errorf("unknown table %q; known tables: %s", args[0], strings.Join(known, ", "))
			}
			cols, err := dirdb.Columns(rec)
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), cols)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range cols {
				req := ""
				if c.Required {
					req = "required"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Type, req, c.Description)
			}
			return w.Flush()
		},
	}
}
