// Commands reading tables and rows.

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/maruel/ixstore/internal/dirdb"
	"github.com/spf13/cobra"
)

// rawRow is a row of any table, opened without knowing its kind.
type rawRow struct {
	dirdb.Binding
	table  string
	fields dirdb.Fields
}

func (r *rawRow) TableName() string             { return r.table }
func (r *rawRow) DisplayName() string           { return r.fields.String("name") }
func (r *rawRow) Fields() (dirdb.Fields, error) { return r.fields, nil }
func (r *rawRow) HasBulkData() bool             { return true }

// rawKind opens rows of table as rawRow.
type rawKind string

func (k rawKind) TableName() string { return string(k) }

func (k rawKind) FromFields(f dirdb.Fields) (dirdb.Storable, error) {
	return &rawRow{table: string(k), fields: f}, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid row id %q", s)
	}
	return id, nil
}

func (a *app) tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			names, err := s.Tables()
			if err != nil {
				return err
			}
			if a.json {
				if names == nil {
					names = []string{}
				}
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

type rowEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (a *app) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <table>",
		Short: "List the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			ids, err := s.ListIDs(args[0])
			if err != nil {
				return err
			}
			rows := make([]rowEntry, 0, len(ids))
			for _, id := range ids {
				name, err := s.RowName(args[0], id)
				if err != nil {
					return err
				}
				rows = append(rows, rowEntry{ID: id, Name: name})
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s\n", r.ID, r.Name)
			}
			return w.Flush()
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <table> <id>",
		Short: "Print the metadata of a row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			s, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			fields, err := s.ReadMetadata(args[0], id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fields)
		},
	}
}

func (a *app) dataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "data <table> <id>",
		Short: "Print the payload of a row, one value per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			s, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			obj, err := s.Open(rawKind(args[0]), id)
			if err != nil {
				return err
			}
			data, ok, err := s.LoadObjData(obj.(*rawRow))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s/%d has no payload", args[0], id)
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), data)
			}
			for _, v := range data {
				fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'g', -1, 64))
			}
			return nil
		},
	}
}

func (a *app) nextIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-id <table>",
		Short: "Print the id the next row saved to a table gets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			id, err := s.NextID(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
