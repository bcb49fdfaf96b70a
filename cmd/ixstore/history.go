package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) logCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "log [path]",
		Short: "Show the git history of the store, or of one file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openHistory(a.cfg)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			commits, err := repo.Log(path, n)
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), commits)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range commits {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Hash[:10], c.Date.Format(time.DateTime), c.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&n, "max", "n", 20, "maximum number of commits")
	return cmd
}
