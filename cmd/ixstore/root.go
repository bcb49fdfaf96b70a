// Root command for the ixstore CLI.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by the subcommands.
type app struct {
	ll        *slog.LevelVar
	configDir string
	json      bool
	cfg       *viper.Viper
}

func newRootCmd(ll *slog.LevelVar) *cobra.Command {
	a := &app{ll: ll}
	version, _, _, _ := getBuildInfo()
	root := &cobra.Command{
		Use:           "ixstore",
		Short:         "Inspect and fill a directory-backed measurement store",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), a.configDir)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return setLogLevel(a.ll, cfg.GetString(cfgKeyLogLevel))
		},
	}
	d := root.PersistentFlags()
	d.StringVar(&a.configDir, "config-dir", "", "directory holding ixstore.yaml (default: the data root)")
	d.String(cfgKeyRoot, "", "data root directory (default \"./ixdat_data\")")
	d.String(cfgKeyMetaExt, "", "metadata file extension (default \".ix\")")
	d.String(cfgKeyDataExt, "", "payload file extension (default \".npy\")")
	d.String(cfgKeyFormat, "", "metadata format: json or yaml (default \"json\")")
	d.Bool(cfgKeyGit, false, "record every row written in a git history of the data root")
	d.String(cfgKeyLogLevel, "", "log level: debug, info, warn or error (default \"info\")")
	d.BoolVar(&a.json, "json", false, "output as JSON")

	root.AddCommand(
		a.tablesCmd(),
		a.lsCmd(),
		a.showCmd(),
		a.dataCmd(),
		a.nextIDCmd(),
		a.importCmd(),
		a.schemaCmd(),
		a.watchCmd(),
		a.logCmd(),
	)
	return root
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
