// Configuration loading for the ixstore CLI.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maruel/ixstore/internal/dirdb"
	"github.com/maruel/ixstore/internal/history"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "ixstore"
	configFileType = "yaml"
	envPrefix      = "IXSTORE"

	cfgKeyRoot     = "root"
	cfgKeyMetaExt  = "meta-ext"
	cfgKeyDataExt  = "data-ext"
	cfgKeyFormat   = "format"
	cfgKeyGit      = "git"
	cfgKeyLogLevel = "log-level"

	gitName  = "ixstore"
	gitEmail = "ixstore@localhost"
)

// loadConfig merges flags, IXSTORE_* environment variables and ixstore.yaml.
//
// The config file is looked up in configDir, or in the data root when empty.
// A missing file is not an error.
func loadConfig(flags *pflag.FlagSet, configDir string) (*viper.Viper, error) {
	v := viper.New()
	d := dirdb.DefaultOptions()
	v.SetDefault(cfgKeyRoot, d.Root)
	v.SetDefault(cfgKeyMetaExt, d.MetaExt)
	v.SetDefault(cfgKeyDataExt, d.DataExt)
	v.SetDefault(cfgKeyFormat, string(d.Format))
	v.SetDefault(cfgKeyGit, false)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	if configDir == "" {
		configDir = v.GetString(cfgKeyRoot)
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// storeOptions returns the store options described by v.
func storeOptions(v *viper.Viper) dirdb.Options {
	return dirdb.Options{
		Root:    v.GetString(cfgKeyRoot),
		MetaExt: v.GetString(cfgKeyMetaExt),
		DataExt: v.GetString(cfgKeyDataExt),
		Format:  dirdb.Format(v.GetString(cfgKeyFormat)),
	}
}

// openStore opens the configured store, recording writes in git when enabled.
func openStore(v *viper.Viper) (*dirdb.Store, error) {
	opts := storeOptions(v)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if v.GetBool(cfgKeyGit) {
		repo, err := history.Open(opts.Root, gitName, gitEmail)
		if err != nil {
			return nil, err
		}
		opts.Committer = repo
	}
	return dirdb.New(opts)
}

// openHistory opens the git history of the configured data root.
func openHistory(v *viper.Viper) (*history.Repo, error) {
	return history.OpenExisting(v.GetString(cfgKeyRoot), gitName, gitEmail)
}
