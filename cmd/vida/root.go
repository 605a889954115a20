package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/vidago/vida/internal/config"
)

const defaultConfigPath = "config/vida.toml"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the vida CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vida",
		Short: "vida - a scripted adventure engine",
		Long: `vida runs point-and-click adventure games described by a yaml
manifest and lua scripts, and can replay recorded walkthroughs headless.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (env VIDA_CONFIG)")

	cmd.AddCommand(newPlayCmd())
	cmd.AddCommand(newWalkthroughCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newRunsCmd())

	return cmd
}

// configPath picks the --config flag, then VIDA_CONFIG, then the default
// location. explicit reports whether the user named the file.
func configPath() (path string, explicit bool) {
	if configFile != "" {
		return configFile, true
	}
	if p := os.Getenv("VIDA_CONFIG"); p != "" {
		return p, true
	}
	return defaultConfigPath, false
}

// loadConfig reads the configured file. Without an explicit path a missing
// default file means built-in defaults.
func loadConfig() (*config.Config, error) {
	path, explicit := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config.Defaults(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
