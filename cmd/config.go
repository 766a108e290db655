package cmd

import (
	"fmt"
	"path/filepath"

	"photo-reconciler/core/config"

	"github.com/spf13/cobra"
)

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

// configInitCmd writes a default configuration file.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default photo-reconciler.toml into the config directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(configDir, config.FileName+".toml")
		if err := config.Init(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	RootCmd.AddCommand(configCmd)
}
