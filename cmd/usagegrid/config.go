package main

import (
	"fmt"
	"os"

	"github.com/jgoulah/usagegrid/internal/config"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with every default spelled out",
	Long: `Writes config.yaml (or the --config path) with all settings at their default
values, ready to edit. An existing file is left alone unless --force is given.`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := getConfigPath()

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(path, config.Defaults()); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("✓ Wrote default config to %s\n", path)
	return nil
}
