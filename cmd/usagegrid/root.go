package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jgoulah/usagegrid/internal/config"
	"github.com/jgoulah/usagegrid/internal/database"
	"github.com/jgoulah/usagegrid/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "usagegrid",
	Short: "Chart and tabulate device usage telemetry",
	Long: `UsageGrid fetches a tab-separated device usage feed, groups it by device,
and renders a dashboard: a time-series line chart per device plus a grid of
peak and total usage. The dashboard can be written to a file, served over
HTTP, captured as a PNG, or its summaries published to MQTT.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "snapshot database file (default is ./usage.db)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "usage.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// newLogger builds the logger described by the config
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.Setup(cfg.Log.File, cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}
	return logger, nil
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}
