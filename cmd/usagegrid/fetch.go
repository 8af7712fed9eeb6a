package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var fetchDate string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the usage feed and store it as a snapshot",
	Long: `Downloads the tab-separated usage feed, parses it, and stores every record
in the local database as a new snapshot. Stored snapshots can later be rendered
with 'render --snapshot <id>'.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "calendar date feed times belong to (default today)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Fetch started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newFeedClient(cfg, fetchDate, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Fetching %s...\n", client.URL())
	records, err := client.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching feed: %w", err)
	}
	fmt.Printf("✓ Parsed %d records\n", len(records))

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	id, err := db.InsertSnapshot(client.URL(), time.Now(), records)
	if err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}

	fmt.Printf("✓ Stored snapshot %s\n", id)
	return nil
}
