package main

import (
	"fmt"
	"time"

	"github.com/jgoulah/usagegrid/internal/publisher"
	"github.com/jgoulah/usagegrid/internal/usage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	publishSnapshot string
	publishDate     string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish per-device usage summaries to MQTT",
	Long: `Builds the usage grid and publishes one retained JSON message per device to
{topic_prefix}/{device_id}/summary on the configured MQTT broker.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishSnapshot, "snapshot", "", "publish a stored snapshot id (or 'latest') instead of fetching")
	publishCmd.Flags().StringVar(&publishDate, "date", "", "calendar date feed times belong to (default today)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.MQTT.Enabled {
		return fmt.Errorf("MQTT is not enabled in config")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dash, err := loadDashboard(cmd.Context(), cfg, publishSnapshot, publishDate, logger)
	if err != nil {
		return fmt.Errorf("loading dashboard: %w", err)
	}

	summaries := usage.Summaries(dash.Groups)
	if len(summaries) == 0 {
		fmt.Println("No device summaries to publish")
		return nil
	}

	pub, err := publisher.New(cfg.MQTT, cfg.GetTopicPrefix())
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	var published, failed int
	for _, s := range summaries {
		if err := pub.Publish(s); err != nil {
			logger.Warn("publish failed", zap.Int("device_id", s.DeviceID), zap.Error(err))
			failed++
			continue
		}
		published++
	}

	fmt.Printf("✓ Published %d summaries to %s\n", published, cfg.MQTT.Broker)
	if failed > 0 {
		return fmt.Errorf("%d of %d summaries failed to publish", failed, len(summaries))
	}
	return nil
}
