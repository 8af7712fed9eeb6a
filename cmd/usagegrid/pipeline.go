package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jgoulah/usagegrid/internal/config"
	"github.com/jgoulah/usagegrid/internal/feed"
	"github.com/jgoulah/usagegrid/internal/render"
	"github.com/jgoulah/usagegrid/internal/usage"
	"github.com/jgoulah/usagegrid/pkg/models"
	"go.uber.org/zap"
)

var now = time.Now

// newFeedClient builds the feed client from config. anchorFlag overrides the
// configured anchor date; with neither set every fetch lands on the day it
// runs.
func newFeedClient(cfg *config.Config, anchorFlag string, logger *zap.Logger) (*feed.Client, error) {
	value := cfg.Feed.AnchorDate
	if anchorFlag != "" {
		value = anchorFlag
	}

	var anchor feed.AnchorFunc = func() time.Time { return now() }
	if strings.TrimSpace(value) != "" {
		t, err := feed.ParseAnchor(value, now())
		if err != nil {
			return nil, err
		}
		anchor = feed.FixedAnchor(t)
	}
	return feed.NewClient(cfg.GetFeedURL(), cfg.GetFeedTimeout(), anchor, logger), nil
}

func groupOptions(cfg *config.Config) usage.Options {
	return usage.Options{Exclude: cfg.GetExcludeDevices()}
}

func renderOptions(cfg *config.Config) render.Options {
	return render.Options{
		Chart: render.ChartOptions{
			Width:        cfg.GetChartWidth(),
			Height:       cfg.GetChartHeight(),
			UsageCeiling: cfg.GetUsageCeiling(),
		},
		GridColumns: cfg.GetGridColumns(),
	}
}

// loadDashboard produces a dashboard from the live feed, or from a stored
// snapshot when snapshotID is set ("latest" picks the newest)
func loadDashboard(ctx context.Context, cfg *config.Config, snapshotID, anchorFlag string, logger *zap.Logger) (*models.Dashboard, error) {
	if snapshotID != "" {
		return loadSnapshot(cfg, snapshotID)
	}

	client, err := newFeedClient(cfg, anchorFlag, logger)
	if err != nil {
		return nil, err
	}
	records := feed.Load(ctx, client, logger)
	return usage.Build(records, client.URL(), groupOptions(cfg)), nil
}

func loadSnapshot(cfg *config.Config, snapshotID string) (*models.Dashboard, error) {
	db, err := openDB()
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if snapshotID == "latest" {
		if snapshotID, err = db.LatestSnapshotID(); err != nil {
			return nil, err
		}
	}

	snap, records, err := db.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}
	return usage.Build(records, "snapshot "+snap.ID, groupOptions(cfg)), nil
}
