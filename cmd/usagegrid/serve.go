package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgoulah/usagegrid/internal/cache"
	"github.com/jgoulah/usagegrid/internal/feed"
	"github.com/jgoulah/usagegrid/internal/server"
	"github.com/jgoulah/usagegrid/internal/usage"
	"github.com/jgoulah/usagegrid/pkg/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveListen string
	serveDate   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live dashboard over HTTP",
	Long: `Starts an HTTP server that renders the dashboard on request. The feed is
fetched at most once per cache TTL; concurrent requests share a single fetch.

Routes: / (dashboard), /chart.svg, /api/summary, POST /refresh, /healthz, /metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, else :8080)")
	serveCmd.Flags().StringVar(&serveDate, "date", "", "calendar date feed times belong to (default today)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newFeedClient(cfg, serveDate, logger)
	if err != nil {
		return err
	}

	c, err := cache.New(cfg.GetCacheTTL())
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer c.Close()

	opts := groupOptions(cfg)
	load := func(ctx context.Context) (*models.Dashboard, error) {
		return usage.Build(feed.Load(ctx, client, logger), client.URL(), opts), nil
	}

	addr := serveListen
	if addr == "" {
		addr = cfg.GetListenAddr()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving dashboard", zap.String("addr", addr), zap.String("feed", client.URL()), zap.Duration("cache_ttl", cfg.GetCacheTTL()))
	fmt.Printf("Serving dashboard on %s (Ctrl+C to stop)\n", addr)

	srv := server.New(load, c, renderOptions(cfg), logger)
	return srv.Run(ctx, addr)
}
