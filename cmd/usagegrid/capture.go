package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jgoulah/usagegrid/internal/capture"
	"github.com/jgoulah/usagegrid/internal/render"
	"github.com/spf13/cobra"
)

var (
	captureOut      string
	captureSnapshot string
	captureDate     string
	captureVisible  bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Render the dashboard and save a PNG screenshot of it",
	Long: `Renders the dashboard to a temporary HTML file, opens it in headless Chrome
and saves a full-page PNG screenshot.`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVarP(&captureOut, "out", "o", "", "PNG output file (default from config, else ./dashboard.png)")
	captureCmd.Flags().StringVar(&captureSnapshot, "snapshot", "", "capture a stored snapshot id (or 'latest') instead of fetching")
	captureCmd.Flags().StringVar(&captureDate, "date", "", "calendar date feed times belong to (default today)")
	captureCmd.Flags().BoolVar(&captureVisible, "visible", false, "show the browser window")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Capture started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dash, err := loadDashboard(cmd.Context(), cfg, captureSnapshot, captureDate, logger)
	if err != nil {
		return fmt.Errorf("loading dashboard: %w", err)
	}

	dir, err := os.MkdirTemp("", "usagegrid-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "dashboard.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", htmlPath, err)
	}
	if err := render.Dashboard(f, dash, renderOptions(cfg)); err != nil {
		f.Close()
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", htmlPath, err)
	}

	out := captureOut
	if out == "" {
		out = cfg.GetScreenshotPath()
	}

	fmt.Println("Opening dashboard in Chrome...")
	opts := capture.Options{
		Width:   int64(cfg.GetChartWidth()) + 200,
		Height:  int64(cfg.GetChartHeight()) + 400,
		Visible: captureVisible,
	}
	if err := capture.ScreenshotFile(cmd.Context(), htmlPath, out, opts); err != nil {
		return fmt.Errorf("capturing screenshot: %w", err)
	}

	fmt.Printf("✓ Saved screenshot to %s\n", out)
	return nil
}
