package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/jgoulah/usagegrid/internal/usage"
	"github.com/jgoulah/usagegrid/pkg/models"
)

const (
	titleDateFormat = "January 02, 2006"
	peakTimeFormat  = "03:04 PM"
)

// Options controls the dashboard page
type Options struct {
	Chart       ChartOptions
	GridColumns int // Legend cells per row
	Now         func() time.Time
}

type legendItem struct {
	DeviceID int
	Color    string
}

type gridRow struct {
	DeviceID int
	Peak     string
	PeakTime string
	Total    string
	Color    string
}

type pageData struct {
	Date        string
	Chart       template.HTML
	ChartWidth  int
	ChartHeight int
	Legend      []Row[legendItem]
	CellPercent float64
	Grid        []gridRow
	Source      string
	GeneratedAt string
}

var pageTemplate = template.Must(template.New("dashboard").Parse(tmplDashboard))

// Dashboard writes the full HTML page: title, inline SVG chart, legend and
// the per-device usage grid
func Dashboard(w io.Writer, dash *models.Dashboard, opts Options) error {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	cols := opts.GridColumns
	if cols < 1 {
		cols = 4
	}

	data := pageData{
		Date:        dash.Date.Format(titleDateFormat),
		ChartWidth:  opts.Chart.Width,
		ChartHeight: opts.Chart.Height,
		CellPercent: float64(CellWidth(cols)) / gridUnits * 100,
		Source:      dash.Source,
		GeneratedAt: now().Format(time.RFC1123),
	}

	var svg bytes.Buffer
	switch err := Chart(&svg, dash, opts.Chart); {
	case err == nil:
		// Rendered by go-chart, not user input
		data.Chart = template.HTML(svg.String())
	case errors.Is(err, ErrNoSeries):
	default:
		return err
	}

	var legend []legendItem
	for _, s := range usage.Summaries(dash.Groups) {
		legend = append(legend, legendItem{DeviceID: s.DeviceID, Color: s.Color})
		data.Grid = append(data.Grid, gridRow{
			DeviceID: s.DeviceID,
			Peak:     formatNumber(s.PeakUsage),
			PeakTime: s.PeakTime.Format(peakTimeFormat),
			Total:    formatNumber(s.TotalUsage),
			Color:    s.Color,
		})
	}
	data.Legend = Chunk(legend, cols)

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("executing dashboard template: %w", err)
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
