package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jgoulah/usagegrid/internal/usage"
	"github.com/jgoulah/usagegrid/pkg/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoSeries is returned when no device has enough records to draw a line
var ErrNoSeries = errors.New("no device has enough records to chart")

// ChartOptions controls chart geometry
type ChartOptions struct {
	Width        int
	Height       int
	UsageCeiling float64 // Usage at or above this counts as 0 for the Y domain
}

const lineWidth = 6

// Chart writes the usage line chart as SVG: one line per displayable device,
// stroked in the device color. The X domain spans every record's timestamp
// and the Y domain spans every record's usage below the ceiling.
func Chart(w io.Writer, dash *models.Dashboard, opts ChartOptions) error {
	groups := usage.Displayable(dash.Groups)
	if len(groups) == 0 {
		return ErrNoSeries
	}

	series := make([]chart.Series, 0, len(groups))
	for _, g := range groups {
		xs := make([]time.Time, len(g.Records))
		ys := make([]float64, len(g.Records))
		for i, r := range g.Records {
			xs[i] = r.Timestamp
			ys[i] = r.Usage
		}
		series = append(series, chart.TimeSeries{
			Name:    fmt.Sprintf("DeviceId: %d", g.DeviceID),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: hexColor(g.Color),
				StrokeWidth: lineWidth,
			},
		})
	}

	minX, maxX := timeDomain(dash.Records)
	minY, maxY := usageDomain(dash.Records, opts.UsageCeiling)

	ch := chart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Right: 50, Bottom: 50, Left: 100},
		},
		XAxis: chart.XAxis{
			Name:           "Date & Time",
			ValueFormatter: chart.TimeValueFormatterWithFormat("3:04 PM"),
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(minX), Max: chart.TimeToFloat64(maxX)},
		},
		YAxis: chart.YAxis{
			Name:  "Device Usage",
			Range: &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: series,
	}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

// timeDomain returns the first and last timestamps across records, padded
// to a one minute span when they coincide
func timeDomain(records []models.UsageRecord) (time.Time, time.Time) {
	var minT, maxT time.Time
	for i, r := range records {
		if i == 0 || r.Timestamp.Before(minT) {
			minT = r.Timestamp
		}
		if i == 0 || r.Timestamp.After(maxT) {
			maxT = r.Timestamp
		}
	}
	if !maxT.After(minT) {
		maxT = minT.Add(time.Minute)
	}
	return minT, maxT
}

// usageDomain returns the Y domain. Usage at or above the ceiling counts as 0,
// which keeps outlier spikes from flattening every other line.
func usageDomain(records []models.UsageRecord, ceiling float64) (float64, float64) {
	var minY, maxY float64
	for i, r := range records {
		v := r.Usage
		if ceiling > 0 && v >= ceiling {
			v = 0
		}
		if i == 0 || v < minY {
			minY = v
		}
		if i == 0 || v > maxY {
			maxY = v
		}
	}
	if maxY <= minY {
		maxY = minY + 1
	}
	return minY, maxY
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
