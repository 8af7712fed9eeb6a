package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jgoulah/usagegrid/internal/usage"
	"github.com/jgoulah/usagegrid/pkg/models"
)

var base = time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func fixedColor(id int) string {
	switch id {
	case 7:
		return "#FF0000"
	case 3:
		return "#0000FF"
	}
	return "#00FF00"
}

func sampleDashboard() *models.Dashboard {
	records := []models.UsageRecord{
		{DeviceID: 7, Usage: 5, Timestamp: at(14, 0)},
		{DeviceID: 3, Usage: 2, Timestamp: at(9, 0)},
		{DeviceID: 5537, Usage: 900, Timestamp: at(10, 0)},
		{DeviceID: 7, Usage: 9, Timestamp: at(13, 5)},
		{DeviceID: 3, Usage: 4.5, Timestamp: at(7, 0)},
		{DeviceID: 11, Usage: 1, Timestamp: at(12, 0)},
	}
	return usage.Build(records, "http://example.test/usage.tsv", usage.Options{
		Exclude: []int{5537},
		Color:   fixedColor,
	})
}

func TestChunk(t *testing.T) {
	rows := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if len(rows[2].Cells) != 1 || rows[2].Cells[0] != 5 {
		t.Fatalf("last row: got %v", rows[2].Cells)
	}
	if got := Chunk([]int{1, 2}, 0); len(got) != 2 {
		t.Fatalf("cols < 1 should lay out one per row, got %d rows", len(got))
	}
	if got := Chunk[int](nil, 3); len(got) != 0 {
		t.Fatalf("no items should give no rows, got %d", len(got))
	}
}

func TestCellWidth(t *testing.T) {
	tests := map[int]int{1: 12, 3: 4, 4: 3, 5: 2, 24: 1, 0: 12}
	for cols, want := range tests {
		if got := CellWidth(cols); got != want {
			t.Errorf("CellWidth(%d) = %d, want %d", cols, got, want)
		}
	}
}

func TestUsageDomain(t *testing.T) {
	records := []models.UsageRecord{{Usage: 5}, {Usage: 250}, {Usage: 12}}
	minY, maxY := usageDomain(records, 200)
	if minY != 0 || maxY != 12 {
		t.Fatalf("usage at or above the ceiling should count as 0: got [%v, %v]", minY, maxY)
	}

	minY, maxY = usageDomain([]models.UsageRecord{{Usage: 3}}, 200)
	if minY != 3 || maxY != 4 {
		t.Fatalf("flat domain should be padded: got [%v, %v]", minY, maxY)
	}
}

func TestTimeDomain(t *testing.T) {
	minT, maxT := timeDomain(sampleDashboard().Records)
	if !minT.Equal(at(7, 0)) || !maxT.Equal(at(14, 0)) {
		t.Fatalf("time domain: got [%v, %v]", minT, maxT)
	}

	minT, maxT = timeDomain([]models.UsageRecord{{Timestamp: at(1, 0)}})
	if maxT.Sub(minT) != time.Minute {
		t.Fatalf("single timestamp should be padded, got %v", maxT.Sub(minT))
	}
}

func TestChartRendersSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, sampleDashboard(), ChartOptions{Width: 800, Height: 400, UsageCeiling: 200}); err != nil {
		t.Fatalf("Chart: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("expected SVG output, got %q", out[:min(len(out), 80)])
	}
	if !strings.Contains(out, "</svg>") {
		t.Fatal("expected closed SVG document")
	}

	// one stroked line per displayable device, in the device color
	lines := map[string]string{
		"device 7": "stroke-width:6;stroke:rgba(255,0,0,1.0)",
		"device 3": "stroke-width:6;stroke:rgba(0,0,255,1.0)",
	}
	for name, style := range lines {
		if n := strings.Count(out, style); n != 1 {
			t.Errorf("%s: expected one line styled %q, got %d", name, style, n)
		}
	}
	if n := strings.Count(out, "stroke-width:6;"); n != len(lines) {
		t.Errorf("expected %d device lines, got %d", len(lines), n)
	}
	// devices 11 (single record) and 5537 (excluded) are green
	if strings.Contains(out, "rgba(0,255,0,1.0)") {
		t.Error("single-record and excluded devices should not be drawn")
	}
}

func TestUsageDomainSpansExcludedRecords(t *testing.T) {
	dash := sampleDashboard()
	minY, maxY := usageDomain(dash.Records, 200)
	if minY != 0 || maxY != 9 {
		t.Fatalf("usage domain over all records: got [%v, %v]", minY, maxY)
	}
}

func TestChartNoSeries(t *testing.T) {
	dash := usage.Build([]models.UsageRecord{{DeviceID: 1, Timestamp: at(1, 0)}}, "x", usage.Options{})
	err := Chart(&bytes.Buffer{}, dash, ChartOptions{Width: 800, Height: 400})
	if !errors.Is(err, ErrNoSeries) {
		t.Fatalf("expected ErrNoSeries, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	now := func() time.Time { return base }
	var buf bytes.Buffer
	err := Dashboard(&buf, sampleDashboard(), Options{
		Chart:       ChartOptions{Width: 800, Height: 400, UsageCeiling: 200},
		GridColumns: 3,
		Now:         now,
	})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Device Usage for March 09, 2024",
		"Device Usage Grid for March 09, 2024",
		"DeviceId: 7",
		"DeviceId: 3",
		"9 at 01:05 PM",
		"4.5 at 07:00 AM",
		"<td>14</td>",
		"<td>6.5</td>",
		"background-color:#FF0000",
		"<svg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(out, "DeviceId: 11") {
		t.Error("single-record device should not appear in the legend")
	}
	if strings.Contains(out, "DeviceId: 5537") {
		t.Error("outlier device should not appear")
	}
}

func TestDashboardWithoutData(t *testing.T) {
	now := func() time.Time { return base }
	dash := usage.Build(nil, "x", usage.Options{Now: now})

	var buf bytes.Buffer
	if err := Dashboard(&buf, dash, Options{Chart: ChartOptions{Width: 800, Height: 400}, Now: now}); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !strings.Contains(buf.String(), "No device usage to chart") {
		t.Fatal("expected empty-chart placeholder")
	}
}
