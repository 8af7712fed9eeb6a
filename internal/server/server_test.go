package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jgoulah/usagegrid/internal/cache"
	"github.com/jgoulah/usagegrid/internal/render"
	"github.com/jgoulah/usagegrid/internal/usage"
	"github.com/jgoulah/usagegrid/pkg/models"
)

var base = time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

func sampleLoader(calls *int32) LoadFunc {
	return func(ctx context.Context) (*models.Dashboard, error) {
		atomic.AddInt32(calls, 1)
		records := []models.UsageRecord{
			{DeviceID: 7, Usage: 5, Timestamp: base.Add(14 * time.Hour)},
			{DeviceID: 7, Usage: 9, Timestamp: base.Add(13 * time.Hour)},
			{DeviceID: 3, Usage: 2, Timestamp: base.Add(9 * time.Hour)},
			{DeviceID: 3, Usage: 4, Timestamp: base.Add(7 * time.Hour)},
			{DeviceID: 5537, Usage: 900, Timestamp: base.Add(10 * time.Hour)},
		}
		return usage.Build(records, "test-feed", usage.Options{Exclude: []int{5537}}), nil
	}
}

func newTestServer(t *testing.T, load LoadFunc) *httptest.Server {
	t.Helper()
	c, err := cache.New(time.Minute)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(c.Close)

	s := New(load, c, render.Options{
		Chart:       render.ChartOptions{Width: 800, Height: 400, UsageCeiling: 200},
		GridColumns: 4,
	}, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

func TestDashboardIsCached(t *testing.T) {
	var calls int32
	srv := newTestServer(t, sampleLoader(&calls))

	resp, body := get(t, srv.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Device Usage for March 09, 2024") {
		t.Fatal("dashboard title missing")
	}

	get(t, srv.URL+"/api/summary")
	get(t, srv.URL+"/chart.svg")

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one load across requests, got %d", n)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	var calls int32
	srv := newTestServer(t, sampleLoader(&calls))

	resp, body := get(t, srv.URL+"/api/summary")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type: got %q", ct)
	}

	var got summaryResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if got.Date != "2024-03-09" || got.Source != "test-feed" {
		t.Fatalf("unexpected header fields: %+v", got)
	}
	if len(got.Devices) != 2 || got.Devices[0].DeviceID != 7 || got.Devices[0].TotalUsage != 14 {
		t.Fatalf("unexpected devices: %+v", got.Devices)
	}
}

func TestChartEndpoint(t *testing.T) {
	var calls int32
	srv := newTestServer(t, sampleLoader(&calls))

	resp, body := get(t, srv.URL+"/chart.svg")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("unexpected response: %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(body, "<svg") {
		t.Fatal("expected SVG body")
	}
}

func TestChartEndpointWithoutData(t *testing.T) {
	srv := newTestServer(t, func(ctx context.Context) (*models.Dashboard, error) {
		return usage.Build(nil, "empty", usage.Options{}), nil
	})

	resp, _ := get(t, srv.URL+"/chart.svg")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without chartable data, got %d", resp.StatusCode)
	}
}

func TestLoadError(t *testing.T) {
	srv := newTestServer(t, func(ctx context.Context) (*models.Dashboard, error) {
		return nil, errors.New("snapshot missing")
	})

	resp, body := get(t, srv.URL+"/")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "snapshot missing") {
		t.Fatalf("expected error text, got %q", body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	var calls int32
	srv := newTestServer(t, sampleLoader(&calls))

	resp, _ := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status: %d", resp.StatusCode)
	}

	get(t, srv.URL+"/")
	_, body := get(t, srv.URL+"/metrics")
	for _, want := range []string{
		`usagegrid_feed_fetches_total{outcome="ok"} 1`,
		"usagegrid_records_loaded 5",
		"usagegrid_devices_shown 2",
		`usagegrid_http_requests_total{method="GET",route="/",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRefreshReloadsDashboard(t *testing.T) {
	var calls int32
	srv := newTestServer(t, sampleLoader(&calls))

	get(t, srv.URL+"/")

	resp, err := http.Post(srv.URL+"/refresh", "", nil)
	if err != nil {
		t.Fatalf("POST /refresh: %v", err)
	}
	var got map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding refresh response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status: %d", resp.StatusCode)
	}
	if got["records"] != float64(5) || got["devices"] != float64(2) {
		t.Fatalf("unexpected refresh body: %v", got)
	}

	get(t, srv.URL+"/api/summary")
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected initial load plus one refresh, got %d loads", n)
	}

	if resp, _ := get(t, srv.URL+"/refresh"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /refresh: expected 405, got %d", resp.StatusCode)
	}
}
