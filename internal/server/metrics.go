package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the serve-mode Prometheus collectors
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fetchesTotal    *prometheus.CounterVec
	recordsLoaded   prometheus.Gauge
	devicesShown    prometheus.Gauge
}

// NewMetrics registers the collectors on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usagegrid_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "usagegrid_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		fetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usagegrid_feed_fetches_total",
			Help: "Feed loads by outcome",
		}, []string{"outcome"}),
		recordsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usagegrid_records_loaded",
			Help: "Usage records in the dashboard being served",
		}),
		devicesShown: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usagegrid_devices_shown",
			Help: "Devices drawn on the dashboard being served",
		}),
	}
}
