package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "imagewatch"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SourcesPolledTotal   *prometheus.CounterVec   // outcome: success, failure
	ItemsDiscoveredTotal *prometheus.CounterVec   // source title
	DuplicatesTotal      prometheus.Counter
	ImageDownloadsTotal  *prometheus.CounterVec   // outcome: success, failure, placeholder
	EmissionsTotal       *prometheus.CounterVec   // target, outcome
	FetchDuration        *prometheus.HistogramVec // kind: page, asset
	RunDuration          prometheus.Histogram
	LastRunMatches       prometheus.Gauge
	LastRunTimestamp     prometheus.Gauge
}

// New registers the application metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		SourcesPolledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sources_polled_total",
				Help:      "Total number of source poll attempts.",
			},
			[]string{"outcome"},
		),
		ItemsDiscoveredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_discovered_total",
				Help:      "Total number of new link/image pairs stored.",
			},
			[]string{"source"},
		),
		DuplicatesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicates_skipped_total",
				Help:      "Total number of candidates skipped because they were already stored.",
			},
		),
		ImageDownloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "image_downloads_total",
				Help:      "Total number of pending images processed.",
			},
			[]string{"outcome"},
		),
		EmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_emissions_total",
				Help:      "Total number of report emissions per target.",
			},
			[]string{"target", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of page and asset fetches.",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of complete runs.",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		LastRunMatches: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_matches",
				Help:      "Number of report items found by the last run.",
			},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished.",
			},
		),
	}
}

// Push sends everything gathered by g to a Prometheus Pushgateway.
// Batch runs exit before a scrape could see them, so they push instead.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
