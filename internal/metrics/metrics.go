package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayRequestsTotal counts gateway requests by method and outcome
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_gateway_requests_total",
			Help: "Total number of gateway requests",
		},
		[]string{"method", "status"},
	)

	// GatewayRequestDuration tracks gateway round trip time
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revenue_gateway_request_duration_seconds",
			Help:    "Gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// SnapshotRefreshes counts refresh decisions by window and result
	SnapshotRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_snapshot_refreshes_total",
			Help: "Snapshot refresh decisions",
		},
		[]string{"window", "result"},
	)

	// SnapshotFetches counts completed snapshot fetches by outcome
	SnapshotFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_snapshot_fetches_total",
			Help: "Completed snapshot fetches",
		},
		[]string{"status"},
	)

	// PageLoads counts completed transaction page loads by stream and outcome
	PageLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_page_loads_total",
			Help: "Completed transaction page loads",
		},
		[]string{"stream", "status"},
	)

	// LiveUpdates counts pushed balance updates by peer kind
	LiveUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_live_updates_total",
			Help: "Pushed balance updates",
		},
		[]string{"kind"},
	)

	// Controllers tracks the number of live account controllers
	Controllers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "revenue_controllers",
			Help: "Number of account controllers",
		},
	)

	// EventsPublished counts bus events by topic
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_events_published_total",
			Help: "Events published on the notification bus",
		},
		[]string{"topic"},
	)

	// EventsDropped counts events dropped for slow subscribers
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_events_dropped_total",
			Help: "Events dropped because a subscriber was slow",
		},
		[]string{"topic"},
	)

	// SnapshotsRecorded counts snapshot history writes by outcome
	SnapshotsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_snapshots_recorded_total",
			Help: "Snapshot history rows written",
		},
		[]string{"status"},
	)

	// WarmerRuns counts scheduled warm-up passes
	WarmerRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revenue_warmer_runs_total",
			Help: "Scheduled warm-up passes",
		},
	)

	// HTTPRequestsTotal counts API requests by route pattern and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "code"},
	)

	// HTTPRequestDuration tracks API request latency by route pattern
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revenue_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
