package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"habit-tracker/internal/events"
)

var (
	// Store changes by kind (trackers, records, categories, settings).
	StoreChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habittracker_store_changes_total",
			Help: "Total number of store change notifications",
		},
		[]string{"kind"},
	)

	// Completion toggles by outcome: completed, uncompleted, rejected.
	Toggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habittracker_toggles_total",
			Help: "Total number of completion toggles",
		},
		[]string{"result"},
	)

	// Board recomputation time (seconds)
	BoardRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "habittracker_board_refresh_duration_seconds",
			Help:    "Time to load a snapshot and recompute the visible trackers",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
	)

	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habittracker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Telegram updates by type: command, message, callback.
	BotUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habittracker_bot_updates_total",
			Help: "Total number of Telegram updates handled",
		},
		[]string{"type"},
	)

	// Daily summaries by status: success, failed.
	ReportsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habittracker_reports_total",
			Help: "Total number of daily summaries delivered",
		},
		[]string{"status"},
	)
)

// SubscribeStoreChanges counts every event published on sub until the
// returned function is called.
func SubscribeStoreChanges(sub events.Subscriber) (unsubscribe func()) {
	return sub.Subscribe(func(e events.Event) {
		StoreChanges.WithLabelValues(e.Kind.String()).Inc()
	})
}

func IncrementToggle(result string) {
	Toggles.WithLabelValues(result).Inc()
}

func ObserveBoardRefresh(duration time.Duration) {
	BoardRefreshDuration.Observe(duration.Seconds())
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementBotUpdate(kind string) {
	BotUpdates.WithLabelValues(kind).Inc()
}

func IncrementReport(status string) {
	ReportsSent.WithLabelValues(status).Inc()
}
