package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ImportsTotal         *prometheus.CounterVec
	RowsSkipped          prometheus.Counter
	SchedulesImported    prometheus.Counter
	ImportTime           prometheus.Histogram
	Refreshes            *prometheus.CounterVec
	StaleResponses       prometheus.Counter
	StoreSize            prometheus.Gauge
	NotificationsSent    prometheus.Counter
	NotificationsFailed  prometheus.Counter
	NotificationsDropped prometheus.Counter
	ETAUpdates           prometheus.Counter
	ErrorsCount          *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics on the given registerer.
// Pass prometheus.DefaultRegisterer to expose them on promhttp.Handler().
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "The total number of workbook imports by outcome",
		}, []string{"outcome"}),
		RowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_skipped_total",
			Help:      "Rows skipped because their date was unreadable",
		}),
		SchedulesImported: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_imported_total",
			Help:      "The total number of schedules created by imports",
		}),
		ImportTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_time_seconds",
			Help:      "Time taken to import a workbook",
			Buckets:   prometheus.DefBuckets,
		}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_refreshes_total",
			Help:      "Schedule store refreshes by outcome",
		}, []string{"outcome"}),
		StaleResponses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_stale_responses_total",
			Help:      "Fetch responses discarded because a newer request was issued",
		}),
		StoreSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_schedules",
			Help:      "Schedules currently held by the store",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "The total number of booking notifications handed to a transport",
		}),
		NotificationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Notifications the transport rejected",
		}),
		NotificationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Notifications dropped because the outbox was full",
		}),
		ETAUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eta_updates_total",
			Help:      "Flight ETAs stored on arrival trips",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
