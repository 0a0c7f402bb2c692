package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventplanner"

// Registry is the process-wide Prometheus registry served on /metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels; the value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// UpcomingEventsFound records how many events the last upcoming-events check reported.
var UpcomingEventsFound = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "upcoming_events_found",
		Help:      "Number of events starting within the next 24 hours at the last check",
	},
)

// NotificationsSent counts upcoming-event notifications by channel and result.
var NotificationsSent = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of upcoming-event notifications attempted",
	},
	[]string{"channel", "result"},
)

// UpcomingNotifyFailures counts events whose attendees could not all be notified
// by an upcoming-events check.
var UpcomingNotifyFailures = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upcoming_notify_failures_total",
		Help:      "Total number of upcoming events with at least one failed notification",
	},
)

// Init registers runtime collectors and sets version information. Safe to call once per process.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
