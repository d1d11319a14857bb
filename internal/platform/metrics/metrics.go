package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	RemindersSent      prometheus.Counter
	Acknowledgments    prometheus.Counter
	Declines           prometheus.Counter
	AssignmentsDeleted prometheus.Counter
	LinksResent        prometheus.Counter
	RenderFallbacks    prometheus.Counter
	SessionsConfirmed  *prometheus.CounterVec
	BulkActions        *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers against a caller-supplied registry; tests pass a fresh
// one so repeated construction never collides.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "attest_reminders_sent_total",
			Help: "Total number of reminder emails sent",
		}),
		Acknowledgments: factory.NewCounter(prometheus.CounterOpts{
			Name: "attest_acknowledgments_total",
			Help: "Total number of assignments acknowledged",
		}),
		Declines: factory.NewCounter(prometheus.CounterOpts{
			Name: "attest_declines_total",
			Help: "Total number of assignments declined",
		}),
		AssignmentsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "attest_assignments_deleted_total",
			Help: "Total number of assignments deleted",
		}),
		LinksResent: factory.NewCounter(prometheus.CounterOpts{
			Name: "attest_links_resent_total",
			Help: "Total number of magic links reissued",
		}),
		RenderFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "attest_render_fallbacks_total",
			Help: "Total number of view sessions demoted to the opaque renderer",
		}),
		SessionsConfirmed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_view_sessions_confirmed_total",
			Help: "Total number of view sessions reaching confirmed, by strategy",
		}, []string{"strategy"}),
		BulkActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_bulk_actions_total",
			Help: "Total number of bulk batch runs, by action and outcome",
		}, []string{"action", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attest_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
