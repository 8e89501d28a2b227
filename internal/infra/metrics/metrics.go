package metrics

import (
	"net/http"
	"strconv"
	"time"

	"isp_billing_panel/internal/domain/notification"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records panel activity. It satisfies app.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	sweeps             *prometheus.CounterVec
	sweepDuration      prometheus.Histogram
	overdueTransitions prometheus.Counter
	notifications      *prometheus.CounterVec
	deliveries         *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		sweeps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_sweeps_total",
			Help: "Due-date sweeps by result.",
		}, []string{"result"}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "panel_sweep_duration_seconds",
			Help:    "Time spent in one due-date sweep.",
			Buckets: prometheus.DefBuckets,
		}),
		overdueTransitions: factory.NewCounter(prometheus.CounterOpts{
			Name: "panel_clients_overdue_transitions_total",
			Help: "Clients found newly overdue by sweeps.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_notifications_emitted_total",
			Help: "Notifications stored, by kind.",
		}, []string{"kind"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_external_deliveries_total",
			Help: "External delivery attempts by channel and result.",
		}, []string{"channel", "result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) SweepFinished(elapsed time.Duration, newlyOverdue int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sweeps.WithLabelValues(result).Inc()
	m.sweepDuration.Observe(elapsed.Seconds())
	m.overdueTransitions.Add(float64(newlyOverdue))
}

func (m *Metrics) NotificationEmitted(kind notification.Kind) {
	m.notifications.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) DeliveryAttempted(channel string, delivered bool) {
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	m.deliveries.WithLabelValues(channel, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts every HTTP request by method and final status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}
