package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	movements  *prometheus.CounterVec
	rejections *prometheus.CounterVec
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	backups    *prometheus.CounterVec
}

// New registers the application metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almox_stock_movements_total",
			Help: "Stock movements recorded, by kind.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almox_stock_movement_rejections_total",
			Help: "Stock movements rejected before commit, by kind and reason.",
		}, []string{"kind", "reason"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almox_http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "almox_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almox_backups_total",
			Help: "Database backups attempted, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.movements, m.rejections, m.requests, m.latency, m.backups)
	return m
}

// MovementRecorded counts a committed movement.
func (m *Metrics) MovementRecorded(kind string) {
	if m == nil || m.movements == nil {
		return
	}
	m.movements.WithLabelValues(normalizeLabel(kind)).Inc()
}

// MovementRejected counts a movement refused by validation or stock checks.
func (m *Metrics) MovementRejected(kind, reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(kind), normalizeLabel(reason)).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	if status == 0 {
		status = 200
	}
	m.requests.WithLabelValues(normalizeLabel(method), strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(normalizeLabel(method)).Observe(d.Seconds())
}

// BackupFinished counts a backup attempt.
func (m *Metrics) BackupFinished(err error) {
	if m == nil || m.backups == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.backups.WithLabelValues(outcome).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
