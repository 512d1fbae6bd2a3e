// Package metrics holds the Prometheus collectors the server updates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests     *prometheus.CounterVec
	CounterBlogsCreated prometheus.Counter
	CounterBlogsDeleted prometheus.Counter
	CounterLogins       *prometheus.CounterVec
	CounterUsers        prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("bloglist", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("bloglist", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of handled requests",
	}, []string{"method", "route", "status"})
	counterBlogsCreated := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "blogs_created_total",
		Help:      "The total number of created blogs",
	})
	counterBlogsDeleted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "blogs_deleted_total",
		Help:      "The total number of deleted blogs",
	})
	counterLogins := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "logins_total",
		Help:      "Login attempts by result (success, failure)",
	}, []string{"result"})
	counterUsers := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "users_registered_total",
		Help:      "The total number of registered users",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests being served",
	})

	histReqDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
		},
		[]string{"route"},
	)

	return &Manager{
		CounterRequests:     counterRequests,
		CounterBlogsCreated: counterBlogsCreated,
		CounterBlogsDeleted: counterBlogsDeleted,
		CounterLogins:       counterLogins,
		CounterUsers:        counterUsers,
		GaugeRequests:       gaugeRequests,
		HistRequestDuration: histReqDuration,
	}
}

// LoginSucceeded and LoginFailed are nil-safe so services can run without
// metrics in tests.
func (m *Manager) LoginSucceeded() {
	if m != nil {
		m.CounterLogins.WithLabelValues("success").Inc()
	}
}

func (m *Manager) LoginFailed() {
	if m != nil {
		m.CounterLogins.WithLabelValues("failure").Inc()
	}
}

func (m *Manager) BlogCreated() {
	if m != nil {
		m.CounterBlogsCreated.Inc()
	}
}

func (m *Manager) BlogDeleted() {
	if m != nil {
		m.CounterBlogsDeleted.Inc()
	}
}

func (m *Manager) UserRegistered() {
	if m != nil {
		m.CounterUsers.Inc()
	}
}
