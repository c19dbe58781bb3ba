// Package metrics exposes the server's Prometheus collectors. All methods are
// safe on a nil *Metrics so tests can run without a registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "impostor"

type Metrics struct {
	Registry *prometheus.Registry

	roomsActive   prometheus.Gauge
	roomsCreated  prometheus.Counter
	sessions      prometheus.Gauge
	actions       *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		roomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms currently held in memory.",
		}),
		roomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created since start.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_sessions",
			Help:      "Open websocket sessions.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Room actions by name and result code.",
		}, []string{"action", "result"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games by winning side.",
		}, []string{"winner"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.roomsActive,
		m.roomsCreated,
		m.sessions,
		m.actions,
		m.gamesFinished,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RoomOpened() {
	if m == nil {
		return
	}
	m.roomsCreated.Inc()
	m.roomsActive.Inc()
}

func (m *Metrics) RoomClosed() {
	if m == nil {
		return
	}
	m.roomsActive.Dec()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// Action counts one room action; result is "OK" or an error code.
func (m *Metrics) Action(action, result string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) GameFinished(winner string) {
	if m == nil {
		return
	}
	m.gamesFinished.WithLabelValues(winner).Inc()
}
