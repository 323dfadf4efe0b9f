// Package metrics holds the Prometheus collectors shared by the ingestion
// pipeline, the connection manager and the subscriber hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "telemetry_hub"

type Metrics struct {
	MessagesReceived  *prometheus.CounterVec
	ParseErrors       *prometheus.CounterVec
	Readings          *prometheus.CounterVec
	Alerts            *prometheus.CounterVec
	InferenceRequests *prometheus.CounterVec
	LiveConnections   prometheus.Gauge
	Subscribers       prometheus.Gauge
	Deliveries        *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "messages",
				Name:      "received_total",
				Help:      "Total number of device messages received",
			},
			[]string{"protocol"},
		),
		ParseErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "messages",
				Name:      "parse_errors_total",
				Help:      "Total number of device messages dropped as unparseable",
			},
			[]string{"protocol"},
		),
		Readings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "readings",
				Name:      "total",
				Help:      "Total number of readings extracted, by value kind",
			},
			[]string{"kind"},
		),
		Alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "alerts",
				Name:      "fired_total",
				Help:      "Total number of alert events emitted",
			},
			[]string{"severity"},
		),
		InferenceRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "inference",
				Name:      "requests_total",
				Help:      "Metadata inference requests by outcome",
			},
			[]string{"outcome"},
		),
		LiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "devices",
				Name:      "live_connections",
				Help:      "Number of live device broker connections",
			},
		),
		Subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "hub",
				Name:      "subscribers",
				Help:      "Number of authenticated live subscribers",
			},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hub",
				Name:      "deliveries_total",
				Help:      "Event deliveries to subscribers by result (sent, dropped)",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.MessagesReceived,
		m.ParseErrors,
		m.Readings,
		m.Alerts,
		m.InferenceRequests,
		m.LiveConnections,
		m.Subscribers,
		m.Deliveries,
	)
	return m
}

// NewNop returns collectors registered on a throwaway registry. Used by tests
// and by components constructed without metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
