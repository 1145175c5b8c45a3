// Package telemetry holds the prometheus metrics shared across the library.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the library's prometheus collectors with the registry they
// live in. The registry is handed to promhttp by the server.
type Metrics struct {
	Registry *prometheus.Registry

	// SessionsRecorded counts session records written successfully.
	SessionsRecorded prometheus.Counter
	// SessionsDropped counts session records dropped on recorder overflow.
	SessionsDropped prometheus.Counter
	// SessionsFailed counts session records that exhausted their retries.
	SessionsFailed prometheus.Counter

	// ConnectorOps counts connector operations by exchange and operation.
	ConnectorOps *prometheus.CounterVec
}

// NewMetrics creates and registers the library's collectors in a fresh
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SessionsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dexlib_sessions_recorded_total",
			Help: "Session records written successfully.",
		}),
		SessionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dexlib_sessions_dropped_total",
			Help: "Session records dropped because the recorder queue was full.",
		}),
		SessionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dexlib_sessions_failed_total",
			Help: "Session records that failed to write after retries.",
		}),
		ConnectorOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dexlib_connector_operations_total",
			Help: "Connector operations served, by exchange and operation.",
		}, []string{"dex", "operation"}),
	}

	m.Registry.MustRegister(
		m.SessionsRecorded,
		m.SessionsDropped,
		m.SessionsFailed,
		m.ConnectorOps,
	)
	return m
}
