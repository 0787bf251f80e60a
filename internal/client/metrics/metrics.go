// Package metrics holds the Prometheus instruments of the session client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all session metrics.
type Metrics struct {
	// Session operations (login, register, verify_email, ...)
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Startup and reconnect reconciliation
	Reconciliations *prometheus.CounterVec

	// Consistency guard repairs
	Repairs prometheus.Counter

	// Token handle exchanges
	TokenExchanges *prometheus.CounterVec

	// Connectivity transitions (online/offline)
	ConnectivityChanges *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the metrics and registers them with registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteauth_session_operations_total",
				Help: "Total number of session operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "siteauth_session_operation_duration_seconds",
				Help:    "Session operation duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		Reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteauth_session_reconciliations_total",
				Help: "Total number of session reconciliations by outcome",
			},
			[]string{"outcome"},
		),
		Repairs: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "siteauth_session_repairs_total",
				Help: "Total number of corrupt session states wiped by the consistency guard",
			},
		),
		TokenExchanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteauth_token_exchanges_total",
				Help: "Total number of token handle exchanges by outcome",
			},
			[]string{"outcome"},
		),
		ConnectivityChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteauth_connectivity_changes_total",
				Help: "Total number of connectivity transitions",
			},
			[]string{"state"},
		),
		gatherer: registry,
	}
}

// NewUnregistered returns metrics bound to a private registry.
func NewUnregistered() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// RecordOperation counts one finished operation.
func (m *Metrics) RecordOperation(operation string, success bool, elapsed time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordExchange counts one token handle exchange.
func (m *Metrics) RecordExchange(ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.TokenExchanges.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
