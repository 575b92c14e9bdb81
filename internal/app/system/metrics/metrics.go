// Package metrics owns the Prometheus registry served at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the app's collectors. A nil *Metrics is valid and records
// nothing, so packages can take one without forcing tests to build it.
type Metrics struct {
	Registry *prometheus.Registry

	capacityDecisions *prometheus.CounterVec
	capacityActive    *prometheus.GaugeVec
	txnFallbacks      prometheus.Counter
	uploads           *prometheus.CounterVec
	mailSent          *prometheus.CounterVec
}

// New builds a registry with Go runtime and process collectors plus the
// app's own metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		capacityDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mttdash_capacity_decisions_total",
			Help: "Capacity policy decisions by policy and outcome",
		}, []string{"policy", "outcome"}),
		capacityActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mttdash_capacity_active",
			Help: "Active records per capacity-bounded collection, as of the last audit",
		}, []string{"policy"}),
		txnFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "mttdash_capacity_txn_fallbacks_total",
			Help: "Capacity mutations run without a transaction because the server does not support them",
		}),
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mttdash_uploads_total",
			Help: "Object storage uploads by backend and outcome",
		}, []string{"backend", "outcome"}),
		mailSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mttdash_mail_sent_total",
			Help: "Outgoing mail by outcome",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// CapacityDecision counts one policy evaluation.
func (m *Metrics) CapacityDecision(policy, outcome string) {
	if m == nil {
		return
	}
	m.capacityDecisions.WithLabelValues(policy, outcome).Inc()
}

// CapacityActive records the active count found by the capacity audit.
func (m *Metrics) CapacityActive(policy string, n int64) {
	if m == nil {
		return
	}
	m.capacityActive.WithLabelValues(policy).Set(float64(n))
}

// TxnFallback counts a capacity mutation that ran under the mutex only.
func (m *Metrics) TxnFallback() {
	if m == nil {
		return
	}
	m.txnFallbacks.Inc()
}

// Upload counts one object storage upload.
func (m *Metrics) Upload(backend string, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(backend, outcome(err)).Inc()
}

// MailSent counts one outgoing message.
func (m *Metrics) MailSent(err error) {
	if m == nil {
		return
	}
	m.mailSent.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
