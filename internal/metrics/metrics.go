// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitt"

// Receipt import outcomes.
const (
	ReceiptOK          = "ok"
	ReceiptMalformed   = "malformed"
	ReceiptUnavailable = "unavailable"
	ReceiptDisabled    = "disabled"
)

// Metrics groups the collectors updated by the interceptors and the bill service.
type Metrics struct {
	RPCDuration    *prometheus.HistogramVec
	Operations     *prometheus.CounterVec
	ReceiptImports *prometheus.CounterVec
	Bills          prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which tests use to get isolated counters.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Duration of RPC calls by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_operations_total",
			Help:      "Bill operations applied, by kind.",
		}, []string{"kind"}),
		ReceiptImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_imports_total",
			Help:      "Receipt imports by outcome.",
		}, []string{"outcome"}),
		Bills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_created_total",
			Help:      "Bills created.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.RPCDuration, m.Operations, m.ReceiptImports, m.Bills)
	}
	return m
}

// ObserveRPC records the duration of one RPC under its result code ("ok" on success).
func (m *Metrics) ObserveRPC(procedure string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "ok"
	if err != nil {
		code = connect.CodeOf(err).String()
	}
	m.RPCDuration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())
}

// ObserveOperation counts one applied bill operation.
func (m *Metrics) ObserveOperation(kind string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(kind).Inc()
}

// ObserveReceipt counts one receipt import attempt.
func (m *Metrics) ObserveReceipt(outcome string) {
	if m == nil {
		return
	}
	m.ReceiptImports.WithLabelValues(outcome).Inc()
}

// ObserveBillCreated counts one new bill.
func (m *Metrics) ObserveBillCreated() {
	if m == nil {
		return
	}
	m.Bills.Inc()
}
