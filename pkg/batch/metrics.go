package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a prometheus-backed core.MetricsRecorder. Every series carries
// an "operation" label (get or write).
type Metrics struct {
	attempts    *prometheus.CounterVec
	retries     *prometheus.CounterVec
	unprocessed *prometheus.CounterVec
	exhausted   *prometheus.CounterVec
}

// NewMetrics creates the batch metrics and registers them with reg. A nil reg
// leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablekit_batch_attempts_total",
			Help: "Batch chunk dispatches, including retries",
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablekit_batch_retries_total",
			Help: "Resubmissions of unprocessed subsets",
		}, []string{"operation"}),
		unprocessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablekit_batch_unprocessed_items_total",
			Help: "Items reported unprocessed by the store",
		}, []string{"operation"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablekit_batch_exhausted_total",
			Help: "Chunks that ran out of attempts with work remaining",
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.retries, m.unprocessed, m.exhausted)
	}
	return m
}

// Attempt counts one transport call for op.
func (m *Metrics) Attempt(op string) {
	m.attempts.WithLabelValues(op).Inc()
}

// Retry counts one re-dispatch of unprocessed items.
func (m *Metrics) Retry(op string) {
	m.retries.WithLabelValues(op).Inc()
}

// Unprocessed adds n items the store handed back.
func (m *Metrics) Unprocessed(op string, n int) {
	m.unprocessed.WithLabelValues(op).Add(float64(n))
}

// Exhausted counts a chunk that ran out of attempts.
func (m *Metrics) Exhausted(op string) {
	m.exhausted.WithLabelValues(op).Inc()
}

// Collectors exposes the underlying collectors, mainly for tests.
func (m *Metrics) Collectors() (attempts, retries, unprocessed, exhausted *prometheus.CounterVec) {
	return m.attempts, m.retries, m.unprocessed, m.exhausted
}
