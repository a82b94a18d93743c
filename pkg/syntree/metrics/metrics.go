// Package metrics provides an optional Prometheus collector a Builder can
// report its internal decisions to: how often a subtree was reused
// in place, how many NodeBuffers were packed and how many records they
// hold, and how many times wide children needed balancing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// BuildMetrics collects counters describing one or more tree builds. A
// nil *BuildMetrics is safe to call methods on; they become no-ops.
type BuildMetrics struct {
	reuseHits     prometheus.Counter
	bufferPacks   prometheus.Counter
	bufferRecords prometheus.Counter
	balanceOps    prometheus.Counter
}

// NewBuildMetrics creates a BuildMetrics and registers its collectors with
// reg. Pass prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to publish on the default /metrics path.
func NewBuildMetrics(reg prometheus.Registerer) (*BuildMetrics, error) {
	m := &BuildMetrics{
		reuseHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "syntree",
			Subsystem: "builder",
			Name:      "reuse_hits_total",
			Help:      "Number of subtrees taken directly from the reused slice instead of being rebuilt.",
		}),
		bufferPacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "syntree",
			Subsystem: "builder",
			Name:      "buffer_packs_total",
			Help:      "Number of NodeBuffer regions produced instead of pointer Tree nodes.",
		}),
		bufferRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "syntree",
			Subsystem: "builder",
			Name:      "buffer_records_total",
			Help:      "Total number of records packed across all NodeBuffer regions.",
		}),
		balanceOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "syntree",
			Subsystem: "builder",
			Name:      "balance_ops_total",
			Help:      "Number of times a wide child run was rebalanced into a branching group.",
		}),
	}

	for _, c := range []prometheus.Collector{m.reuseHits, m.bufferPacks, m.bufferRecords, m.balanceOps} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ReuseHit records one subtree taken from the reused slice.
func (m *BuildMetrics) ReuseHit() {
	if m == nil {
		return
	}

	m.reuseHits.Inc()
}

// BufferPacked records one NodeBuffer built, holding recordCount records.
func (m *BuildMetrics) BufferPacked(recordCount int) {
	if m == nil {
		return
	}

	m.bufferPacks.Inc()
	m.bufferRecords.Add(float64(recordCount))
}

// BalanceOp records one rebalancing of a wide child run.
func (m *BuildMetrics) BalanceOp() {
	if m == nil {
		return
	}

	m.balanceOps.Inc()
}
