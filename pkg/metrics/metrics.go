// Package metrics provides prometheus collectors for the memory gate and the
// selective replay buffer.
//
// Collectors are registered on a caller-supplied registry so that several
// banks or buffers can live in one process without colliding on the default
// registry. Every method is safe to call on a nil receiver, which lets the
// components treat metrics as optional.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "razor"

// Gate holds collectors for a memory bank.
type Gate struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Stores    prometheus.Counter
	Rejected  prometheus.Counter
	Evictions prometheus.Counter
	Size      prometheus.Gauge
}

// NewGate creates and registers memory bank collectors on reg.
func NewGate(reg prometheus.Registerer) *Gate {
	f := promauto.With(reg)

	return &Gate{
		Hits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory_bank",
			Name:      "hits_total",
			Help:      "Retrievals that found a live entry.",
		}),
		Misses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory_bank",
			Name:      "misses_total",
			Help:      "Retrievals that found no entry.",
		}),
		Stores: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory_bank",
			Name:      "stores_total",
			Help:      "Stores accepted by the confidence gate.",
		}),
		Rejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory_bank",
			Name:      "rejected_total",
			Help:      "Stores dropped for falling below the stability threshold.",
		}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory_bank",
			Name:      "evictions_total",
			Help:      "Entries evicted as least recently used.",
		}),
		Size: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "memory_bank",
			Name:      "entries",
			Help:      "Live entries in the memory bank.",
		}),
	}
}

// Hit counts a retrieval that found a live entry.
func (g *Gate) Hit() {
	if g == nil {
		return
	}
	g.Hits.Inc()
}

// Miss counts a retrieval that found nothing.
func (g *Gate) Miss() {
	if g == nil {
		return
	}
	g.Misses.Inc()
}

// Stored counts an accepted store and records the resulting bank size.
func (g *Gate) Stored(size int) {
	if g == nil {
		return
	}
	g.Stores.Inc()
	g.Size.Set(float64(size))
}

// Reject counts a store refused for falling below the stability threshold.
func (g *Gate) Reject() {
	if g == nil {
		return
	}
	g.Rejected.Inc()
}

// Evict counts one least-recently-used eviction.
func (g *Gate) Evict() {
	if g == nil {
		return
	}
	g.Evictions.Inc()
}

// Replay holds collectors for a selective replay buffer.
type Replay struct {
	Added   prometheus.Counter
	Evicted prometheus.Counter
	Sampled prometheus.Counter
	Size    prometheus.Gauge
	Scores  prometheus.Histogram
}

// NewReplay creates and registers replay buffer collectors on reg.
func NewReplay(reg prometheus.Registerer) *Replay {
	f := promauto.With(reg)

	return &Replay{
		Added: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "examples_added_total",
			Help:      "Examples appended to the replay buffer.",
		}),
		Evicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "examples_evicted_total",
			Help:      "Examples dropped by lowest-score eviction.",
		}),
		Sampled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "examples_sampled_total",
			Help:      "Examples returned in sampled batches.",
		}),
		Size: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "examples",
			Help:      "Examples currently held in the replay buffer.",
		}),
		Scores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "example_score",
			Help:      "Composite priority score assigned at insertion.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}
}

// Add counts an added example, observes its score and records the buffer size.
func (r *Replay) Add(score float64, size int) {
	if r == nil {
		return
	}
	r.Added.Inc()
	r.Scores.Observe(score)
	r.Size.Set(float64(size))
}

// Evict counts n examples dropped by truncation and records the buffer size.
func (r *Replay) Evict(n, size int) {
	if r == nil {
		return
	}
	r.Evicted.Add(float64(n))
	r.Size.Set(float64(size))
}

// Sample counts n examples returned in a batch.
func (r *Replay) Sample(n int) {
	if r == nil {
		return
	}
	r.Sampled.Add(float64(n))
}

// WriteTextfile writes everything gathered from g to path in the prometheus
// text exposition format, suitable for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
