package replay

import (
	"log/slog"
	"time"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/metrics"
)

// Option configures a Buffer created with New.
type Option func(*options)

type options struct {
	weights Weights
	seed    *uint64
	logger  *slog.Logger
	metrics *metrics.Replay
	now     func() time.Time
}

// WithWeights overrides the default scoring weights.
func WithWeights(w Weights) Option {
	return func(o *options) {
		o.weights = w
	}
}

// WithSeed makes sampling reproducible. The seed only affects this buffer's
// own random source.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithLogger sets the logger used for debug records about eviction and
// sampling.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics reports additions, evictions and samples to m.
func WithMetrics(m *metrics.Replay) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock overrides the time source used to stamp examples.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
