package memorybank

import (
	"log/slog"
	"time"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/metrics"
)

// Option configures a Bank created with New.
type Option func(*Bank)

// WithCanonicalizer installs a function applied to every query before it is
// hashed. The default is the identity, so queries are keyed by their exact
// bytes.
func WithCanonicalizer(fn func(string) string) Option {
	return func(b *Bank) {
		if fn != nil {
			b.canonicalize = fn
		}
	}
}

// WithLogger sets the logger used for debug records about gating and
// eviction.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bank) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics reports hits, misses, stores and evictions to m.
func WithMetrics(m *metrics.Gate) Option {
	return func(b *Bank) {
		b.metrics = m
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(b *Bank) {
		if now != nil {
			b.now = now
		}
	}
}
