// Package memorybank provides a confidence-gated, capacity-bounded cache of
// verified query -> solution pairs.
//
// A Bank only accepts results whose confidence meets its stability threshold,
// so a hit can stand in for recomputing the answer. Entries are keyed by the
// SHA-256 of the query and evicted least-recently-used once the bank grows
// past its capacity. Reads are never gated: a hit returns the stored
// confidence whatever the threshold is.
package memorybank

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/logger"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/metrics"
)

const (
	// DefaultCapacity is the capacity used by callers that do not configure one.
	DefaultCapacity = 10_000

	// DefaultStabilityThreshold is the minimum confidence a store must carry.
	DefaultStabilityThreshold = 0.95
)

// Entry is a stored, verified solution.
type Entry struct {
	// Solution is the cached answer payload.
	Solution string

	// Confidence is the certainty, in [0,1], that Solution is correct.
	Confidence float64

	// Timestamp is the time of the last write.
	Timestamp time.Time

	// AccessCount is the number of successful retrievals since the last write.
	AccessCount int
}

// Stats is a point-in-time view of a Bank's occupancy.
type Stats struct {
	Size     int `json:"size"`
	Capacity int `json:"capacity"`
}

// Bank is a confidence-gated LRU cache. All methods are safe for concurrent
// use; each operation holds the bank's lock for its whole read-modify-write
// sequence.
type Bank struct {
	capacity  int
	threshold float64

	mu      sync.Mutex
	entries *simplelru.LRU[string, *Entry]

	canonicalize func(string) string
	now          func() time.Time
	logger       *slog.Logger
	metrics      *metrics.Gate
}

// New creates a Bank holding at most capacity entries and accepting only
// stores with confidence >= threshold. It returns an error wrapping
// ErrInvalidConfiguration if capacity is not positive or threshold is
// outside [0,1].
func New(capacity int, threshold float64, opts ...Option) (*Bank, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidConfiguration, capacity)
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: stability threshold must be within [0, 1], got %v", ErrInvalidConfiguration, threshold)
	}

	b := &Bank{
		capacity:     capacity,
		threshold:    threshold,
		canonicalize: func(q string) string { return q },
		now:          time.Now,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	entries, err := simplelru.NewLRU[string, *Entry](capacity, b.onEvict)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	b.entries = entries

	return b, nil
}

// Key returns the identity under which query is stored.
func (b *Bank) Key(query string) string {
	sum := sha256.Sum256([]byte(b.canonicalize(query)))
	return hex.EncodeToString(sum[:])
}

// Threshold returns the stability threshold stores are gated on.
func (b *Bank) Threshold() float64 {
	return b.threshold
}

// Store records solution for query if confidence meets the stability
// threshold; otherwise it does nothing. Storing an existing query replaces
// its entry, resetting the access count, and marks it most recently used.
// If the bank then exceeds its capacity the least recently used entry is
// evicted.
func (b *Bank) Store(query, solution string, confidence float64) {
	// NaN fails every comparison, so test for acceptance rather than rejection.
	if !(confidence >= b.threshold) {
		b.metrics.Reject()
		b.logger.Debug("store rejected below stability threshold",
			"confidence", confidence,
			"threshold", b.threshold,
		)
		return
	}

	key := b.Key(query)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries.Add(key, &Entry{
		Solution:   solution,
		Confidence: confidence,
		Timestamp:  b.now(),
	})
	b.metrics.Stored(b.entries.Len())
}

// Retrieve returns the solution and confidence stored for query and marks it
// most recently used. ok is false on a miss, in which case solution is empty
// and confidence is zero.
func (b *Bank) Retrieve(query string) (solution string, confidence float64, ok bool) {
	key := b.Key(query)

	b.mu.Lock()
	defer b.mu.Unlock()

	entry, found := b.entries.Get(key)
	if !found {
		b.metrics.Miss()
		return "", 0, false
	}

	entry.AccessCount++
	b.metrics.Hit()

	return entry.Solution, entry.Confidence, true
}

// Peek returns a copy of the entry stored for query without touching its
// recency or access count.
func (b *Bank) Peek(query string) (Entry, bool) {
	key := b.Key(query)

	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries.Peek(key)
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Keys returns the live keys ordered from least to most recently used.
func (b *Bank) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.entries.Keys()
}

// Stats reports the current size and the capacity of the bank.
func (b *Bank) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		Size:     b.entries.Len(),
		Capacity: b.capacity,
	}
}

// onEvict runs under b.mu, from inside entries.Add.
func (b *Bank) onEvict(key string, entry *Entry) {
	b.metrics.Evict()
	b.logger.Debug("evicted least recently used entry",
		"key", key,
		"access_count", entry.AccessCount,
	)
}
