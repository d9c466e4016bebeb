// Package replay provides a selective replay buffer for continual learning.
//
// Every example is given a composite priority score when it is added:
//
//	score = entropy·loss + confidence·(1 − confidence) + rarity·rarity
//
// so unstable (high loss), uncertain (low confidence) and rare examples are
// favoured. When the buffer overflows it keeps only the highest-scoring
// examples, and batches are drawn with probability softmax(score), either
// with or without replacement.
package replay

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/logger"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/metrics"
)

// DefaultCapacity is the capacity used by callers that do not configure one.
const DefaultCapacity = 5_000

// Weights are the coefficients of the composite priority score.
type Weights struct {
	Entropy    float64 `json:"entropy"`
	Confidence float64 `json:"confidence"`
	Rarity     float64 `json:"rarity"`
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{Entropy: 0.5, Confidence: 0.3, Rarity: 0.2}
}

// Score computes the composite priority of an example. confidence is clamped
// to [0,1]; loss and rarity are used as given, so an unbounded loss can
// dominate the score.
func (w Weights) Score(loss, confidence, rarity float64) float64 {
	confidence = math.Max(0, math.Min(1, confidence))
	return w.Entropy*loss + w.Confidence*(1-confidence) + w.Rarity*rarity
}

func (w Weights) validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"entropy", w.Entropy},
		{"confidence", w.Confidence},
		{"rarity", w.Rarity},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value < 0 {
			return fmt.Errorf("%w: %s weight must be a non-negative number, got %v", ErrInvalidConfiguration, c.name, c.value)
		}
	}
	return nil
}

// Example is a stored (query, target) pair with its priority.
type Example struct {
	Query  string
	Target string

	// Score is computed once at insertion and never recomputed.
	Score float64

	// Timestamp is the insertion time. It is informational only.
	Timestamp time.Time
}

// Pair is a sampled (query, target) pair.
type Pair struct {
	Query  string
	Target string
}

// Buffer is a bounded, score-prioritised collection of examples. All methods
// are safe for concurrent use.
type Buffer struct {
	capacity int
	weights  Weights

	mu       sync.Mutex
	examples []Example
	src      rand.Source

	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Replay
}

// New creates a Buffer holding at most capacity examples. It returns an error
// wrapping ErrInvalidConfiguration if capacity is not positive or a weight is
// negative.
func New(capacity int, opts ...Option) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidConfiguration, capacity)
	}

	o := &options{
		weights: DefaultWeights(),
		now:     time.Now,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.weights.validate(); err != nil {
		return nil, err
	}

	seed := uint64(time.Now().UnixNano())
	if o.seed != nil {
		seed = *o.seed
	}

	return &Buffer{
		capacity: capacity,
		weights:  o.weights,
		examples: make([]Example, 0, min(capacity, 1024)),
		src:      rand.NewSource(seed),
		now:      o.now,
		logger:   o.logger,
		metrics:  o.metrics,
	}, nil
}

// AddExample scores and appends an example, then, if the buffer is over
// capacity, keeps only the highest-scoring examples. Examples are never
// deduplicated. The assigned score is returned.
func (b *Buffer) AddExample(query, target string, loss, confidence, rarity float64) float64 {
	score := b.weights.Score(loss, confidence, rarity)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.examples = append(b.examples, Example{
		Query:     query,
		Target:    target,
		Score:     score,
		Timestamp: b.now(),
	})
	b.metrics.Add(score, len(b.examples))

	if len(b.examples) > b.capacity {
		b.truncate()
	}

	return score
}

// truncate keeps the capacity highest-scoring examples. The sort is stable,
// so among equal scores the earlier insertions survive. Callers hold b.mu.
func (b *Buffer) truncate() {
	sort.SliceStable(b.examples, func(i, j int) bool {
		return b.examples[i].Score > b.examples[j].Score
	})

	dropped := len(b.examples) - b.capacity
	clear(b.examples[b.capacity:])
	b.examples = b.examples[:b.capacity]

	b.metrics.Evict(dropped, len(b.examples))
	b.logger.Debug("evicted lowest-score examples",
		"dropped", dropped,
		"min_score", b.examples[len(b.examples)-1].Score,
	)
}

// Len returns the number of examples held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.examples)
}

// Capacity returns the maximum number of examples held.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Weights returns the scoring weights.
func (b *Buffer) Weights() Weights {
	return b.weights
}

// Examples returns a copy of the held examples. After an overflow they are
// ordered by descending score; before one, by insertion.
func (b *Buffer) Examples() []Example {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Example, len(b.examples))
	copy(out, b.examples)
	return out
}
