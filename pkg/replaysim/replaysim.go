// Package replaysim drives a replay buffer the way a training loop would:
// every step adds one freshly scored example and, periodically, draws a
// batch to rehearse. The summary shows whether sampling favours the
// high-priority examples.
package replaysim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/logger"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/replay"
)

// ErrInvalidConfig is returned when a simulation Config cannot be run.
var ErrInvalidConfig = errors.New("invalid replay simulation config")

// topN is the number of most-sampled examples reported.
const topN = 5

// Config describes a simulation.
type Config struct {
	Steps       int    `json:"steps"`
	BatchSize   int    `json:"batch_size"`
	SampleEvery int    `json:"sample_every"`
	Replace     bool   `json:"replace"`
	Seed        uint64 `json:"seed"`
}

// DefaultConfig returns the stock simulation parameters.
func DefaultConfig() Config {
	return Config{
		Steps:       2000,
		BatchSize:   32,
		SampleEvery: 10,
		Seed:        7,
	}
}

// Validate reports whether c can be run.
func (c Config) Validate() error {
	switch {
	case c.Steps < 0:
		return fmt.Errorf("%w: steps must be >= 0, got %d", ErrInvalidConfig, c.Steps)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be > 0, got %d", ErrInvalidConfig, c.BatchSize)
	case c.SampleEvery <= 0:
		return fmt.Errorf("%w: sample interval must be > 0, got %d", ErrInvalidConfig, c.SampleEvery)
	}
	return nil
}

// Count is how often one example was sampled.
type Count struct {
	Query string  `json:"query"`
	Score float64 `json:"score"`
	Times int     `json:"times"`
}

// Summary is the outcome of a simulation.
type Summary struct {
	Added   int `json:"added"`
	Batches int `json:"batches"`
	Sampled int `json:"sampled"`
	Unique  int `json:"unique"`

	// MeanBufferScore is the mean score of the examples held at the end;
	// MeanSampledScore is the mean score over every sampled example.
	MeanBufferScore  float64 `json:"mean_buffer_score"`
	MeanSampledScore float64 `json:"mean_sampled_score"`

	Top []Count `json:"top"`
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for progress records.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Run feeds cfg.Steps synthetic examples into buf. Losses follow an
// Exponential(1) distribution and confidence and rarity are uniform on
// [0,1), all drawn from a source seeded with cfg.Seed. A batch is sampled
// after every cfg.SampleEvery additions.
func Run(ctx context.Context, cfg Config, buf *replay.Buffer, opts ...Option) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &runOptions{logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	src := rand.NewSource(cfg.Seed)
	loss := distuv.Exponential{Rate: 1, Src: src}
	unit := distuv.Uniform{Min: 0, Max: 1, Src: src}

	scores := make(map[string]float64, cfg.Steps)
	times := make(map[string]int)
	var sampled []float64

	s := &Summary{}
	for step := 1; step <= cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation interrupted at step %d: %w", step, err)
		}

		query := fmt.Sprintf("example_%d", step)
		scores[query] = buf.AddExample(query, fmt.Sprintf("target_%d", step), loss.Rand(), unit.Rand(), unit.Rand())
		s.Added++

		if step%cfg.SampleEvery != 0 {
			continue
		}

		batch := buf.SampleBatch(cfg.BatchSize, cfg.Replace)
		s.Batches++
		s.Sampled += len(batch)
		for _, p := range batch {
			times[p.Query]++
			sampled = append(sampled, scores[p.Query])
		}
	}

	held := buf.Examples()
	if len(held) > 0 {
		bufScores := make([]float64, len(held))
		for i, e := range held {
			bufScores[i] = e.Score
		}
		s.MeanBufferScore = stat.Mean(bufScores, nil)
	}
	if len(sampled) > 0 {
		s.MeanSampledScore = stat.Mean(sampled, nil)
	}

	s.Unique = len(times)
	s.Top = top(times, scores, topN)

	o.logger.Info("replay simulation finished",
		"added", s.Added,
		"batches", s.Batches,
		"sampled", s.Sampled,
		"mean_buffer_score", s.MeanBufferScore,
		"mean_sampled_score", s.MeanSampledScore,
	)

	return s, nil
}

// top returns the n most-sampled queries, most frequent first, ties broken
// by query name.
func top(times map[string]int, scores map[string]float64, n int) []Count {
	counts := make([]Count, 0, len(times))
	for q, t := range times {
		counts = append(counts, Count{Query: q, Score: scores[q], Times: t})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Times != counts[j].Times {
			return counts[i].Times > counts[j].Times
		}
		return counts[i].Query < counts[j].Query
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
