// Package gate benchmarks a memory gate placed in front of an expensive
// inference step.
//
// A synthetic workload with repetition is replayed twice: the baseline pays
// for every query, while the gated path first consults a Memory and only pays
// (then stores a verified answer) on a miss. No model is involved; the costs
// are fixed per-inference proxies.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/logger"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/memorybank"
)

const (
	// VerifiedSolution is the payload stored after a simulated inference.
	VerifiedSolution = "OK"

	// VerifiedConfidence is the confidence a simulated inference reports.
	VerifiedConfidence = 0.99
)

// Memory is the gate consulted before inference.
type Memory interface {
	Retrieve(query string) (solution string, confidence float64, ok bool)
	Store(query, solution string, confidence float64)
	Threshold() float64
	Stats() memorybank.Stats
}

// Config describes one benchmark run.
type Config struct {
	TotalQueries       int    `json:"total_queries"`
	UniqueQueries      int    `json:"unique_queries"`
	TokensPerInference int    `json:"tokens_per_inference"`
	MsPerInference     int    `json:"ms_per_inference"`
	Seed               uint64 `json:"seed"`
}

// DefaultConfig returns the stock benchmark parameters.
func DefaultConfig() Config {
	return Config{
		TotalQueries:       1000,
		UniqueQueries:      200,
		TokensPerInference: 800,
		MsPerInference:     600,
		Seed:               123,
	}
}

// Validate reports whether c can be run.
func (c Config) Validate() error {
	switch {
	case c.TotalQueries < 0:
		return fmt.Errorf("%w: total queries must be >= 0, got %d", ErrInvalidConfig, c.TotalQueries)
	case c.UniqueQueries <= 0:
		return fmt.Errorf("%w: unique queries must be > 0, got %d", ErrInvalidConfig, c.UniqueQueries)
	case c.TokensPerInference < 0:
		return fmt.Errorf("%w: tokens per inference must be >= 0, got %d", ErrInvalidConfig, c.TokensPerInference)
	case c.MsPerInference < 0:
		return fmt.Errorf("%w: ms per inference must be >= 0, got %d", ErrInvalidConfig, c.MsPerInference)
	}
	return nil
}

// Report is the outcome of a run.
type Report struct {
	TotalQueries       int     `json:"total_queries"`
	UniqueQueries      int     `json:"unique_queries"`
	MemoryCapacity     int     `json:"memory_capacity"`
	StabilityThreshold float64 `json:"stability_threshold"`

	BaselineInferences int     `json:"baseline_inferences"`
	GatedInferences    int     `json:"gated_inferences"`
	InferencesAvoided  int     `json:"inferences_avoided"`
	MemoryHits         int     `json:"memory_hits"`
	HitRate            float64 `json:"memory_hit_rate"`

	TokensPerInference int `json:"tokens_per_inference"`
	BaselineTokens     int `json:"baseline_tokens"`
	GatedTokens        int `json:"gated_tokens"`
	TokenSavings       int `json:"token_savings"`

	MsPerInference int `json:"ms_per_inference"`
	BaselineMs     int `json:"baseline_ms"`
	GatedMs        int `json:"gated_ms"`
	MsSavings      int `json:"ms_savings"`

	// TokenReduction and LatencyReduction are percentages of the baseline;
	// zero when the baseline is zero.
	TokenReduction   float64 `json:"token_reduction"`
	LatencyReduction float64 `json:"latency_reduction"`

	Stats    memorybank.Stats `json:"stats"`
	Seed     uint64           `json:"seed"`
	Duration time.Duration    `json:"duration"`
}

// GenerateWorkload draws total queries uniformly, with repetition, from the
// unique names query_0 .. query_<unique-1>. Fewer unique queries means more
// repeats. The same seed always produces the same workload.
func GenerateWorkload(total, unique int, seed uint64) []string {
	if total <= 0 || unique <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	workload := make([]string, total)
	for i := range workload {
		workload[i] = fmt.Sprintf("query_%d", rng.Intn(unique))
	}
	return workload
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

// Run replays the workload described by cfg against mem. A query is a hit
// when mem returns it with a confidence at or above mem's threshold; any other
// query pays the inference cost and stores VerifiedSolution at
// VerifiedConfidence. Run stops early with ctx's error if ctx is done.
func Run(ctx context.Context, cfg Config, mem Memory, opts ...Option) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &runOptions{logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	start := time.Now()
	threshold := mem.Threshold()

	r := &Report{
		TotalQueries:       cfg.TotalQueries,
		UniqueQueries:      cfg.UniqueQueries,
		StabilityThreshold: threshold,
		BaselineInferences: cfg.TotalQueries,
		TokensPerInference: cfg.TokensPerInference,
		MsPerInference:     cfg.MsPerInference,
		Seed:               cfg.Seed,
	}

	for i, q := range GenerateWorkload(cfg.TotalQueries, cfg.UniqueQueries, cfg.Seed) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("benchmark interrupted after %d queries: %w", i, err)
		}

		r.BaselineTokens += cfg.TokensPerInference
		r.BaselineMs += cfg.MsPerInference

		if _, conf, ok := mem.Retrieve(q); ok && conf >= threshold {
			r.MemoryHits++
			continue
		}

		r.GatedInferences++
		r.GatedTokens += cfg.TokensPerInference
		r.GatedMs += cfg.MsPerInference
		mem.Store(q, VerifiedSolution, VerifiedConfidence)
	}

	r.finish(mem.Stats())
	r.Duration = time.Since(start)

	o.logger.Info("memory gate benchmark finished",
		"queries", r.TotalQueries,
		"hits", r.MemoryHits,
		"hit_rate", r.HitRate,
		"duration", r.Duration,
	)

	return r, nil
}

func (r *Report) finish(stats memorybank.Stats) {
	r.Stats = stats
	r.MemoryCapacity = stats.Capacity
	r.InferencesAvoided = r.BaselineInferences - r.GatedInferences
	r.TokenSavings = r.BaselineTokens - r.GatedTokens
	r.MsSavings = r.BaselineMs - r.GatedMs

	if r.TotalQueries > 0 {
		r.HitRate = float64(r.MemoryHits) / float64(r.TotalQueries)
	}
	if r.BaselineTokens > 0 {
		r.TokenReduction = float64(r.TokenSavings) / float64(r.BaselineTokens) * 100
	}
	if r.BaselineMs > 0 {
		r.LatencyReduction = float64(r.MsSavings) / float64(r.BaselineMs) * 100
	}
}
