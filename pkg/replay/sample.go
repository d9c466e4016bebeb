package replay

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SampleBatch draws up to batchSize (query, target) pairs with probability
// softmax(score).
//
// With replace, exactly batchSize independent draws are made and repeats are
// expected. Without replace, min(batchSize, Len()) distinct examples are
// drawn one at a time, each from the renormalised weights of the examples
// not yet taken. An empty buffer or a non-positive batchSize yields nil.
func (b *Buffer) SampleBatch(batchSize int, replace bool) []Pair {
	b.mu.Lock()
	defer b.mu.Unlock()

	if batchSize <= 0 || len(b.examples) == 0 {
		return nil
	}

	probs := softmax(b.scores())

	var chosen []int
	if replace {
		chosen = b.drawWithReplacement(probs, batchSize)
	} else {
		chosen = b.drawWithoutReplacement(probs, min(batchSize, len(probs)))
	}

	batch := make([]Pair, len(chosen))
	for i, idx := range chosen {
		batch[i] = Pair{Query: b.examples[idx].Query, Target: b.examples[idx].Target}
	}

	b.metrics.Sample(len(batch))
	b.logger.Debug("sampled replay batch",
		"requested", batchSize,
		"returned", len(batch),
		"replace", replace,
	)

	return batch
}

// Probabilities returns the current sampling distribution, aligned with
// Examples.
func (b *Buffer) Probabilities() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.examples) == 0 {
		return nil
	}
	return softmax(b.scores())
}

func (b *Buffer) scores() []float64 {
	scores := make([]float64, len(b.examples))
	for i, e := range b.examples {
		scores[i] = e.Score
	}
	return scores
}

func (b *Buffer) drawWithReplacement(probs []float64, k int) []int {
	dist := distuv.NewCategorical(probs, b.src)

	chosen := make([]int, k)
	for i := range chosen {
		chosen[i] = int(dist.Rand())
	}
	return chosen
}

// drawWithoutReplacement takes k distinct indices. Taking an index zeroes its
// weight, which renormalises the rest. When the pool runs dry or lands on an
// index already taken, it is rebuilt from the untaken weights.
func (b *Buffer) drawWithoutReplacement(probs []float64, k int) []int {
	pool := sampleuv.NewWeighted(probs, b.src)
	taken := make([]bool, len(probs))

	chosen := make([]int, 0, k)
	for len(chosen) < k {
		idx, ok := pool.Take()
		if !ok || taken[idx] {
			pool = b.rebuild(probs, taken)
			continue
		}

		taken[idx] = true
		chosen = append(chosen, idx)
	}
	return chosen
}

// rebuild returns a fresh pool over the untaken indices. If their weights have
// underflowed to zero they are drawn uniformly.
func (b *Buffer) rebuild(probs []float64, taken []bool) sampleuv.Weighted {
	weights := make([]float64, len(probs))
	for i, p := range probs {
		if !taken[i] {
			weights[i] = p
		}
	}

	if !(floats.Sum(weights) > 0) {
		for i := range weights {
			if !taken[i] {
				weights[i] = 1
			}
		}
	}
	return sampleuv.NewWeighted(weights, b.src)
}

// softmax converts scores to probabilities, subtracting the maximum before
// exponentiating. A degenerate result (non-positive or non-finite total)
// falls back to the uniform distribution.
func softmax(scores []float64) []float64 {
	n := len(scores)
	probs := make([]float64, n)

	m := floats.Max(scores)
	for i, s := range scores {
		probs[i] = math.Exp(s - m)
	}

	total := floats.Sum(probs)
	if !(total > 0) || math.IsInf(total, 0) {
		for i := range probs {
			probs[i] = 1 / float64(n)
		}
		return probs
	}

	floats.Scale(1/total, probs)
	return probs
}
