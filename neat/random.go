package neat

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// Random is the source of randomness used by every stochastic step of the
// algorithm. Implementations must be safe for concurrent use.
type Random interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// Uniform returns a uniform value in [lo, hi).
	Uniform(lo, hi float64) float64
	// Normal returns a normally distributed value.
	Normal(mean, stdev float64) float64
}

// lockedRandom is the default Random, a PCG source guarded by a mutex.
type lockedRandom struct {
	mu  sync.Mutex
	src *rand.PCG
	rnd *rand.Rand
}

// NewRandom returns a seeded Random. Two sources built from the same seed
// produce the same sequence.
func NewRandom(seed uint64) Random {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &lockedRandom{src: src, rnd: rand.New(src)}
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRandom) Uniform(lo, hi float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return distuv.Uniform{Min: lo, Max: hi, Src: r.src}.Rand()
}

func (r *lockedRandom) Normal(mean, stdev float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stdev <= 0 {
		return mean
	}
	return distuv.Normal{Mu: mean, Sigma: stdev, Src: r.src}.Rand()
}

// randomIndex returns a uniform index in [0, n). n must be positive.
func randomIndex(rng Random, n int) int {
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// randomChoice returns a uniformly chosen element of items.
func randomChoice[T any](rng Random, items []T) T {
	return items[randomIndex(rng, len(items))]
}

// weightedIndex returns an index chosen with probability proportional to
// weights[i]. Non-positive weights are never chosen unless all are.
func weightedIndex(rng Random, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return randomIndex(rng, len(weights))
	}
	target := rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		target -= w
		if target < 0 {
			return i
		}
	}
	// Rounding left target at zero; fall back to the last positive weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}
