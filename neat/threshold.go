package neat

import (
	"fmt"
	"strings"
)

// ThresholdPolicy decides when a run has succeeded and how agents rank.
type ThresholdPolicy interface {
	// Met reports whether any agent has reached the threshold.
	Met(agents []*Agent) bool
	// Compare orders two agents: negative when a ranks ahead of b (is fitter),
	// positive when b ranks ahead, zero when tied. Agents without fitness rank last.
	Compare(a, b *Agent) int
	// Better reports whether fitness value x ranks strictly ahead of y.
	Better(x, y float64) bool
	// Relative scales a species' mean fitness against the population mean so
	// that a value above 1 always means "better than average".
	Relative(speciesMean, populationMean float64) float64
}

const minRelativeMean = 1e-6

// MinThreshold is met when some agent's fitness is at or below Threshold; lower fitness is better.
type MinThreshold struct {
	Threshold float64
}

// MaxThreshold is met when some agent's fitness is at or above Threshold; higher fitness is better.
type MaxThreshold struct {
	Threshold float64
}

// NewThresholdPolicy returns the policy for a fitness_criterion of "min" or "max".
func NewThresholdPolicy(criterion string, threshold float64) (ThresholdPolicy, error) {
	switch strings.ToLower(criterion) {
	case "min":
		return MinThreshold{Threshold: threshold}, nil
	case "max":
		return MaxThreshold{Threshold: threshold}, nil
	}
	return nil, fmt.Errorf("%w: invalid fitness_criterion '%s'", ErrConfiguration, criterion)
}

func (t MinThreshold) Met(agents []*Agent) bool {
	for _, a := range agents {
		if f, ok := a.Fitness(); ok && f <= t.Threshold {
			return true
		}
	}
	return false
}

func (t MinThreshold) Compare(a, b *Agent) int {
	return compareFitness(t, a, b)
}

func (t MinThreshold) Better(x, y float64) bool {
	return x < y
}

// Relative floors speciesMean at minRelativeMean, so a species at or below zero
// fitness gets the largest share rather than none.
func (t MinThreshold) Relative(speciesMean, populationMean float64) float64 {
	if populationMean <= 0 {
		return 1
	}
	return populationMean / max(speciesMean, minRelativeMean)
}

func (t MaxThreshold) Met(agents []*Agent) bool {
	for _, a := range agents {
		if f, ok := a.Fitness(); ok && f >= t.Threshold {
			return true
		}
	}
	return false
}

func (t MaxThreshold) Compare(a, b *Agent) int {
	return compareFitness(t, a, b)
}

func (t MaxThreshold) Better(x, y float64) bool {
	return x > y
}

func (t MaxThreshold) Relative(speciesMean, populationMean float64) float64 {
	if populationMean <= 0 {
		return 1
	}
	return speciesMean / populationMean
}

func compareFitness(t ThresholdPolicy, a, b *Agent) int {
	fa, okA := a.Fitness()
	fb, okB := b.Fitness()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	case t.Better(fa, fb):
		return -1
	case t.Better(fb, fa):
		return 1
	default:
		return 0
	}
}
