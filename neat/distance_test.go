package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffConnections(t *testing.T) {
	a := buildGenome(t, []int{1, 2}, []int{3}, nil, "sigmoid",
		link{1, 1, 3, 1.0},
		link{2, 2, 3, 1.0},
		link{3, 3, 3, 1.0},
	)
	b := buildGenome(t, []int{1, 2}, []int{3}, nil, "sigmoid",
		link{1, 1, 3, 0.5},
		link{4, 2, 3, 1.0},
		link{5, 3, 3, 1.0},
	)

	d := DiffConnections(a, b)
	assert.Equal(t, GeneDiff{Excess: 2, Disjoint: 2, Matching: 1, AvgWeightDiff: 0.5}, d)
	assert.Equal(t, d, DiffConnections(b, a))

	c := &Compatibility{ExcessCoefficient: 1, DisjointCoefficient: 2, WeightCoefficient: 0.4, ActivationOptions: 1, AggregationOptions: 1}
	// (1*2 + 2*2)/3 + 0.4*0.5
	assert.InDelta(t, 2.2, c.Distance(a, b), 1e-12)
}

func TestDistance_Symmetric(t *testing.T) {
	fitter, weaker := crossoverParents(t)
	weaker.Nodes[3].Activation = "tanh"
	c := &Compatibility{
		ExcessCoefficient: 1, DisjointCoefficient: 1, WeightCoefficient: 0.4,
		ActivationCoefficient: 1, AggregationCoefficient: 1,
		ActivationOptions: 2, AggregationOptions: 1,
	}
	assert.Equal(t, c.Distance(fitter, weaker), c.Distance(weaker, fitter))
	assert.Zero(t, c.Distance(fitter, fitter))
}

func TestDistance_FunctionTerms(t *testing.T) {
	a := buildGenome(t, []int{1}, []int{2}, nil, "sigmoid", link{1, 1, 2, 1})
	b := buildGenome(t, []int{1}, []int{2}, nil, "tanh", link{1, 1, 2, 1})
	c := &Compatibility{ActivationCoefficient: 1, AggregationCoefficient: 1, ActivationOptions: 2, AggregationOptions: 1}
	assert.Equal(t, 2.0, c.Distance(a, b))

	// A single-entry catalog drops the term altogether.
	c.ActivationOptions = 1
	assert.Zero(t, c.Distance(a, b))
}

func TestDistance_Unconnected(t *testing.T) {
	a := buildGenome(t, []int{1}, []int{2}, nil, "sigmoid")
	b := buildGenome(t, []int{1}, []int{2}, nil, "sigmoid", link{1, 1, 2, 1})
	c := NewCompatibility(&DefaultConfig().Genome)
	assert.Equal(t, 1.0, c.Distance(a, b))
	assert.Zero(t, c.Distance(a, a))
}
