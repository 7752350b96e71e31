package neat

import "math"

// Compatibility computes the NEAT compatibility distance between two genomes:
//
//	(c1*excess + c2*disjoint)/M + c3*avgWeightDiff + (c4*activationMismatch + c5*aggregationMismatch)/M
//
// where M is the larger connection count. The activation (aggregation) term is
// dropped when only one activation (aggregation) function is available, since
// genomes cannot differ in it.
type Compatibility struct {
	ExcessCoefficient      float64 // c1
	DisjointCoefficient    float64 // c2
	WeightCoefficient      float64 // c3
	ActivationCoefficient  float64 // c4
	AggregationCoefficient float64 // c5

	ActivationOptions  int // Size of the activation catalog.
	AggregationOptions int // Size of the aggregation catalog.
}

// NewCompatibility builds the distance measure from genome configuration.
func NewCompatibility(cfg *GenomeConfig) *Compatibility {
	return &Compatibility{
		ExcessCoefficient:      cfg.CompatibilityExcessCoefficient,
		DisjointCoefficient:    cfg.CompatibilityDisjointCoefficient,
		WeightCoefficient:      cfg.CompatibilityWeightCoefficient,
		ActivationCoefficient:  cfg.CompatibilityActivationCoefficient,
		AggregationCoefficient: cfg.CompatibilityAggregationCoefficient,
		ActivationOptions:      len(cfg.ActivationOptions),
		AggregationOptions:     len(cfg.AggregationOptions),
	}
}

// GeneDiff summarises how two genomes' connection genes line up.
type GeneDiff struct {
	Excess        int     // Mismatches beyond the end of the shorter id range.
	Disjoint      int     // Mismatches inside the shared id range.
	Matching      int     // Ids present in both.
	AvgWeightDiff float64 // Mean |w1-w2| over matching ids; 0 without matches.
}

// DiffConnections aligns the connection genes of a and b by innovation id.
func DiffConnections(a, b *Genome) GeneDiff {
	limit := min(a.MaxConnectionID(), b.MaxConnectionID())
	var d GeneDiff
	weightSum := 0.0
	// Ascending order keeps the weight sum, and so the distance, symmetric to the last bit.
	for _, id := range a.ConnectionIDs() {
		ca := a.Connections[id]
		if cb, ok := b.Connections[id]; ok {
			d.Matching++
			weightSum += math.Abs(ca.Weight - cb.Weight)
			continue
		}
		if id > limit {
			d.Excess++
		} else {
			d.Disjoint++
		}
	}
	for id := range b.Connections {
		if _, ok := a.Connections[id]; ok {
			continue
		}
		if id > limit {
			d.Excess++
		} else {
			d.Disjoint++
		}
	}
	if d.Matching > 0 {
		d.AvgWeightDiff = weightSum / float64(d.Matching)
	}
	return d
}

// functionMismatches counts nodes present in both genomes whose activation and
// aggregation choices differ.
func functionMismatches(a, b *Genome) (activation, aggregation int) {
	for id, na := range a.Nodes {
		nb, ok := b.Nodes[id]
		if !ok {
			continue
		}
		if na.Activation != nb.Activation {
			activation++
		}
		if na.Aggregation != nb.Aggregation {
			aggregation++
		}
	}
	return activation, aggregation
}

// Distance returns the compatibility distance between a and b. It is symmetric.
func (c *Compatibility) Distance(a, b *Genome) float64 {
	m := float64(max(len(a.Connections), len(b.Connections)))
	if m < 1 {
		m = 1 // Both genomes unconnected.
	}

	diff := DiffConnections(a, b)
	d := (c.ExcessCoefficient*float64(diff.Excess) + c.DisjointCoefficient*float64(diff.Disjoint)) / m
	d += c.WeightCoefficient * diff.AvgWeightDiff

	if c.ActivationOptions > 1 || c.AggregationOptions > 1 {
		act, agg := functionMismatches(a, b)
		functional := 0.0
		if c.ActivationOptions > 1 {
			functional += c.ActivationCoefficient * float64(act)
		}
		if c.AggregationOptions > 1 {
			functional += c.AggregationCoefficient * float64(agg)
		}
		d += functional / m
	}
	return d
}
