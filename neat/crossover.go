package neat

import (
	"fmt"
	"sort"
)

// Crossover builds one offspring from two parents aligned by innovation id.
// fitter must be the parent that ranks first; the caller decides the order.
//
// Connections present in both parents are copied from either one at random,
// connections only the fitter parent has are always inherited, and connections
// only the weaker parent has are never inherited. Nodes are inherited when an
// inherited connection touches them or when they are a sensor or output of the
// fitter parent; a node both parents have is again copied from either at random.
// Every inherited gene is a fresh copy.
func Crossover(fitter, weaker *Genome, rng Random) (*Genome, error) {
	maxID := max(fitter.MaxConnectionID(), weaker.MaxConnectionID())

	inherited := make([]*ConnectGene, 0, len(fitter.Connections))
	mandatory := make(map[int]bool)
	for id := 1; id <= maxID; id++ {
		a, inFitter := fitter.Connections[id]
		if !inFitter {
			continue
		}
		chosen := a
		if b, inWeaker := weaker.Connections[id]; inWeaker && rng.Float64() < 0.5 {
			chosen = b
		}
		inherited = append(inherited, chosen.Copy())
		mandatory[chosen.Source] = true
		mandatory[chosen.Destination] = true
	}
	for id, n := range fitter.Nodes {
		if n.Role != Hidden {
			mandatory[id] = true
		}
	}

	nodeIDs := make([]int, 0, len(mandatory))
	for id := range mandatory {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Ints(nodeIDs)

	child := NewGenome()
	for _, id := range nodeIDs {
		a, inFitter := fitter.Nodes[id]
		b, inWeaker := weaker.Nodes[id]
		var chosen *NodeGene
		switch {
		case inFitter && inWeaker:
			chosen = a
			if rng.Float64() < 0.5 {
				chosen = b
			}
		case inFitter:
			chosen = a
		case inWeaker:
			chosen = b
		default:
			return nil, fmt.Errorf("%w: node %d missing from both parents", ErrStructuralIntegrity, id)
		}
		if err := child.AddNodeGene(chosen.Copy()); err != nil {
			return nil, err
		}
	}
	for _, c := range inherited {
		if err := child.AddConnectGene(c); err != nil {
			return nil, err
		}
	}
	return child, nil
}

// MutateWeights perturbs each connection weight with probability 1/len(connections)
// by multiplying it with a factor drawn from Normal(mean, stdev), then clamps the
// result to [minWeight, maxWeight].
func MutateWeights(g *Genome, rng Random, mean, stdev, minWeight, maxWeight float64) {
	n := len(g.Connections)
	if n == 0 {
		return
	}
	p := 1.0 / float64(n)
	for _, id := range g.ConnectionIDs() {
		if rng.Float64() >= p {
			continue
		}
		c := g.Connections[id]
		c.Weight = clamp(c.Weight*rng.Normal(mean, stdev), minWeight, maxWeight)
	}
}
