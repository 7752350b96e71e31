package neat

import (
	"fmt"
	"math"
)

// settleEpsilon is the change in a partial input below which a node is not
// re-queued. It is the only thing that stops propagation around a cycle.
const settleEpsilon = 0.01

// externalInput is the partial-input key under which a sensor receives its
// external value. Innovation ids start at 1, so it never clashes with a node.
const externalInput = 0

type activateOptions struct {
	maxSteps int
}

// ActivateOption tunes a single call to Genome.Activate.
type ActivateOption func(*activateOptions)

// WithMaxSteps bounds the number of node firings. Activation fails with
// ErrActivationDiverged when the bound is exceeded. Zero means unbounded.
func WithMaxSteps(n int) ActivateOption {
	return func(o *activateOptions) { o.maxSteps = n }
}

type edge struct {
	to     int
	weight float64
}

// Activate propagates inputs (one per sensor, in ascending sensor id order)
// through the enabled connections and returns one value per output node in
// ascending output id order.
//
// Nodes are fired from a FIFO queue. A fired node overwrites the partial input it
// contributes to each downstream node; the downstream node is queued again only
// when it is not already queued and the contribution is new or moved by more than
// settleEpsilon. On cyclic graphs this yields an approximate fixed point rather than
// a time-stepped recurrent simulation. Outputs are read from whatever partial inputs
// have arrived, so an output that never fired aggregates an empty input set.
func (g *Genome) Activate(inputs []float64, fns *Functions, opts ...ActivateOption) ([]float64, error) {
	var o activateOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(inputs) != len(g.sensors) {
		return nil, fmt.Errorf("%w: got %d inputs for %d sensors", ErrInputMismatch, len(inputs), len(g.sensors))
	}

	// node id -> source id -> weighted contribution
	partial := make(map[int]map[int]float64, len(g.Nodes))
	queued := make(map[int]bool, len(g.Nodes))
	queue := make([]int, 0, len(g.Nodes))

	for i, id := range g.sensors {
		partial[id] = map[int]float64{externalInput: inputs[i]}
		queued[id] = true
		queue = append(queue, id)
	}

	adjacency := make(map[int][]edge)
	for _, id := range g.ConnectionIDs() {
		c := g.Connections[id]
		if c.Disabled {
			continue
		}
		adjacency[c.Source] = append(adjacency[c.Source], edge{to: c.Destination, weight: c.Weight})
	}

	steps := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		steps++
		if o.maxSteps > 0 && steps > o.maxSteps {
			return nil, fmt.Errorf("%w: exceeded %d steps", ErrActivationDiverged, o.maxSteps)
		}

		out, err := g.fire(id, partial[id], fns)
		if err != nil {
			return nil, err
		}

		for _, e := range adjacency[id] {
			slot := partial[e.to]
			if slot == nil {
				slot = make(map[int]float64)
				partial[e.to] = slot
			}
			value := e.weight * out
			old, seen := slot[id]
			slot[id] = value
			if queued[e.to] {
				continue
			}
			if !seen || math.Abs(value-old) > settleEpsilon {
				queued[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}

	outputs := make([]float64, len(g.outputs))
	for i, id := range g.outputs {
		out, err := g.fire(id, partial[id], fns)
		if err != nil {
			return nil, err
		}
		outputs[i] = out
	}
	return outputs, nil
}

// fire computes activation(aggregation(inputs)) for one node.
func (g *Genome) fire(id int, inputs map[int]float64, fns *Functions) (float64, error) {
	act, agg, err := fns.resolve(g.Nodes[id])
	if err != nil {
		return 0, err
	}
	if inputs == nil {
		inputs = map[int]float64{}
	}
	return act(agg(inputs)), nil
}
