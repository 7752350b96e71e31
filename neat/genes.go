package neat

import (
	"fmt"
	"strings"
)

// NodeRole tells whether a node receives external input, exposes output, or is internal.
type NodeRole int

const (
	Sensor NodeRole = iota
	Output
	Hidden
)

func (r NodeRole) String() string {
	switch r {
	case Sensor:
		return "sensor"
	case Output:
		return "output"
	case Hidden:
		return "hidden"
	default:
		return fmt.Sprintf("NodeRole(%d)", int(r))
	}
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the genome.
// ID and Role never change once the gene exists; the function choices may mutate.
type NodeGene struct {
	ID          int      // Innovation id, unique across the run.
	Role        NodeRole // Sensor, output, or hidden.
	Activation  string   // Name of the activation function
	Aggregation string   // Name of the aggregation function
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Role: %s, Activation: %s, Aggregation: %s)",
		ng.ID, ng.Role, ng.Activation, ng.Aggregation)
}

// Copy creates an independent copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// --------------------------- ConnectGene ---------------------------

// ConnectGene is a weighted, directed connection between two nodes of the same genome.
type ConnectGene struct {
	ID          int // Innovation id, unique across the run.
	Source      int // Source node id.
	Destination int // Destination node id.
	Weight      float64
	Disabled    bool
}

// Enabled reports whether the connection takes part in activation.
func (cg *ConnectGene) Enabled() bool {
	return !cg.Disabled
}

// String returns a string representation of the ConnectGene.
func (cg *ConnectGene) String() string {
	return fmt.Sprintf("ConnectGene(ID: %d, %d->%d, Weight: %.3f, Enabled: %t)",
		cg.ID, cg.Source, cg.Destination, cg.Weight, cg.Enabled())
}

// Copy creates an independent copy of the ConnectGene.
func (cg *ConnectGene) Copy() *ConnectGene {
	c := *cg
	return &c
}

// --------------------------- Attribute Helpers ---------------------------

// initStringAttribute picks the configured default, or a random option when the
// default is "random", "none" or empty.
func initStringAttribute(rng Random, defaultVal string, options []string) string {
	switch strings.ToLower(defaultVal) {
	case "random", "none", "":
		return randomChoice(rng, options)
	}
	return defaultVal
}

// mutateStringAttribute replaces value with a different option with probability mutateRate.
func mutateStringAttribute(rng Random, value string, mutateRate float64, options []string) string {
	if len(options) <= 1 || mutateRate <= 0 || rng.Float64() >= mutateRate {
		return value
	}
	others := make([]string, 0, len(options)-1)
	for _, opt := range options {
		if opt != value {
			others = append(others, opt)
		}
	}
	if len(others) == 0 {
		return value
	}
	return randomChoice(rng, others)
}
