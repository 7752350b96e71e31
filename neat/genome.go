package neat

import (
	"fmt"
	"slices"
	"sort"
)

// Genome is a candidate network: node genes and connection genes keyed by
// innovation id. Connections refer to nodes by id, never by pointer, so cyclic
// wiring needs no special ownership handling.
//
// Invariant: every connection's endpoints are present in Nodes. Use AddNodeGene
// and AddConnectGene rather than writing to the maps directly so the invariant
// and the sensor/output indexes hold.
type Genome struct {
	Nodes       map[int]*NodeGene    // Map node ID -> NodeGene
	Connections map[int]*ConnectGene // Map connection ID -> ConnectGene

	sensors []int // Sensor node ids, ascending.
	outputs []int // Output node ids, ascending.
}

// NewGenome creates an empty genome.
func NewGenome() *Genome {
	return &Genome{
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[int]*ConnectGene),
	}
}

// AddNodeGene inserts a node gene. It fails with ErrStructuralIntegrity if the id
// is already present, leaving the genome unchanged.
func (g *Genome) AddNodeGene(node *NodeGene) error {
	if _, exists := g.Nodes[node.ID]; exists {
		return fmt.Errorf("%w: duplicate node id %d", ErrStructuralIntegrity, node.ID)
	}
	g.Nodes[node.ID] = node
	switch node.Role {
	case Sensor:
		g.sensors = insertSorted(g.sensors, node.ID)
	case Output:
		g.outputs = insertSorted(g.outputs, node.ID)
	}
	return nil
}

// AddConnectGene inserts a connection gene. It fails with ErrStructuralIntegrity if
// the id is already present or either endpoint is missing, leaving the genome unchanged.
func (g *Genome) AddConnectGene(conn *ConnectGene) error {
	if _, exists := g.Connections[conn.ID]; exists {
		return fmt.Errorf("%w: duplicate connection id %d", ErrStructuralIntegrity, conn.ID)
	}
	if _, ok := g.Nodes[conn.Source]; !ok {
		return fmt.Errorf("%w: connection %d source node %d missing", ErrStructuralIntegrity, conn.ID, conn.Source)
	}
	if _, ok := g.Nodes[conn.Destination]; !ok {
		return fmt.Errorf("%w: connection %d destination node %d missing", ErrStructuralIntegrity, conn.ID, conn.Destination)
	}
	g.Connections[conn.ID] = conn
	return nil
}

// SensorIDs returns the sensor node ids in ascending order. The slice is shared; do not modify it.
func (g *Genome) SensorIDs() []int { return g.sensors }

// OutputIDs returns the output node ids in ascending order. The slice is shared; do not modify it.
func (g *Genome) OutputIDs() []int { return g.outputs }

// NodeIDs returns every node id in ascending order.
func (g *Genome) NodeIDs() []int {
	return sortedKeys(g.Nodes)
}

// ConnectionIDs returns every connection id in ascending order.
func (g *Genome) ConnectionIDs() []int {
	return sortedKeys(g.Connections)
}

// MaxNodeID returns the largest node id, or 0 for an empty genome.
func (g *Genome) MaxNodeID() int {
	m := 0
	for id := range g.Nodes {
		m = max(m, id)
	}
	return m
}

// MaxConnectionID returns the largest connection id, or 0 when there are no connections.
func (g *Genome) MaxConnectionID() int {
	m := 0
	for id := range g.Connections {
		m = max(m, id)
	}
	return m
}

// HasLink reports whether a connection source->destination exists, enabled or not.
func (g *Genome) HasLink(source, destination int) bool {
	for _, c := range g.Connections {
		if c.Source == source && c.Destination == destination {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the genome.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		Nodes:       make(map[int]*NodeGene, len(g.Nodes)),
		Connections: make(map[int]*ConnectGene, len(g.Connections)),
		sensors:     slices.Clone(g.sensors),
		outputs:     slices.Clone(g.outputs),
	}
	for id, n := range g.Nodes {
		c.Nodes[id] = n.Copy()
	}
	for id, cg := range g.Connections {
		c.Connections[id] = cg.Copy()
	}
	return c
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	enabled := 0
	for _, c := range g.Connections {
		if c.Enabled() {
			enabled++
		}
	}
	return fmt.Sprintf("Genome(Nodes: %d, Connections: %d enabled / %d)", len(g.Nodes), enabled, len(g.Connections))
}

// ToVector encodes the genome as a fixed-length numeric vector so that genomes of
// one population can be compared as points in the same space.
//
// For node ids 1..maxNodeID it emits a one-hot block for the aggregation choice
// followed by one for the activation choice; a block is omitted when its catalog
// has at most one entry, and an absent node emits zeros in place of its blocks.
// For connection ids 1..maxConnectionID it emits (enabled, weight), or (0, 0)
// when the connection is absent. A gene naming a function outside the catalogs
// fails with ErrUnknownFunction.
func (g *Genome) ToVector(maxNodeID, maxConnectionID int, aggregations, activations []string) ([]float64, error) {
	aggWidth, actWidth := 0, 0
	if len(aggregations) > 1 {
		aggWidth = len(aggregations)
	}
	if len(activations) > 1 {
		actWidth = len(activations)
	}

	vec := make([]float64, 0, maxNodeID*(aggWidth+actWidth)+2*maxConnectionID)
	for id := 1; id <= maxNodeID; id++ {
		block := make([]float64, aggWidth+actWidth)
		if node, ok := g.Nodes[id]; ok {
			agg := slices.Index(aggregations, node.Aggregation)
			if agg < 0 {
				return nil, fmt.Errorf("%w: node %d aggregation %q", ErrUnknownFunction, id, node.Aggregation)
			}
			act := slices.Index(activations, node.Activation)
			if act < 0 {
				return nil, fmt.Errorf("%w: node %d activation %q", ErrUnknownFunction, id, node.Activation)
			}
			if aggWidth > 0 {
				block[agg] = 1
			}
			if actWidth > 0 {
				block[aggWidth+act] = 1
			}
		}
		vec = append(vec, block...)
	}
	for id := 1; id <= maxConnectionID; id++ {
		conn, ok := g.Connections[id]
		switch {
		case !ok:
			vec = append(vec, 0, 0)
		case conn.Enabled():
			vec = append(vec, 1, conn.Weight)
		default:
			vec = append(vec, 0, conn.Weight)
		}
	}
	return vec, nil
}

// insertSorted inserts v into an ascending slice.
func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	return slices.Insert(s, i, v)
}

// sortedKeys returns the keys of an int-keyed map in ascending order.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
