package neat

import "fmt"

// addConnectionAttempts bounds the search for an unconnected node pair.
const addConnectionAttempts = 20

// Mutate applies the structural and attribute mutations configured in cfg to g.
// New structure takes its innovation ids from log, so two genomes making the same
// change in one generation end up with the same ids. Weight perturbation is done
// separately by MutateWeights.
func Mutate(g *Genome, cfg *GenomeConfig, rng Random, log *InnovationLog) error {
	// --- Structural Mutations ---
	if cfg.NodeAddProb > 0 && rng.Float64() < cfg.NodeAddProb {
		if err := mutateAddNode(g, cfg, rng, log); err != nil {
			return fmt.Errorf("add node: %w", err)
		}
	}
	if cfg.ConnAddProb > 0 && rng.Float64() < cfg.ConnAddProb {
		if err := mutateAddConnection(g, cfg, rng, log); err != nil {
			return fmt.Errorf("add connection: %w", err)
		}
	}

	// --- Attribute Mutations ---
	if cfg.EnabledMutateRate > 0 {
		for _, id := range g.ConnectionIDs() {
			if rng.Float64() < cfg.EnabledMutateRate {
				c := g.Connections[id]
				c.Disabled = !c.Disabled
			}
		}
	}
	for _, id := range g.NodeIDs() {
		node := g.Nodes[id]
		if node.Role == Sensor {
			continue
		}
		node.Activation = mutateStringAttribute(rng, node.Activation, cfg.ActivationMutateRate, cfg.ActivationOptions)
		node.Aggregation = mutateStringAttribute(rng, node.Aggregation, cfg.AggregationMutateRate, cfg.AggregationOptions)
	}
	return nil
}

// mutateAddNode splits a random enabled connection. The connection is disabled and
// replaced by source->new (weight 1) and new->destination (the old weight).
func mutateAddNode(g *Genome, cfg *GenomeConfig, rng Random, log *InnovationLog) error {
	candidates := make([]*ConnectGene, 0, len(g.Connections))
	for _, id := range g.ConnectionIDs() {
		if c := g.Connections[id]; c.Enabled() {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	split := randomChoice(rng, candidates)

	rec := log.Split(split, false)
	if g.has(rec) {
		// Same connection split earlier in this lineage; ids must be fresh.
		rec = log.Split(split, true)
	}

	node := &NodeGene{
		ID:          rec.Node,
		Role:        Hidden,
		Activation:  initStringAttribute(rng, cfg.ActivationDefault, cfg.ActivationOptions),
		Aggregation: initStringAttribute(rng, cfg.AggregationDefault, cfg.AggregationOptions),
	}
	if err := g.AddNodeGene(node); err != nil {
		return err
	}
	in := &ConnectGene{ID: rec.In, Source: split.Source, Destination: rec.Node, Weight: 1.0}
	if err := g.AddConnectGene(in); err != nil {
		delete(g.Nodes, rec.Node)
		return err
	}
	out := &ConnectGene{ID: rec.Out, Source: rec.Node, Destination: split.Destination, Weight: split.Weight}
	if err := g.AddConnectGene(out); err != nil {
		delete(g.Connections, rec.In)
		delete(g.Nodes, rec.Node)
		return err
	}
	split.Disabled = true
	return nil
}

// has reports whether any id of rec is already used by g.
func (g *Genome) has(rec SplitRecord) bool {
	_, node := g.Nodes[rec.Node]
	_, in := g.Connections[rec.In]
	_, out := g.Connections[rec.Out]
	return node || in || out
}

// mutateAddConnection tries to connect a random pair of nodes that are not yet
// connected. Sensors never receive connections, and when cfg.FeedForward is set
// the new connection may not close a cycle. Giving up after a bounded number of
// attempts is not an error.
func mutateAddConnection(g *Genome, cfg *GenomeConfig, rng Random, log *InnovationLog) error {
	sources := g.NodeIDs()
	destinations := make([]int, 0, len(sources))
	for _, id := range sources {
		if g.Nodes[id].Role != Sensor {
			destinations = append(destinations, id)
		}
	}
	if len(sources) == 0 || len(destinations) == 0 {
		return nil
	}

	for i := 0; i < addConnectionAttempts; i++ {
		src := randomChoice(rng, sources)
		dst := randomChoice(rng, destinations)
		if g.HasLink(src, dst) {
			continue
		}
		if cfg.FeedForward && createsCycle(g, src, dst) {
			continue
		}
		id := log.Link(src, dst)
		if _, taken := g.Connections[id]; taken {
			continue
		}
		conn := &ConnectGene{
			ID:          id,
			Source:      src,
			Destination: dst,
			Weight:      clamp(rng.Normal(cfg.WeightInitMean, cfg.WeightInitStdev), cfg.WeightMinValue, cfg.WeightMaxValue),
		}
		return g.AddConnectGene(conn)
	}
	return nil
}

// createsCycle reports whether adding in->out would close a cycle, i.e. whether
// in is reachable from out over existing connections (enabled or not, since a
// disabled connection may be re-enabled later).
func createsCycle(g *Genome, in, out int) bool {
	if in == out {
		return true
	}
	next := make(map[int][]int)
	for _, c := range g.Connections {
		next[c.Source] = append(next[c.Source], c.Destination)
	}
	visited := map[int]bool{out: true}
	queue := []int{out}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range next[current] {
			if n == in {
				return true
			}
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}
