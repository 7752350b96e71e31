package neat

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// Reproduction handles selection, offspring quotas and the creation of new
// genomes through crossover and mutation.
type Reproduction struct {
	Config      *ReproductionConfig
	Genome      *GenomeConfig
	Innovations *InnovationLog // Ids for structural mutations of the current generation.

	rng    Random
	logger *slog.Logger
}

// NewReproduction creates a new reproduction manager.
func NewReproduction(config *ReproductionConfig, genome *GenomeConfig, innovations *InnovationLog, rng Random, logger *slog.Logger) *Reproduction {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reproduction{
		Config:      config,
		Genome:      genome,
		Innovations: innovations,
		rng:         rng,
		logger:      logger,
	}
}

// Cull removes agents at random with a probability that grows with rank. ranked
// must be ordered best first; the agent at rank i of n is removed with probability
// (i/n)^CullExponent, so the best agent always survives. Both returned slices keep
// the rank order.
func (r *Reproduction) Cull(ranked []*Agent) (survivors, culled []*Agent) {
	n := float64(len(ranked))
	survivors = make([]*Agent, 0, len(ranked))
	for i, a := range ranked {
		if r.rng.Float64() < math.Pow(float64(i)/n, r.Config.CullExponent) {
			culled = append(culled, a)
			continue
		}
		survivors = append(survivors, a)
	}
	return survivors, culled
}

// Quotas decides how many agents each species holds after mating.
//
// A species' raw quota is its size times its mean fitness relative to the
// population mean (see ThresholdPolicy.Relative), rounded. No quota falls below
// the species' current size, since survivors are never removed by mating. The
// quotas are then nudged one unit at a time until they sum to target: growth
// goes to a species chosen with probability proportional to its size, shrinkage
// to one chosen the same way among species above their current size.
//
// species maps species id to members; fitness must be set on every member. The
// members must number at most target in total.
func (r *Reproduction) Quotas(species map[int][]*Agent, policy ThresholdPolicy, target int) (map[int]int, error) {
	ids := sortedKeys(species)
	sizes := make([]int, len(ids))
	means := make([]float64, len(ids))
	all := make([]float64, 0, target)
	total := 0
	for i, sid := range ids {
		fitnesses, err := memberFitnesses(species[sid])
		if err != nil {
			return nil, err
		}
		sizes[i] = len(fitnesses)
		means[i] = Mean(fitnesses)
		all = append(all, fitnesses...)
		total += sizes[i]
	}
	if total > target {
		return nil, fmt.Errorf("%w: %d survivors exceed target %d", ErrInvariantViolation, total, target)
	}
	if len(ids) == 0 {
		if target > 0 {
			return nil, fmt.Errorf("%w: no species left to fill %d slots", ErrInvariantViolation, target)
		}
		return map[int]int{}, nil
	}

	popMean := Mean(all)
	quotas := make([]int, len(ids))
	sum := 0
	for i := range ids {
		raw := math.Round(policy.Relative(means[i], popMean) * float64(sizes[i]))
		quotas[i] = sizes[i]
		if !math.IsNaN(raw) && raw > float64(sizes[i]) {
			quotas[i] = int(min(raw, float64(target)))
		}
		sum += quotas[i]
	}

	weights := make([]float64, len(ids))
	for sum != target {
		for i := range ids {
			weights[i] = float64(sizes[i])
			if sum > target && quotas[i] <= sizes[i] {
				weights[i] = 0
			}
		}
		i := weightedIndex(r.rng, weights)
		if sum < target {
			quotas[i]++
			sum++
		} else {
			quotas[i]--
			sum--
		}
	}

	result := make(map[int]int, len(ids))
	for i, sid := range ids {
		result[sid] = quotas[i]
	}
	return result, nil
}

// Offspring breeds one child from two parents drawn uniformly from survivors.
// The parent that ranks first under policy supplies the disjoint and excess
// genes; on a tie the first drawn parent does. The child is crossed over, has
// its weights perturbed and is then structurally mutated.
func (r *Reproduction) Offspring(survivors []*Agent, policy ThresholdPolicy) (*Genome, error) {
	first := randomChoice(r.rng, survivors)
	second := randomChoice(r.rng, survivors)
	fitter, weaker := first, second
	if policy.Compare(second, first) < 0 {
		fitter, weaker = second, first
	}

	child, err := Crossover(fitter.Genome, weaker.Genome, r.rng)
	if err != nil {
		return nil, fmt.Errorf("crossover of agents %d and %d: %w", fitter.ID, weaker.ID, err)
	}
	g := r.Genome
	MutateWeights(child, r.rng, g.WeightMutateMean, g.WeightMutatePower, g.WeightMinValue, g.WeightMaxValue)
	if err := Mutate(child, g, r.rng, r.Innovations); err != nil {
		return nil, fmt.Errorf("mutating offspring of agents %d and %d: %w", fitter.ID, weaker.ID, err)
	}
	return child, nil
}

// rankAgents sorts agents best first under policy, breaking ties by id.
func rankAgents(agents []*Agent, policy ThresholdPolicy) {
	sort.SliceStable(agents, func(i, j int) bool {
		if c := policy.Compare(agents[i], agents[j]); c != 0 {
			return c < 0
		}
		return agents[i].ID < agents[j].ID
	})
}

func memberFitnesses(members []*Agent) ([]float64, error) {
	out := make([]float64, 0, len(members))
	for _, a := range members {
		f, ok := a.Fitness()
		if !ok {
			return nil, fmt.Errorf("%w: agent %d has no fitness", ErrInvariantViolation, a.ID)
		}
		out = append(out, f)
	}
	return out, nil
}
