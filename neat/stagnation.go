package neat

import (
	"fmt"
	"sort"
	"strings"
)

// Species is the history the population keeps about one species across generations.
type Species struct {
	ID             int       // Species id as issued by the Speciator.
	Created        int       // Generation number when the species was first seen.
	LastImproved   int       // Last generation where the species fitness improved.
	Fitness        float64   // Species fitness this generation (see StagnationConfig.SpeciesFitnessFunc).
	FitnessHistory []float64 // Species fitness of every generation it was alive.
	Members        []int     // Member agent ids this generation.
}

// Stagnation tracks species fitness over time and detects species that stopped improving.
type Stagnation struct {
	Config             *StagnationConfig
	SpeciesFitnessFunc func([]float64) float64

	species map[int]*Species
}

// NewStagnation creates a new stagnation manager.
func NewStagnation(config *StagnationConfig) (*Stagnation, error) {
	fn, ok := StatFunctions[strings.ToLower(config.SpeciesFitnessFunc)]
	if !ok {
		return nil, fmt.Errorf("%w: invalid species_fitness_func '%s'", ErrConfiguration, config.SpeciesFitnessFunc)
	}
	return &Stagnation{
		Config:             config,
		SpeciesFitnessFunc: fn,
		species:            make(map[int]*Species),
	}, nil
}

// Species returns the tracked history of a species.
func (s *Stagnation) Species(id int) (*Species, bool) {
	sp, ok := s.species[id]
	return sp, ok
}

// Update records this generation's species fitness and returns the ids of the
// species judged stagnant, in ascending order. Species absent from the map are
// forgotten. The SpeciesElitism best species are never stagnant, and nothing is
// stagnant while MaxStagnation is zero.
func (s *Stagnation) Update(species map[int][]int, agent func(id int) *Agent, policy ThresholdPolicy, generation int) []int {
	current := make(map[int]*Species, len(species))
	for sid, members := range species {
		sp, ok := s.species[sid]
		if !ok {
			sp = &Species{ID: sid, Created: generation, LastImproved: generation}
		}
		fitnesses := make([]float64, 0, len(members))
		for _, id := range members {
			if a := agent(id); a != nil {
				if f, ok := a.Fitness(); ok {
					fitnesses = append(fitnesses, f)
				}
			}
		}
		sp.Members = append(sp.Members[:0], members...)
		sp.Fitness = s.SpeciesFitnessFunc(fitnesses)
		if len(sp.FitnessHistory) == 0 || policy.Better(sp.Fitness, bestOf(sp.FitnessHistory, policy)) {
			sp.LastImproved = generation
		}
		sp.FitnessHistory = append(sp.FitnessHistory, sp.Fitness)
		current[sid] = sp
	}
	s.species = current

	if s.Config.MaxStagnation <= 0 {
		return nil
	}

	// Rank species best first so the elite prefix is spared.
	ranked := make([]*Species, 0, len(current))
	for _, sp := range current {
		ranked = append(ranked, sp)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Fitness != ranked[j].Fitness {
			return policy.Better(ranked[i].Fitness, ranked[j].Fitness)
		}
		return ranked[i].ID < ranked[j].ID
	})

	var stagnant []int
	for i, sp := range ranked {
		if i < s.Config.SpeciesElitism {
			continue
		}
		if generation-sp.LastImproved >= s.Config.MaxStagnation {
			stagnant = append(stagnant, sp.ID)
		}
	}
	sort.Ints(stagnant)
	return stagnant
}

// bestOf returns the best value of a non-empty history under policy.
func bestOf(history []float64, policy ThresholdPolicy) float64 {
	best := history[0]
	for _, v := range history[1:] {
		if policy.Better(v, best) {
			best = v
		}
	}
	return best
}
