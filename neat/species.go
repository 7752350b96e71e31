package neat

import (
	"fmt"
	"log/slog"
)

// Speciator partitions a population into species.
//
// agents is the population in ascending id order and previous is the species
// map of the last generation (species id -> member agent ids, possibly naming
// agents that no longer exist). An implementation must assign a species to every
// agent via Agent.SetSpecies and return the new species map, whose member lists
// follow the order of agents.
type Speciator interface {
	Speciate(agents []*Agent, previous map[int][]int) (map[int][]int, error)
}

// CompatibilitySpeciator groups agents by compatibility distance.
//
// Each species that survives from the previous generation is represented by one
// of its remaining members, chosen at random and fixed for the whole pass. Agents
// are visited in order and join the first species whose representative lies within
// Threshold; an agent matching none founds a new species and represents it for the
// rest of the pass.
type CompatibilitySpeciator struct {
	Distance  *Compatibility
	Threshold float64

	rng    Random
	nextID int
	logger *slog.Logger
}

// NewCompatibilitySpeciator creates a speciator. New species ids start at 1.
func NewCompatibilitySpeciator(distance *Compatibility, threshold float64, rng Random, logger *slog.Logger) *CompatibilitySpeciator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompatibilitySpeciator{
		Distance:  distance,
		Threshold: threshold,
		rng:       rng,
		nextID:    1,
		logger:    logger,
	}
}

type representative struct {
	species int
	agent   *Agent
}

// Speciate implements Speciator.
func (s *CompatibilitySpeciator) Speciate(agents []*Agent, previous map[int][]int) (map[int][]int, error) {
	byID := make(map[int]*Agent, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
	}

	// --- Step 1: Fix one representative per surviving species ---
	reps := make([]representative, 0, len(previous))
	for _, sid := range sortedKeys(previous) {
		s.nextID = max(s.nextID, sid+1)
		alive := make([]*Agent, 0, len(previous[sid]))
		for _, id := range previous[sid] {
			if a, ok := byID[id]; ok {
				alive = append(alive, a)
			}
		}
		if len(alive) == 0 {
			s.logger.Debug("species extinct", "species", sid)
			continue
		}
		reps = append(reps, representative{species: sid, agent: randomChoice(s.rng, alive)})
	}

	// --- Step 2: First-match assignment ---
	for _, a := range agents {
		a.ClearSpecies()
	}
	result := make(map[int][]int)
	for _, a := range agents {
		assigned := false
		for _, r := range reps {
			if s.Distance.Distance(r.agent.Genome, a.Genome) <= s.Threshold {
				a.SetSpecies(r.species)
				result[r.species] = append(result[r.species], a.ID)
				assigned = true
				break
			}
		}
		if assigned {
			continue
		}
		sid := s.nextID
		s.nextID++
		reps = append(reps, representative{species: sid, agent: a})
		a.SetSpecies(sid)
		result[sid] = []int{a.ID}
		s.logger.Debug("species created", "species", sid, "founder", a.ID)
	}
	return result, nil
}

// checkSpeciation verifies that every agent carries the species it is listed
// under and that no agent was left out.
func checkSpeciation(agents []*Agent, species map[int][]int) error {
	listed := make(map[int]int, len(agents))
	for sid, members := range species {
		for _, id := range members {
			listed[id] = sid
		}
	}
	for _, a := range agents {
		sid, ok := a.Species()
		if !ok {
			return fmt.Errorf("%w: agent %d has no species after speciation", ErrInvariantViolation, a.ID)
		}
		if got, ok := listed[a.ID]; !ok || got != sid {
			return fmt.Errorf("%w: agent %d tagged with species %d but listed under %d", ErrInvariantViolation, a.ID, sid, got)
		}
	}
	return nil
}
