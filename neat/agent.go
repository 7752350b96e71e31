package neat

import "fmt"

// Agent is a genome taking part in a population: it carries the population's
// stable id plus a fitness and a species that are each set once per generation.
type Agent struct {
	*Genome
	ID int

	fitness *float64
	species *int
}

// NewAgent wraps a genome.
func NewAgent(id int, g *Genome) *Agent {
	return &Agent{Genome: g, ID: id}
}

// Fitness returns the agent's fitness and whether it has been set.
func (a *Agent) Fitness() (float64, bool) {
	if a.fitness == nil {
		return 0, false
	}
	return *a.fitness, true
}

// SetFitness records the agent's fitness. Fitness functions call this once per agent.
func (a *Agent) SetFitness(f float64) {
	a.fitness = &f
}

// ClearFitness forgets the agent's fitness.
func (a *Agent) ClearFitness() {
	a.fitness = nil
}

// Species returns the agent's species id and whether it has been assigned.
func (a *Agent) Species() (int, bool) {
	if a.species == nil {
		return 0, false
	}
	return *a.species, true
}

// SetSpecies assigns the agent to a species.
func (a *Agent) SetSpecies(id int) {
	a.species = &id
}

// ClearSpecies removes the agent's species assignment.
func (a *Agent) ClearSpecies() {
	a.species = nil
}

func (a *Agent) String() string {
	f, s := "-", "-"
	if v, ok := a.Fitness(); ok {
		f = fmt.Sprintf("%.4f", v)
	}
	if v, ok := a.Species(); ok {
		s = fmt.Sprint(v)
	}
	return fmt.Sprintf("Agent(ID: %d, Fitness: %s, Species: %s, %s)", a.ID, f, s, a.Genome)
}
