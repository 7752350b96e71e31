package neat

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FitnessFunc evaluates a whole generation. It must call SetFitness on every
// agent before returning; an agent left without fitness fails the generation.
type FitnessFunc func(ctx context.Context, agents []*Agent) error

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config       *Config
	Functions    *Functions
	Registry     *Registry
	Threshold    ThresholdPolicy
	Speciator    Speciator
	Stagnation   *Stagnation
	Reproduction *Reproduction
	Generation   int
	Best         *Agent // Snapshot of the best agent seen so far.
	RunID        string

	agents      map[int]*Agent
	nextAgentID int
	species     map[int][]int // species id -> member agent ids
	innovations *InnovationLog
	reporters   []Reporter
	rng         Random
	logger      *slog.Logger
	targetSize  func(*Population) int
}

// Option configures a Population.
type Option func(*Population)

// WithRandom sets the random source. The default is seeded from the clock.
func WithRandom(rng Random) Option {
	return func(p *Population) { p.rng = rng }
}

// WithSpeciator replaces the speciator chosen by the configuration.
func WithSpeciator(s Speciator) Option {
	return func(p *Population) { p.Speciator = s }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Population) { p.logger = logger }
}

// WithReporter adds a reporter that receives the statistics of every generation.
func WithReporter(r Reporter) Option {
	return func(p *Population) { p.reporters = append(p.reporters, r) }
}

// WithRegistry shares an innovation registry, e.g. between populations that
// exchange genomes.
func WithRegistry(r *Registry) Option {
	return func(p *Population) { p.Registry = r }
}

// WithTargetSize makes the post-mating population size a function of the
// population, evaluated once per generation. The default is pop_size.
func WithTargetSize(fn func(*Population) int) Option {
	return func(p *Population) { p.targetSize = fn }
}

// NewPopulation validates config and creates the initial generation.
func NewPopulation(config *Config, opts ...Option) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	fns, err := NewFunctions(config.Genome.ActivationOptions, config.Genome.AggregationOptions)
	if err != nil {
		return nil, err
	}
	policy, err := NewThresholdPolicy(config.Neat.FitnessCriterion, config.Neat.FitnessThreshold)
	if err != nil {
		return nil, err
	}
	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to create stagnation manager: %w", err)
	}

	p := &Population{
		Config:      config,
		Functions:   fns,
		Threshold:   policy,
		Stagnation:  stagnation,
		RunID:       uuid.NewString(),
		agents:      make(map[int]*Agent, config.Neat.PopSize),
		nextAgentID: 1,
		species:     make(map[int][]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = NewRandom(uint64(time.Now().UnixNano()))
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("run_id", p.RunID)
	if p.Registry == nil {
		p.Registry = NewRegistry()
	}
	if p.Speciator == nil {
		p.Speciator = newSpeciator(config, fns, p.rng, p.logger)
	}
	p.innovations = NewInnovationLog(p.Registry)
	p.Reproduction = NewReproduction(&config.Reproduction, &config.Genome, p.innovations, p.rng, p.logger)

	for i := 0; i < config.Neat.PopSize; i++ {
		g, err := p.newGenome()
		if err != nil {
			return nil, fmt.Errorf("creating initial genome: %w", err)
		}
		p.insert(g)
	}
	p.logger.Info("population created", "size", p.Len(), "speciation", config.SpeciesSet.Speciation)
	return p, nil
}

func newSpeciator(config *Config, fns *Functions, rng Random, logger *slog.Logger) Speciator {
	ss := &config.SpeciesSet
	if strings.ToLower(ss.Speciation) == "kmeans" {
		return NewKMeansSpeciator(ss.KMeansClusters, ss.KMeansIterations, fns, rng)
	}
	return NewCompatibilitySpeciator(NewCompatibility(&config.Genome), ss.CompatibilityThreshold, rng, logger)
}

// newGenome builds an initial genome. Node and connection ids depend only on the
// configuration, so every initial genome shares them.
func (p *Population) newGenome() (*Genome, error) {
	gc := &p.Config.Genome
	g := NewGenome()

	addNodes := func(first, count int, role NodeRole) ([]int, error) {
		ids := make([]int, count)
		for i := range ids {
			ids[i] = p.Registry.AdoptNodeID(first + i)
			node := &NodeGene{
				ID:          ids[i],
				Role:        role,
				Activation:  initStringAttribute(p.rng, gc.ActivationDefault, gc.ActivationOptions),
				Aggregation: initStringAttribute(p.rng, gc.AggregationDefault, gc.AggregationOptions),
			}
			if err := g.AddNodeGene(node); err != nil {
				return nil, err
			}
		}
		return ids, nil
	}
	sensors, err := addNodes(1, gc.NumInputs, Sensor)
	if err != nil {
		return nil, err
	}
	outputs, err := addNodes(gc.NumInputs+1, gc.NumOutputs, Output)
	if err != nil {
		return nil, err
	}
	hidden, err := addNodes(gc.NumInputs+gc.NumOutputs+1, gc.NumHidden, Hidden)
	if err != nil {
		return nil, err
	}

	if strings.ToLower(gc.InitialConnection) != "full" {
		return g, nil
	}
	var pairs [][2]int
	link := func(from, to []int) {
		for _, s := range from {
			for _, d := range to {
				pairs = append(pairs, [2]int{s, d})
			}
		}
	}
	if len(hidden) == 0 {
		link(sensors, outputs)
	} else {
		link(sensors, hidden)
		link(hidden, outputs)
	}
	for i, pair := range pairs {
		conn := &ConnectGene{
			ID:          p.Registry.AdoptConnectionID(i + 1),
			Source:      pair[0],
			Destination: pair[1],
			Weight:      clamp(p.rng.Normal(gc.WeightInitMean, gc.WeightInitStdev), gc.WeightMinValue, gc.WeightMaxValue),
		}
		if err := g.AddConnectGene(conn); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (p *Population) insert(g *Genome) *Agent {
	a := NewAgent(p.nextAgentID, g)
	p.nextAgentID++
	p.agents[a.ID] = a
	return a
}

// Len returns the number of agents.
func (p *Population) Len() int { return len(p.agents) }

// Agent returns the agent with the given id, or nil.
func (p *Population) Agent(id int) *Agent { return p.agents[id] }

// All iterates the agents in ascending id order. Ids are stable across
// generations and removed agents leave gaps.
func (p *Population) All() iter.Seq2[int, *Agent] {
	return func(yield func(int, *Agent) bool) {
		for _, id := range sortedKeys(p.agents) {
			if !yield(id, p.agents[id]) {
				return
			}
		}
	}
}

// Agents returns the agents in ascending id order.
func (p *Population) Agents() []*Agent {
	out := make([]*Agent, 0, len(p.agents))
	for _, a := range p.All() {
		out = append(out, a)
	}
	return out
}

// Species returns a copy of the species map: species id -> member agent ids.
func (p *Population) Species() map[int][]int {
	out := make(map[int][]int, len(p.species))
	for sid, members := range p.species {
		out[sid] = append([]int(nil), members...)
	}
	return out
}

// TargetSize returns the size the population is brought back to after mating.
func (p *Population) TargetSize() int {
	if p.targetSize != nil {
		return p.targetSize(p)
	}
	return p.Config.Neat.PopSize
}

// Run executes generations until the fitness threshold is met, maxGenerations
// have run (0 means no limit), or ctx is done. It returns the winning agent, or
// nil when no agent met the threshold.
func (p *Population) Run(ctx context.Context, fitness FitnessFunc, maxGenerations int) (*Agent, error) {
	for i := 0; maxGenerations <= 0 || i < maxGenerations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		winner, err := p.RunGeneration(ctx, fitness)
		if err != nil {
			return nil, err
		}
		if winner != nil {
			return winner, nil
		}
	}
	p.logger.Info("generation limit reached", "generations", p.Generation)
	return nil, nil
}

// RunGeneration executes a single generation: evaluate, check the threshold,
// select, speciate, and mate back to the target size.
// Returns the winning agent if the fitness threshold is met this generation, otherwise nil.
func (p *Population) RunGeneration(ctx context.Context, fitness FitnessFunc) (*Agent, error) {
	p.Generation++
	start := time.Now()
	logger := p.logger.With("generation", p.Generation)
	logger.Debug("generation started", "size", p.Len())

	// 1. Evaluate fitness
	agents := p.Agents()
	for _, a := range agents {
		a.ClearFitness()
	}
	if err := fitness(ctx, agents); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}
	if _, err := memberFitnesses(agents); err != nil {
		return nil, fmt.Errorf("generation %d: %w", p.Generation, err)
	}

	// 2. Track the best agent and check the threshold
	ranked := append([]*Agent(nil), agents...)
	rankAgents(ranked, p.Threshold)
	if len(ranked) > 0 && (p.Best == nil || p.Threshold.Compare(ranked[0], p.Best) < 0) {
		p.Best = snapshot(ranked[0])
		f, _ := p.Best.Fitness()
		logger.Info("new best agent", "agent", p.Best.ID, "fitness", f)
	}
	stats := p.stats(agents, ranked)

	if !p.Config.Neat.NoFitnessTermination && p.Threshold.Met(agents) {
		winner := ranked[0]
		f, _ := winner.Fitness()
		logger.Info("fitness threshold met", "agent", winner.ID, "fitness", f)
		return winner, p.report(stats, start)
	}

	// 3. Selection
	target := p.TargetSize()
	if target <= 0 {
		return nil, fmt.Errorf("%w: target size %d must be positive", ErrConfiguration, target)
	}
	survivors, culled := p.Reproduction.Cull(ranked)
	if len(survivors) > target {
		culled = append(culled, survivors[target:]...)
		survivors = survivors[:target]
	}
	for _, a := range culled {
		delete(p.agents, a.ID)
	}

	// 4. Speciation
	survivors = p.Agents()
	species, err := p.Speciator.Speciate(survivors, p.species)
	if err != nil {
		return nil, fmt.Errorf("speciation failed in generation %d: %w", p.Generation, err)
	}
	if err := checkSpeciation(survivors, species); err != nil {
		return nil, fmt.Errorf("generation %d: %w", p.Generation, err)
	}

	// 5. Stagnation. K-means ids name clusters of one generation only, so there
	// is no species history to track.
	var stagnant []int
	if _, ok := p.Speciator.(*KMeansSpeciator); !ok {
		stagnant = p.Stagnation.Update(species, p.Agent, p.Threshold, p.Generation)
	}
	if len(stagnant) == len(species) {
		stagnant = nil
	}
	for _, sid := range stagnant {
		logger.Info("species removed due to stagnation", "species", sid, "members", len(species[sid]))
		for _, id := range species[sid] {
			delete(p.agents, id)
		}
		delete(species, sid)
	}
	p.species = species

	// 6. Mating
	members := make(map[int][]*Agent, len(species))
	for sid, ids := range species {
		for _, id := range ids {
			members[sid] = append(members[sid], p.agents[id])
		}
	}
	quotas, err := p.Reproduction.Quotas(members, p.Threshold, target)
	if err != nil {
		return nil, fmt.Errorf("generation %d: %w", p.Generation, err)
	}
	for _, sid := range sortedKeys(quotas) {
		parents := members[sid]
		for len(p.species[sid]) < quotas[sid] {
			child, err := p.Reproduction.Offspring(parents, p.Threshold)
			if err != nil {
				return nil, fmt.Errorf("generation %d, species %d: %w", p.Generation, sid, err)
			}
			a := p.insert(child)
			a.SetSpecies(sid)
			p.species[sid] = append(p.species[sid], a.ID)
		}
	}
	p.innovations.Reset()

	if p.Len() != target {
		return nil, fmt.Errorf("%w: population size %d after mating, expected %d", ErrInvariantViolation, p.Len(), target)
	}
	stats.SpeciesCount = len(p.species)
	return nil, p.report(stats, start)
}

// snapshot copies an agent so later generations cannot change it.
func snapshot(a *Agent) *Agent {
	c := NewAgent(a.ID, a.Genome.Copy())
	if f, ok := a.Fitness(); ok {
		c.SetFitness(f)
	}
	if s, ok := a.Species(); ok {
		c.SetSpecies(s)
	}
	return c
}

func (p *Population) stats(agents, ranked []*Agent) GenerationStats {
	fitnesses, _ := memberFitnesses(agents)
	stats := GenerationStats{
		RunID:          p.RunID,
		Generation:     p.Generation,
		PopulationSize: len(agents),
		SpeciesCount:   len(p.species),
		MeanFitness:    Mean(fitnesses),
		StdevFitness:   Stdev(fitnesses),
	}
	if len(ranked) > 0 {
		stats.BestAgentID = ranked[0].ID
		stats.BestFitness, _ = ranked[0].Fitness()
	}
	return stats
}

func (p *Population) report(stats GenerationStats, start time.Time) error {
	stats.Duration = time.Since(start)
	stats.DurationSeconds = stats.Duration.Seconds()
	for _, r := range p.reporters {
		if err := r.GenerationDone(stats); err != nil {
			return fmt.Errorf("reporter failed in generation %d: %w", p.Generation, err)
		}
	}
	return nil
}
