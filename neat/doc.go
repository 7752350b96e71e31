// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm.
//
// NEAT is a genetic algorithm for the generation of evolving artificial neural networks.
// It alters both the weighting parameters and structures of networks, attempting to find
// a balance between the fitness of evolved solutions and their diversity.
//
// Genomes in this package are arbitrary directed graphs: cycles are allowed, and
// activation propagates values through a work queue until every node's inputs settle
// (see Genome.Activate). Genes carry global innovation ids issued by a Registry, which
// is what lets Crossover align two parents gene by gene.
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population
//	pop, err := neat.NewPopulation(config, neat.WithRandom(neat.NewRandom(42)))
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Evaluate agents four at a time and run for up to 100 generations.
//	fitness := neat.ParallelFitness(4, evalAgent)
//	winner, err := pop.Run(ctx, fitness, 100)
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	if winner != nil {
//		fmt.Println("Solution found!")
//	}
package neat
