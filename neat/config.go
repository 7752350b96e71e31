package neat

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Neat         NeatConfig         `yaml:"neat"`
	Genome       GenomeConfig       `yaml:"genome"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	SpeciesSet   SpeciesSetConfig   `yaml:"species_set"`
	Stagnation   StagnationConfig   `yaml:"stagnation"`
}

// NeatConfig holds parameters specific to the NEAT algorithm itself.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size" yaml:"pop_size"`
	FitnessCriterion     string  `ini:"fitness_criterion" yaml:"fitness_criterion"` // "max" or "min"
	FitnessThreshold     float64 `ini:"fitness_threshold" yaml:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination" yaml:"no_fitness_termination"`
}

// GenomeConfig holds parameters specific to the structure and mutation of genomes.
type GenomeConfig struct {
	// --- Top-level Genome parameters ---
	NumInputs         int    `ini:"num_inputs" yaml:"num_inputs"`
	NumOutputs        int    `ini:"num_outputs" yaml:"num_outputs"`
	NumHidden         int    `ini:"num_hidden" yaml:"num_hidden"`
	FeedForward       bool   `ini:"feed_forward" yaml:"feed_forward"`             // If true, add-connection never closes a cycle
	InitialConnection string `ini:"initial_connection" yaml:"initial_connection"` // "unconnected" or "full"
	// Activation stops with an error after this many node firings; 0 is unbounded.
	MaxActivationSteps int `ini:"max_activation_steps" yaml:"max_activation_steps"`

	// --- Compatibility distance coefficients (c1..c5) ---
	CompatibilityExcessCoefficient      float64 `ini:"compatibility_excess_coefficient" yaml:"compatibility_excess_coefficient"`
	CompatibilityDisjointCoefficient    float64 `ini:"compatibility_disjoint_coefficient" yaml:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient      float64 `ini:"compatibility_weight_coefficient" yaml:"compatibility_weight_coefficient"`
	CompatibilityActivationCoefficient  float64 `ini:"compatibility_activation_coefficient" yaml:"compatibility_activation_coefficient"`
	CompatibilityAggregationCoefficient float64 `ini:"compatibility_aggregation_coefficient" yaml:"compatibility_aggregation_coefficient"`

	// --- Structural mutation ---
	ConnAddProb       float64 `ini:"conn_add_prob" yaml:"conn_add_prob"`
	NodeAddProb       float64 `ini:"node_add_prob" yaml:"node_add_prob"`
	EnabledMutateRate float64 `ini:"enabled_mutate_rate" yaml:"enabled_mutate_rate"`

	// --- Node Gene parameters ---
	ActivationDefault    string   `ini:"activation_default" yaml:"activation_default"`           // Default: 'random'
	ActivationOptions    []string `ini:"activation_options" delim:" " yaml:"activation_options"` // Space-separated list
	ActivationMutateRate float64  `ini:"activation_mutate_rate" yaml:"activation_mutate_rate"`

	AggregationDefault    string   `ini:"aggregation_default" yaml:"aggregation_default"`           // Default: 'random'
	AggregationOptions    []string `ini:"aggregation_options" delim:" " yaml:"aggregation_options"` // Space-separated list
	AggregationMutateRate float64  `ini:"aggregation_mutate_rate" yaml:"aggregation_mutate_rate"`

	// --- Connection Gene parameters ---
	WeightInitMean    float64 `ini:"weight_init_mean" yaml:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_stdev" yaml:"weight_init_stdev"`
	WeightMutateMean  float64 `ini:"weight_mutate_mean" yaml:"weight_mutate_mean"`   // Mean of the multiplicative factor
	WeightMutatePower float64 `ini:"weight_mutate_power" yaml:"weight_mutate_power"` // Stdev of the multiplicative factor
	WeightMaxValue    float64 `ini:"weight_max_value" yaml:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value" yaml:"weight_min_value"`
}

// ReproductionConfig holds parameters related to selection.
type ReproductionConfig struct {
	// The agent at rank i of n is culled with probability (i/n)^CullExponent.
	CullExponent float64 `ini:"cull_exponent" yaml:"cull_exponent"`
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	Speciation             string  `ini:"speciation" yaml:"speciation"` // "compatibility" or "kmeans"
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
	KMeansClusters         int     `ini:"kmeans_clusters" yaml:"kmeans_clusters"`
	KMeansIterations       int     `ini:"kmeans_iterations" yaml:"kmeans_iterations"`
}

// StagnationConfig holds parameters related to species stagnation.
type StagnationConfig struct {
	SpeciesFitnessFunc string `ini:"species_fitness_func" yaml:"species_fitness_func"`
	MaxStagnation      int    `ini:"max_stagnation" yaml:"max_stagnation"` // 0 disables stagnation removal
	SpeciesElitism     int    `ini:"species_elitism" yaml:"species_elitism"`
}

// DefaultConfig returns a configuration with every optional parameter at its default.
// Input, output and population counts are left at zero and must be set.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			FitnessCriterion: "max",
		},
		Genome: GenomeConfig{
			InitialConnection:                   "full",
			CompatibilityExcessCoefficient:      1.0,
			CompatibilityDisjointCoefficient:    1.0,
			CompatibilityWeightCoefficient:      0.4,
			CompatibilityActivationCoefficient:  1.0,
			CompatibilityAggregationCoefficient: 1.0,
			ActivationDefault:                   "sigmoid",
			ActivationOptions:                   []string{"sigmoid"},
			AggregationDefault:                  "sum",
			AggregationOptions:                  []string{"sum"},
			WeightInitMean:                      0.0,
			WeightInitStdev:                     1.0,
			WeightMutateMean:                    1.0,
			WeightMutatePower:                   0.5,
			WeightMaxValue:                      100.0,
			WeightMinValue:                      -100.0,
		},
		Reproduction: ReproductionConfig{
			CullExponent: 0.5,
		},
		SpeciesSet: SpeciesSetConfig{
			Speciation:             "compatibility",
			CompatibilityThreshold: 3.0,
			KMeansClusters:         5,
			KMeansIterations:       20,
		},
		Stagnation: StagnationConfig{
			SpeciesFitnessFunc: "mean",
			MaxStagnation:      0,
			SpeciesElitism:     1,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := loadConfig(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return cfg, nil
}

// ParseConfig parses configuration parameters from INI data.
func ParseConfig(data []byte) (*Config, error) {
	return loadConfig(data)
}

func loadConfig(source interface{}) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		SpaceBeforeInlineComment: true, // "a = b # note" drops the note, "a = b#c" keeps it
	}, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	config := DefaultConfig()

	// Keys absent from a section keep their defaults.
	sections := []struct {
		name   string
		target interface{}
	}{
		{"NEAT", &config.Neat},
		{"DefaultGenome", &config.Genome},
		{"DefaultReproduction", &config.Reproduction},
		{"DefaultSpeciesSet", &config.SpeciesSet},
		{"DefaultStagnation", &config.Stagnation},
	}
	for _, s := range sections {
		if err := file.Section(s.name).MapTo(s.target); err != nil {
			return nil, fmt.Errorf("%w: failed to map [%s] section: %w", ErrConfiguration, s.name, err)
		}
	}

	config.Neat.FitnessCriterion = cleanIniString(config.Neat.FitnessCriterion)
	config.Genome.InitialConnection = cleanIniString(config.Genome.InitialConnection)
	config.Genome.ActivationDefault = cleanIniString(config.Genome.ActivationDefault)
	config.Genome.AggregationDefault = cleanIniString(config.Genome.AggregationDefault)
	config.SpeciesSet.Speciation = cleanIniString(config.SpeciesSet.Speciation)
	config.Stagnation.SpeciesFitnessFunc = cleanIniString(config.Stagnation.SpeciesFitnessFunc)
	config.Genome.ActivationOptions = cleanIniList(config.Genome.ActivationOptions)
	config.Genome.AggregationOptions = cleanIniList(config.Genome.AggregationOptions)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration. Every failure wraps ErrConfiguration.
func (c *Config) Validate() error {
	g := &c.Genome
	switch {
	case c.Neat.PopSize <= 0:
		return configErrorf("pop_size must be positive")
	case g.NumInputs <= 0:
		return configErrorf("num_inputs must be positive")
	case g.NumOutputs <= 0:
		return configErrorf("num_outputs must be positive")
	case g.NumHidden < 0:
		return configErrorf("num_hidden cannot be negative")
	case g.WeightMaxValue < g.WeightMinValue:
		return configErrorf("weight_max_value cannot be less than weight_min_value")
	case g.WeightInitStdev < 0 || g.WeightMutatePower < 0:
		return configErrorf("weight_init_stdev and weight_mutate_power cannot be negative")
	case g.MaxActivationSteps < 0:
		return configErrorf("max_activation_steps cannot be negative")
	}

	if _, err := NewFunctions(g.ActivationOptions, g.AggregationOptions); err != nil {
		return err
	}
	if err := checkDefault("activation_default", g.ActivationDefault, g.ActivationOptions); err != nil {
		return err
	}
	if err := checkDefault("aggregation_default", g.AggregationDefault, g.AggregationOptions); err != nil {
		return err
	}

	coefficients := map[string]float64{
		"compatibility_excess_coefficient":      g.CompatibilityExcessCoefficient,
		"compatibility_disjoint_coefficient":    g.CompatibilityDisjointCoefficient,
		"compatibility_weight_coefficient":      g.CompatibilityWeightCoefficient,
		"compatibility_activation_coefficient":  g.CompatibilityActivationCoefficient,
		"compatibility_aggregation_coefficient": g.CompatibilityAggregationCoefficient,
		"compatibility_threshold":               c.SpeciesSet.CompatibilityThreshold,
	}
	for name, v := range coefficients {
		if v < 0 {
			return configErrorf("%s cannot be negative", name)
		}
	}

	rates := map[string]float64{
		"conn_add_prob":           g.ConnAddProb,
		"node_add_prob":           g.NodeAddProb,
		"enabled_mutate_rate":     g.EnabledMutateRate,
		"activation_mutate_rate":  g.ActivationMutateRate,
		"aggregation_mutate_rate": g.AggregationMutateRate,
	}
	for name, v := range rates {
		if v < 0 || v > 1 {
			return configErrorf("%s must be between 0 and 1", name)
		}
	}

	switch strings.ToLower(g.InitialConnection) {
	case "unconnected", "full":
	default:
		return configErrorf("invalid initial_connection '%s', must be 'unconnected' or 'full'", g.InitialConnection)
	}

	switch strings.ToLower(c.Neat.FitnessCriterion) {
	case "max", "min":
	default:
		return configErrorf("invalid fitness_criterion '%s', must be 'max' or 'min'", c.Neat.FitnessCriterion)
	}

	if c.Reproduction.CullExponent <= 0 {
		return configErrorf("cull_exponent must be positive")
	}

	switch strings.ToLower(c.SpeciesSet.Speciation) {
	case "compatibility":
	case "kmeans":
		if c.SpeciesSet.KMeansClusters <= 0 {
			return configErrorf("kmeans_clusters must be positive")
		}
		if c.SpeciesSet.KMeansIterations <= 0 {
			return configErrorf("kmeans_iterations must be positive")
		}
	default:
		return configErrorf("invalid speciation '%s', must be 'compatibility' or 'kmeans'", c.SpeciesSet.Speciation)
	}

	if _, ok := StatFunctions[strings.ToLower(c.Stagnation.SpeciesFitnessFunc)]; !ok {
		return configErrorf("invalid species_fitness_func '%s'", c.Stagnation.SpeciesFitnessFunc)
	}
	if c.Stagnation.MaxStagnation < 0 {
		return configErrorf("max_stagnation cannot be negative")
	}
	if c.Stagnation.MaxStagnation > 0 && c.Stagnation.SpeciesElitism < 1 {
		return configErrorf("species_elitism must be at least 1 when max_stagnation is set")
	}
	return nil
}

// WriteYAML saves the configuration as YAML.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// checkDefault accepts "random"/"none"/"" or one of the options.
func checkDefault(key, value string, options []string) error {
	switch strings.ToLower(value) {
	case "random", "none", "":
		return nil
	}
	for _, opt := range options {
		if opt == value {
			return nil
		}
	}
	return configErrorf("%s '%s' is not among the options %v", key, value, options)
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// cleanIniList trims every element and drops the empty ones left by repeated delimiters.
func cleanIniList(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if item = cleanIniString(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
