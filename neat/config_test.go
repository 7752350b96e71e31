package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[NEAT]
fitness_criterion = min
fitness_threshold = 0.05
pop_size          = 30

[DefaultGenome]
num_inputs         = 3
num_outputs        = 2
initial_connection = unconnected  # comment after a value
activation_default = random
activation_options = sigmoid   tanh
conn_add_prob      = 0.5

[DefaultSpeciesSet]
speciation      = kmeans
kmeans_clusters = 4
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Neat.PopSize)
	assert.Equal(t, "min", cfg.Neat.FitnessCriterion)
	assert.Equal(t, 0.05, cfg.Neat.FitnessThreshold)
	assert.Equal(t, 3, cfg.Genome.NumInputs)
	assert.Equal(t, "unconnected", cfg.Genome.InitialConnection)
	assert.Equal(t, []string{"sigmoid", "tanh"}, cfg.Genome.ActivationOptions)
	assert.Equal(t, 0.5, cfg.Genome.ConnAddProb)
	assert.Equal(t, "kmeans", cfg.SpeciesSet.Speciation)
	assert.Equal(t, 4, cfg.SpeciesSet.KMeansClusters)

	// Untouched keys keep their defaults.
	assert.Equal(t, []string{"sum"}, cfg.Genome.AggregationOptions)
	assert.Equal(t, 0.5, cfg.Reproduction.CullExponent)
	assert.Equal(t, 100.0, cfg.Genome.WeightMaxValue)
	assert.Equal(t, 20, cfg.SpeciesSet.KMeansIterations)
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Neat.PopSize = 10
	cfg.Genome.NumInputs = 2
	cfg.Genome.NumOutputs = 1
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero population", func(c *Config) { c.Neat.PopSize = 0 }},
		{"zero inputs", func(c *Config) { c.Genome.NumInputs = 0 }},
		{"negative outputs", func(c *Config) { c.Genome.NumOutputs = -1 }},
		{"inverted weight bounds", func(c *Config) { c.Genome.WeightMinValue, c.Genome.WeightMaxValue = 1, -1 }},
		{"unknown activation", func(c *Config) { c.Genome.ActivationOptions = []string{"softplus"} }},
		{"empty aggregations", func(c *Config) { c.Genome.AggregationOptions = nil }},
		{"default outside options", func(c *Config) { c.Genome.ActivationDefault = "tanh" }},
		{"rate above one", func(c *Config) { c.Genome.NodeAddProb = 1.5 }},
		{"negative coefficient", func(c *Config) { c.Genome.CompatibilityWeightCoefficient = -1 }},
		{"unknown criterion", func(c *Config) { c.Neat.FitnessCriterion = "best" }},
		{"unknown speciation", func(c *Config) { c.SpeciesSet.Speciation = "dbscan" }},
		{"unknown initial connection", func(c *Config) { c.Genome.InitialConnection = "partial" }},
		{"unknown species fitness", func(c *Config) { c.Stagnation.SpeciesFitnessFunc = "mode" }},
		{"stagnation without elitism", func(c *Config) { c.Stagnation.MaxStagnation, c.Stagnation.SpeciesElitism = 5, 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrConfiguration)
		})
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("[NEAT]\npop_size = 10\n"))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)
}

func TestConfig_WriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, validConfig().WriteYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pop_size: 10")
	assert.Contains(t, string(data), "cull_exponent: 0.5")
}
