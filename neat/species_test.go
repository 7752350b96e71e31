package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weightAgent returns an agent with a single 1->2 connection of the given weight.
func weightAgent(t *testing.T, id int, weight float64) *Agent {
	return NewAgent(id, buildGenome(t, []int{1}, []int{2}, nil, "sigmoid", link{1, 1, 2, weight}))
}

func weightSpeciator(threshold float64) *CompatibilitySpeciator {
	c := &Compatibility{WeightCoefficient: 1, ActivationOptions: 1, AggregationOptions: 1}
	return NewCompatibilitySpeciator(c, threshold, NewRandom(7), nil)
}

func TestCompatibilitySpeciator_NewSpecies(t *testing.T) {
	agents := []*Agent{
		weightAgent(t, 1, 0.0),
		weightAgent(t, 2, 0.5),
		weightAgent(t, 3, 10.0),
		weightAgent(t, 4, 10.4),
	}
	s := weightSpeciator(1.0)

	species, err := s.Speciate(agents, nil)
	require.NoError(t, err)
	assert.Equal(t, map[int][]int{1: {1, 2}, 2: {3, 4}}, species)
	require.NoError(t, checkSpeciation(agents, species))
}

func TestCompatibilitySpeciator_FirstMatchNotBestMatch(t *testing.T) {
	// Agent 2 is within range of both founders and joins the first one.
	agents := []*Agent{
		weightAgent(t, 1, 0.0),
		weightAgent(t, 3, 1.5),
		weightAgent(t, 2, 0.9),
	}
	s := weightSpeciator(1.0)

	species, err := s.Speciate(agents, nil)
	require.NoError(t, err)
	assert.Equal(t, map[int][]int{1: {1, 2}, 2: {3}}, species)
}

func TestCompatibilitySpeciator_KeepsPreviousSpecies(t *testing.T) {
	agents := []*Agent{
		weightAgent(t, 5, 0.0),
		weightAgent(t, 6, 5.0),
	}
	previous := map[int][]int{
		7: {5, 99}, // 99 was removed
		3: {42},    // extinct
	}
	s := weightSpeciator(1.0)

	species, err := s.Speciate(agents, previous)
	require.NoError(t, err)
	assert.Equal(t, map[int][]int{7: {5}, 8: {6}}, species)

	sid, ok := agents[1].Species()
	require.True(t, ok)
	assert.Equal(t, 8, sid)
}

func TestCheckSpeciation(t *testing.T) {
	agents := []*Agent{weightAgent(t, 1, 0), weightAgent(t, 2, 0)}
	agents[0].SetSpecies(1)

	err := checkSpeciation(agents, map[int][]int{1: {1}})
	require.ErrorIs(t, err, ErrInvariantViolation)

	agents[1].SetSpecies(2)
	err = checkSpeciation(agents, map[int][]int{1: {1, 2}})
	require.ErrorIs(t, err, ErrInvariantViolation)

	require.NoError(t, checkSpeciation(agents, map[int][]int{1: {1}, 2: {2}}))
}

func TestKMeansSpeciator_SeparatesClusters(t *testing.T) {
	agents := []*Agent{
		weightAgent(t, 1, 0.0),
		weightAgent(t, 2, 0.2),
		weightAgent(t, 3, 50.0),
		weightAgent(t, 4, 50.3),
		weightAgent(t, 5, 0.1),
	}
	fns := mustFunctions(t, "sigmoid")

	for seed := uint64(0); seed < 10; seed++ {
		s := NewKMeansSpeciator(2, 20, fns, NewRandom(seed))
		species, err := s.Speciate(agents, nil)
		require.NoError(t, err)
		require.NoError(t, checkSpeciation(agents, species))
		require.Len(t, species, 2)

		sid := func(i int) int {
			v, _ := agents[i].Species()
			return v
		}
		assert.Equal(t, sid(0), sid(1))
		assert.Equal(t, sid(0), sid(4))
		assert.Equal(t, sid(2), sid(3))
		assert.NotEqual(t, sid(0), sid(2))
	}
}

func TestKMeansSpeciator_MoreClustersThanAgents(t *testing.T) {
	agents := []*Agent{weightAgent(t, 1, 0.0), weightAgent(t, 2, 3.0)}
	s := NewKMeansSpeciator(5, 10, mustFunctions(t, "sigmoid"), NewRandom(1))

	species, err := s.Speciate(agents, nil)
	require.NoError(t, err)
	require.NoError(t, checkSpeciation(agents, species))
	assert.Len(t, species, 2)
}

func TestKMeansSpeciator_NoClusters(t *testing.T) {
	s := NewKMeansSpeciator(0, 10, mustFunctions(t, "sigmoid"), NewRandom(1))
	_, err := s.Speciate([]*Agent{weightAgent(t, 1, 0.0)}, nil)
	require.ErrorIs(t, err, ErrConfiguration)
}
