package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type link struct {
	id       int
	src, dst int
	weight   float64
}

// buildGenome creates a genome whose nodes all use activation and sum aggregation.
func buildGenome(t *testing.T, sensors, outputs, hidden []int, activation string, links ...link) *Genome {
	t.Helper()
	g := NewGenome()
	add := func(ids []int, role NodeRole) {
		for _, id := range ids {
			require.NoError(t, g.AddNodeGene(&NodeGene{ID: id, Role: role, Activation: activation, Aggregation: "sum"}))
		}
	}
	add(sensors, Sensor)
	add(outputs, Output)
	add(hidden, Hidden)
	for _, l := range links {
		require.NoError(t, g.AddConnectGene(&ConnectGene{ID: l.id, Source: l.src, Destination: l.dst, Weight: l.weight}))
	}
	return g
}

// xorGenome is the bias-augmented XOR network: sensors 1-3, hidden 4, output 5.
func xorGenome(t *testing.T) *Genome {
	return buildGenome(t, []int{1, 2, 3}, []int{5}, []int{4}, "step",
		link{1, 1, 4, -5},
		link{2, 2, 4, 10},
		link{3, 2, 5, -10},
		link{4, 3, 4, 10},
		link{5, 3, 5, -10},
		link{6, 4, 5, 15},
	)
}

func TestAddNodeGene_Duplicate(t *testing.T) {
	g := NewGenome()
	require.NoError(t, g.AddNodeGene(&NodeGene{ID: 1, Role: Sensor}))

	err := g.AddNodeGene(&NodeGene{ID: 1, Role: Output})
	require.ErrorIs(t, err, ErrStructuralIntegrity)
	assert.Len(t, g.Nodes, 1)
	assert.Equal(t, Sensor, g.Nodes[1].Role)
	assert.Empty(t, g.OutputIDs())
}

func TestAddConnectGene_Errors(t *testing.T) {
	g := buildGenome(t, []int{1}, []int{2}, nil, "identity", link{1, 1, 2, 0.5})

	tests := []struct {
		name string
		conn *ConnectGene
	}{
		{"duplicate id", &ConnectGene{ID: 1, Source: 2, Destination: 2}},
		{"missing source", &ConnectGene{ID: 2, Source: 9, Destination: 2}},
		{"missing destination", &ConnectGene{ID: 3, Source: 1, Destination: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddConnectGene(tt.conn)
			require.ErrorIs(t, err, ErrStructuralIntegrity)
			assert.Len(t, g.Connections, 1)
			assert.Equal(t, 0.5, g.Connections[1].Weight)
		})
	}
}

func TestGenome_Indexes(t *testing.T) {
	g := xorGenome(t)
	assert.Equal(t, []int{1, 2, 3}, g.SensorIDs())
	assert.Equal(t, []int{5}, g.OutputIDs())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, g.NodeIDs())
	assert.Equal(t, 5, g.MaxNodeID())
	assert.Equal(t, 6, g.MaxConnectionID())
	assert.True(t, g.HasLink(4, 5))
	assert.False(t, g.HasLink(5, 4))
}

func TestGenome_CopyIsIndependent(t *testing.T) {
	g := xorGenome(t)
	c := g.Copy()

	c.Connections[1].Weight = 99
	c.Nodes[4].Activation = "sigmoid"
	require.NoError(t, c.AddNodeGene(&NodeGene{ID: 6, Role: Output, Activation: "step", Aggregation: "sum"}))

	assert.Equal(t, -5.0, g.Connections[1].Weight)
	assert.Equal(t, "step", g.Nodes[4].Activation)
	assert.Equal(t, []int{5}, g.OutputIDs())
	assert.Equal(t, []int{5, 6}, c.OutputIDs())
}

func TestToVector_SingleEntryCatalogs(t *testing.T) {
	g := xorGenome(t)
	vec, err := g.ToVector(5, 6, []string{"sum"}, []string{"step"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -5, 1, 10, 1, -10, 1, 10, 1, -10, 1, 15}, vec)
}

func TestToVector_OneHot(t *testing.T) {
	g := NewGenome()
	require.NoError(t, g.AddNodeGene(&NodeGene{ID: 1, Role: Sensor, Activation: "step", Aggregation: "sum"}))
	require.NoError(t, g.AddNodeGene(&NodeGene{ID: 2, Role: Output, Activation: "sigmoid", Aggregation: "product"}))
	require.NoError(t, g.AddConnectGene(&ConnectGene{ID: 1, Source: 1, Destination: 2, Weight: 0.5, Disabled: true}))

	vec, err := g.ToVector(3, 2, []string{"sum", "product"}, []string{"step", "sigmoid"})
	require.NoError(t, err)
	assert.Equal(t, []float64{
		1, 0, 1, 0, // node 1
		0, 1, 0, 1, // node 2
		0, 0, 0, 0, // node 3 absent
		0, 0.5, // connection 1 disabled
		0, 0, // connection 2 absent
	}, vec)
}

func TestToVector_UnknownFunction(t *testing.T) {
	g := xorGenome(t)
	_, err := g.ToVector(5, 6, []string{"sum"}, []string{"sigmoid", "tanh"})
	require.ErrorIs(t, err, ErrUnknownFunction)

	// Single-entry catalogs emit no one-hot block but still check membership.
	g.Nodes[5].Activation = "sigmoid"
	_, err = g.ToVector(5, 6, []string{"sum"}, []string{"step"})
	require.ErrorIs(t, err, ErrUnknownFunction)
}
