package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFunctions(t *testing.T, activations ...string) *Functions {
	t.Helper()
	fns, err := NewFunctions(activations, []string{"sum"})
	require.NoError(t, err)
	return fns
}

func TestActivate_XOR(t *testing.T) {
	g := xorGenome(t)
	fns := mustFunctions(t, "step")

	tests := []struct {
		in   []float64
		want float64
	}{
		{[]float64{1, 0, 0}, 0},
		{[]float64{1, 0, 1}, 1},
		{[]float64{1, 1, 0}, 1},
		{[]float64{1, 1, 1}, 0},
	}
	for _, tt := range tests {
		out, err := g.Activate(tt.in, fns)
		require.NoError(t, err)
		assert.Equal(t, []float64{tt.want}, out, "inputs %v", tt.in)
	}
}

func TestActivate_InputMismatch(t *testing.T) {
	g := xorGenome(t)
	_, err := g.Activate([]float64{1, 0}, mustFunctions(t, "step"))
	require.ErrorIs(t, err, ErrInputMismatch)
}

func TestActivate_UnknownFunction(t *testing.T) {
	g := xorGenome(t)
	_, err := g.Activate([]float64{1, 0, 0}, mustFunctions(t, "sigmoid"))
	require.ErrorIs(t, err, ErrUnknownFunction)
}

func TestActivate_CycleSettles(t *testing.T) {
	// 1 -> 2 -> 3 -> 2: the output feeds back half of itself.
	g := buildGenome(t, []int{1}, []int{2}, []int{3}, "identity",
		link{1, 1, 2, 1},
		link{2, 2, 3, 1},
		link{3, 3, 2, 0.5},
	)
	out, err := g.Activate([]float64{1}, mustFunctions(t, "identity"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 2.0, out[0], 0.05)
}

func TestActivate_MaxSteps(t *testing.T) {
	// Amplifying loop: never settles on its own.
	g := buildGenome(t, []int{1}, []int{2}, []int{3}, "identity",
		link{1, 1, 2, 1},
		link{2, 2, 3, 1},
		link{3, 3, 2, 2},
	)
	_, err := g.Activate([]float64{1}, mustFunctions(t, "identity"), WithMaxSteps(100))
	require.ErrorIs(t, err, ErrActivationDiverged)
}

func TestActivate_DisabledAndUnreachedOutputs(t *testing.T) {
	g := buildGenome(t, []int{1}, []int{2, 3}, nil, "identity", link{1, 1, 2, 3})
	g.Connections[1].Disabled = true

	out, err := g.Activate([]float64{5}, mustFunctions(t, "identity"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, out)
}
