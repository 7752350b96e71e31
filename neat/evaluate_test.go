package neat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelFitness(t *testing.T) {
	agents := make([]*Agent, 50)
	for i := range agents {
		agents[i] = NewAgent(i+1, NewGenome())
	}

	var running, peak atomic.Int32
	eval := func(_ context.Context, a *Agent) (float64, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		return float64(a.ID) * 2, nil
	}

	require.NoError(t, ParallelFitness(4, eval)(context.Background(), agents))
	for _, a := range agents {
		f, ok := a.Fitness()
		require.True(t, ok)
		assert.Equal(t, float64(a.ID)*2, f)
	}
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestParallelFitness_Error(t *testing.T) {
	agents := []*Agent{NewAgent(1, NewGenome()), NewAgent(2, NewGenome())}
	boom := errors.New("boom")
	eval := func(_ context.Context, a *Agent) (float64, error) {
		if a.ID == 2 {
			return 0, boom
		}
		return 1, nil
	}

	err := ParallelFitness(0, eval)(context.Background(), agents)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "agent 2")
}

func TestSerialFitness_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SerialFitness(func(context.Context, *Agent) (float64, error) { return 1, nil })(ctx, []*Agent{NewAgent(1, NewGenome())})
	require.ErrorIs(t, err, context.Canceled)
}
