package neat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AdoptAdvancesCounter(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 1, r.NextNodeID())
	assert.Equal(t, 10, r.AdoptNodeID(10))
	assert.Equal(t, 11, r.NextNodeID())

	// Adopting an id behind the counter leaves it alone.
	assert.Equal(t, 5, r.AdoptNodeID(5))
	assert.Equal(t, 12, r.NextNodeID())
	assert.Equal(t, 12, r.NodeCount())

	assert.Equal(t, 1, r.NextConnectionID())
	assert.Equal(t, 1000, r.AdoptConnectionID(1000))
	assert.Equal(t, 1001, r.NextConnectionID())
	assert.Equal(t, 1001, r.ConnectionCount())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	const n = 200
	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = r.NextConnectionID()
		}()
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, id := range ids {
		require.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Equal(t, n, r.ConnectionCount())
}

func TestInnovationLog_Link(t *testing.T) {
	r := NewRegistry()
	r.AdoptConnectionID(4)
	log := NewInnovationLog(r)

	a := log.Link(1, 3)
	b := log.Link(1, 3)
	c := log.Link(3, 1)
	assert.Equal(t, 5, a)
	assert.Equal(t, a, b)
	assert.Equal(t, 6, c)

	log.Reset()
	assert.Equal(t, 7, log.Link(1, 3))
}

func TestInnovationLog_Split(t *testing.T) {
	r := NewRegistry()
	r.AdoptNodeID(3)
	r.AdoptConnectionID(2)
	log := NewInnovationLog(r)
	conn := &ConnectGene{ID: 2, Source: 1, Destination: 3}

	first := log.Split(conn, false)
	assert.Equal(t, SplitRecord{Node: 4, In: 3, Out: 4}, first)
	assert.Equal(t, first, log.Split(conn, false))

	fresh := log.Split(conn, true)
	assert.Equal(t, SplitRecord{Node: 5, In: 5, Out: 6}, fresh)

	// The links created by the first split are known to Link.
	assert.Equal(t, first.In, log.Link(1, first.Node))
}
