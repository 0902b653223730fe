package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardedRoundTrip(t *testing.T) {
	g, err := NewGuarded(DefaultConfig[int](4))
	require.NoError(t, err)

	seq := g.Put(42)
	assert.Equal(t, uint64(0), seq)

	gotSeq, value, err := g.Get(seq)
	require.NoError(t, err)
	assert.Equal(t, seq, gotSeq)
	assert.Equal(t, 42, value)
}

func TestGuardedGetLatestDoesNotDeadlock(t *testing.T) {
	g, err := NewGuarded(DefaultConfig[int](4))
	require.NoError(t, err)

	g.Put(1)
	g.Put(2)

	_, value, err := g.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestGuardedConcurrentPuts(t *testing.T) {
	g, err := NewGuarded(DefaultConfig[int](1024))
	require.NoError(t, err)

	var wg sync.WaitGroup
	goroutines := 16
	perGoroutine := 50

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				g.Put(j)
			}
		}()
	}
	wg.Wait()

	seq, _, err := g.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, uint64(goroutines*perGoroutine-1), seq)
}
