package ring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitingBoundedNextTimesOutWhenEmpty(t *testing.T) {
	w, err := NewWaitingBounded(DefaultConfig[int](4))
	require.NoError(t, err)

	start := time.Now()
	_, _, err = w.Next(30 * time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, elapsed >= 30*time.Millisecond)
}

func TestWaitingBoundedPutTimesOutWhenFull(t *testing.T) {
	w, err := NewWaitingBounded(DefaultConfig[int](2))
	require.NoError(t, err)

	_, err = w.Put(1, time.Second)
	require.NoError(t, err)
	_, err = w.Put(2, time.Second)
	require.NoError(t, err)

	_, err = w.Put(3, 30*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReadCursorBlocked))
}

func TestWaitingBoundedUnblocksSlowConsumer(t *testing.T) {
	w, err := NewWaitingBounded(DefaultConfig[int](4))
	require.NoError(t, err)

	result := make(chan int, 1)
	go func() {
		_, value, err := w.Next(time.Second)
		if err != nil {
			result <- -1
			return
		}
		result <- value
	}()

	time.Sleep(20 * time.Millisecond)
	_, err = w.Put(99, time.Second)
	require.NoError(t, err)

	select {
	case value := <-result:
		assert.Equal(t, 99, value)
	case <-time.After(time.Second):
		t.Fatal("consumer never woke up")
	}
}

func TestWaitingBoundedUnblocksBlockedProducer(t *testing.T) {
	w, err := NewWaitingBounded(DefaultConfig[int](1))
	require.NoError(t, err)

	_, err = w.Put(1, time.Second)
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() {
		_, err := w.Put(2, time.Second)
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	_, _, err = w.Next(time.Second)
	require.NoError(t, err)

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("producer never woke up")
	}
}
