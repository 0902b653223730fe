package ring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarrierWaitTimesOutWhenNeverSet(t *testing.T) {
	b := newBarrier()
	assert.False(t, b.Wait(20*time.Millisecond))
}

func TestBarrierWaitReturnsImmediatelyWhenAlreadySet(t *testing.T) {
	b := newBarrier()
	b.Set()
	assert.True(t, b.Wait(0))
	assert.True(t, b.IsSet())
}

func TestBarrierSetWakesConcurrentWaiter(t *testing.T) {
	b := newBarrier()
	woke := make(chan bool, 1)

	go func() {
		woke <- b.Wait(time.Second)
	}()

	time.Sleep(10 * time.Millisecond)
	b.Set()

	select {
	case ok := <-woke:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestBarrierClearRearmsForNextWait(t *testing.T) {
	b := newBarrier()
	b.Set()
	assert.True(t, b.IsSet())

	b.Clear()
	assert.False(t, b.IsSet())
	assert.False(t, b.Wait(10*time.Millisecond))
}

func TestBarrierSetIsIdempotent(t *testing.T) {
	b := newBarrier()
	b.Set()
	assert.NotPanics(t, func() { b.Set() })
	assert.True(t, b.IsSet())
}
