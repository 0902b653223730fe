package ring

import (
	"time"

	"go.uber.org/zap"
)

// WaitingBounded is a bounded sequenced buffer where both Put and Next
// block on a condition barrier instead of failing immediately: Put waits
// for the reader to make room, Next waits for the producer to publish.
// Each side signals the other's barrier after completing its own step, and
// the signals are edge-triggered and idempotent (re-signaling an
// already-set barrier is a no-op).
//
// Unlike the Python original this generalizes, the barriers below are
// always per-instance fields — never shared across WaitingBounded values —
// resolving the "class-scoped Event" defect spec.md §9 calls out.
type WaitingBounded[T any] struct {
	ring       *Ring[T]
	readCursor uint64

	spaceAvailable *barrier // signaled by the consumer after advancing past a filled slot
	dataAvailable  *barrier // signaled by the producer when a slot the reader awaited becomes live

	log *zap.SugaredLogger
}

// NewWaitingBounded constructs a WaitingBounded ring from cfg.
func NewWaitingBounded[T any](cfg Config[T]) (*WaitingBounded[T], error) {
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WaitingBounded[T]{
		ring:           r,
		spaceAvailable: newBarrier(),
		dataAvailable:  newBarrier(),
		log:            log,
	}, nil
}

// Put blocks until there is room for value or timeout elapses, writes it,
// signals dataAvailable, and returns its sequence. It fails with
// ReadCursorBlocked if timeout elapses first. A zero or negative timeout
// polls once without blocking.
func (w *WaitingBounded[T]) Put(value T, timeout time.Duration) (uint64, error) {
	if w.ring.cursorValue()-w.readCursor == w.ring.size {
		w.spaceAvailable.Clear()
		w.log.Debugw("put blocked on space_available", "timeout", timeout)
		if !w.spaceAvailable.Wait(timeout) {
			return 0, ErrReadCursorBlocked
		}
		w.log.Debugw("put unblocked by space_available")
	}
	seq := w.ring.Put(value)
	w.dataAvailable.Set()
	return seq, nil
}

// Next blocks until a value is available or timeout elapses, signals
// spaceAvailable, advances the read cursor, and returns the sequence and
// value. It fails with SequenceNotFound if timeout elapses first.
func (w *WaitingBounded[T]) Next(timeout time.Duration) (uint64, T, error) {
	seq, value, err := w.ring.Get(w.readCursor)
	if err != nil {
		var zero T
		if err.(*Error).Kind() != SequenceNotFound {
			return 0, zero, err
		}
		w.dataAvailable.Clear()
		w.log.Debugw("next blocked on data_available", "timeout", timeout)
		if !w.dataAvailable.Wait(timeout) {
			return 0, zero, ErrSequenceNotFound
		}
		w.log.Debugw("next unblocked by data_available")
		seq, value, err = w.ring.Get(w.readCursor)
		if err != nil {
			return 0, zero, err
		}
	}
	w.spaceAvailable.Set()
	w.readCursor++
	return seq, value, nil
}

// Flush resets the ring and the read cursor, and clears both barriers.
func (w *WaitingBounded[T]) Flush() {
	w.ring.Flush()
	w.readCursor = 0
	w.spaceAvailable.Clear()
	w.dataAvailable.Clear()
}
