// Package ring implements the bounded, sequence-numbered circular buffers
// and single-producer/multi-consumer dispatch core described by the LMAX
// Disruptor pattern: a fixed-capacity ring shared by one producer and N
// independent consumers, coordinated by monotonically increasing cursor
// sequences and condition barriers.
//
// # Components
//
//   - Ring is the random-access core: Put/Get/GetLatest/Flush addressed by
//     sequence number.
//   - Guarded wraps a Ring with a single mutex bracketing each operation,
//     for concurrent random access.
//   - BoundedSequenced and BoundedSequencedGuarded expose Put/Next instead
//     of random access, failing fast when the single reader falls behind.
//   - WaitingBounded is the same shape but blocks (with optional timeout)
//     instead of failing immediately.
//   - Disruptor is the multi-subscriber dispatch core: one producer, N
//     independently-paced Subscribers, producer back-pressure against the
//     slowest subscriber, and edge-triggered wake-up barriers.
//
// Every sequence number is assigned once, by exactly one Put, and is never
// reused: a slot is reused, but the sequence identifying its contents keeps
// advancing. A sequence s is live iff max(0, C-ring_size) <= s < C, where C
// is the ring's cursor (the count of Puts since the ring was created or last
// flushed).
package ring

import (
	"go.uber.org/zap"
)

// Ring is a fixed-capacity, power-of-two-sized circular buffer addressed by
// monotonically increasing sequence numbers. It is safe for concurrent Put
// and Get calls only if every call observes a consistent (cursor, slot)
// pair; Ring itself does not lock — use Guarded when multiple goroutines
// call its methods concurrently.
type Ring[T any] struct {
	size    uint64
	mask    uint64
	slots   []SlotHolder[T]
	factory Factory[T]
	cursor  SharedCounter
	log     *zap.SugaredLogger
}

// Config configures a Ring (and the wrappers built on top of one, whose
// constructors pass it to New). Size must be a positive power of two. Factory defaults to
// NewValueHolder. Counter defaults to an in-process atomic counter. Logger
// defaults to a no-op logger, so a Ring costs nothing in logging overhead
// until a caller supplies one.
type Config[T any] struct {
	Size    uint64
	Factory Factory[T]
	Counter SharedCounter
	Logger  *zap.SugaredLogger
}

// DefaultConfig returns a Config with every optional field set to its
// zero-cost default; only Size must still be supplied by the caller.
func DefaultConfig[T any](size uint64) Config[T] {
	return Config[T]{
		Size:    size,
		Factory: NewValueHolder[T],
		Counter: NewInProcessCounter(),
		Logger:  zap.NewNop().Sugar(),
	}
}

func isPowerOfTwo(n uint64) bool {
	return n > 0 && n&(n-1) == 0
}

// New constructs a Ring from cfg, filling in any zero-valued optional
// fields with DefaultConfig's defaults. It fails with InvalidSize if Size is
// not a positive power of two.
func New[T any](cfg Config[T]) (*Ring[T], error) {
	if !isPowerOfTwo(cfg.Size) {
		return nil, ErrInvalidSize
	}
	if cfg.Factory == nil {
		cfg.Factory = NewValueHolder[T]
	}
	if cfg.Counter == nil {
		cfg.Counter = NewInProcessCounter()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	r := &Ring[T]{
		size:    cfg.Size,
		mask:    cfg.Size - 1,
		factory: cfg.Factory,
		cursor:  cfg.Counter,
		log:     cfg.Logger,
	}
	r.slots = makeSlots(cfg.Factory, cfg.Size)
	return r, nil
}

func makeSlots[T any](factory Factory[T], size uint64) []SlotHolder[T] {
	slots := make([]SlotHolder[T], size)
	for i := range slots {
		slots[i] = factory()
	}
	return slots
}

// Size returns the ring's fixed capacity.
func (r *Ring[T]) Size() uint64 {
	return r.size
}

// Put writes value into the ring, assigning it the next sequence number.
// It never fails: if the ring is full it silently overwrites the oldest
// live sequence.
func (r *Ring[T]) Put(value T) uint64 {
	seq := r.cursor.Load()
	index := seq & r.mask
	r.slots[index].Set(value)
	r.cursor.Store(seq + 1)
	return seq
}

// Get returns the value written by the Put that returned seq. It fails with
// SequenceNotFound if seq has not been written yet, or SequenceOverwritten
// if seq has already fallen out of the live window.
func (r *Ring[T]) Get(seq uint64) (uint64, T, error) {
	var zero T
	cursor := r.cursor.Load()
	if seq >= cursor {
		return 0, zero, ErrSequenceNotFound
	}
	if cursor > r.size && seq < cursor-r.size {
		return 0, zero, ErrSequenceOverwritten
	}
	return seq, r.slots[seq&r.mask].Get(), nil
}

// GetLatest returns the most recently written sequence and its value. It
// fails with Empty if no Put has ever succeeded (or the ring was just
// flushed).
func (r *Ring[T]) GetLatest() (uint64, T, error) {
	return r.getLatestLocked()
}

// getLatestLocked contains GetLatest's logic without taking any lock, so
// that Guarded can call it from inside its own already-held critical
// section without re-entering a non-reentrant mutex (see guarded.go).
func (r *Ring[T]) getLatestLocked() (uint64, T, error) {
	var zero T
	cursor := r.cursor.Load()
	if cursor == 0 {
		return 0, zero, ErrEmpty
	}
	return r.Get(cursor - 1)
}

// Flush rebuilds every slot via the configured Factory and resets the
// cursor to zero. Any sequence known to callers before a Flush is no longer
// retrievable afterward.
func (r *Ring[T]) Flush() {
	prior := r.cursor.Load()
	r.slots = makeSlots(r.factory, r.size)
	r.cursor.Store(0)
	r.log.Debugw("ring flushed", "priorCursor", prior, "size", r.size)
}

// cursorValue exposes the raw cursor for wrapper types in this package that
// need it without going through Get/GetLatest (e.g. back-pressure checks).
// It is not part of the public API.
func (r *Ring[T]) cursorValue() uint64 {
	return r.cursor.Load()
}
