package ring

import "sync"

// Guarded wraps a Ring with a single mutex bracketing each public
// operation, including the cursor update and the slot write, so concurrent
// callers observe the cursor advance atomically with the slot content (spec
// invariant: "a successful Get(s) observes the value written by the Put
// that returned s").
//
// GetLatest internally needs Get's logic; rather than requiring a reentrant
// mutex, Guarded takes its lock once per public call and delegates to
// Ring's unlocked helpers, so the two can never deadlock against each
// other.
type Guarded[T any] struct {
	mu   sync.Mutex
	ring *Ring[T]
}

// NewGuarded constructs a Guarded ring from cfg, exactly as New does for an
// unguarded Ring.
func NewGuarded[T any](cfg Config[T]) (*Guarded[T], error) {
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Guarded[T]{ring: r}, nil
}

// Size returns the wrapped ring's fixed capacity.
func (g *Guarded[T]) Size() uint64 {
	return g.ring.Size()
}

// Put locks, writes value, and returns its sequence.
func (g *Guarded[T]) Put(value T) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ring.Put(value)
}

// Get locks and returns the value at seq.
func (g *Guarded[T]) Get(seq uint64) (uint64, T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ring.Get(seq)
}

// GetLatest locks and returns the most recently written sequence and value.
func (g *Guarded[T]) GetLatest() (uint64, T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ring.getLatestLocked()
}

// Flush locks and resets the ring.
func (g *Guarded[T]) Flush() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ring.Flush()
}
