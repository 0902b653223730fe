package ring

import "sync"

// BoundedSequenced exposes Put/Next instead of random access: Put fails
// immediately with ReadCursorBlocked when the single reader hasn't kept
// pace with the ring's capacity, and Next fails with SequenceNotFound when
// the reader has caught up to the producer. It shares one reader cursor
// across all callers of Next — it is intended for a single logical reader;
// use a Disruptor when independent readers at different rates are needed.
type BoundedSequenced[T any] struct {
	ring       *Ring[T]
	readCursor uint64
}

// NewBoundedSequenced constructs a BoundedSequenced ring from cfg.
func NewBoundedSequenced[T any](cfg Config[T]) (*BoundedSequenced[T], error) {
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &BoundedSequenced[T]{ring: r}, nil
}

// Put writes value and returns its sequence, or fails with
// ReadCursorBlocked if the reader cursor trails the producer by a full
// ring's capacity.
func (b *BoundedSequenced[T]) Put(value T) (uint64, error) {
	if b.ring.cursorValue()-b.readCursor == b.ring.size {
		return 0, ErrReadCursorBlocked
	}
	return b.ring.Put(value), nil
}

// Next returns the next unread sequence and value, advancing the shared
// read cursor by one, or fails with SequenceNotFound if the reader has
// caught up to the producer.
func (b *BoundedSequenced[T]) Next() (uint64, T, error) {
	seq, value, err := b.ring.Get(b.readCursor)
	if err != nil {
		var zero T
		return 0, zero, err
	}
	b.readCursor++
	return seq, value, nil
}

// Flush resets the ring and the shared read cursor to zero.
func (b *BoundedSequenced[T]) Flush() {
	b.ring.Flush()
	b.readCursor = 0
}

// BoundedSequencedGuarded is BoundedSequenced bracketed by a single mutex
// around each operation, for concurrent callers sharing the same reader
// cursor.
type BoundedSequencedGuarded[T any] struct {
	mu  sync.Mutex
	seq *BoundedSequenced[T]
}

// NewBoundedSequencedGuarded constructs a BoundedSequencedGuarded ring from cfg.
func NewBoundedSequencedGuarded[T any](cfg Config[T]) (*BoundedSequencedGuarded[T], error) {
	s, err := NewBoundedSequenced(cfg)
	if err != nil {
		return nil, err
	}
	return &BoundedSequencedGuarded[T]{seq: s}, nil
}

// Put locks, writes value, and returns its sequence, or ReadCursorBlocked.
func (g *BoundedSequencedGuarded[T]) Put(value T) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.Put(value)
}

// Next locks and returns the next unread sequence and value, or SequenceNotFound.
func (g *BoundedSequencedGuarded[T]) Next() (uint64, T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.Next()
}

// Flush locks and resets the ring and read cursor.
func (g *BoundedSequencedGuarded[T]) Flush() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq.Flush()
}
