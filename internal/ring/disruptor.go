package ring

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Disruptor is the single-producer/multi-consumer dispatch core: one
// underlying Ring, any number of independently-paced Subscribers, and
// producer back-pressure against whichever subscriber has fallen furthest
// behind. A Disruptor offers no random access: its Get and GetLatest always
// fail with OperationNotAllowed, and the only way to read is through a
// Subscriber obtained via Subscribe.
type Disruptor[T any] struct {
	ring *Ring[T]

	mu          sync.Mutex
	subscribers map[string]*Subscriber[T]

	log *zap.SugaredLogger
}

// NewDisruptor constructs a Disruptor from cfg.
func NewDisruptor[T any](cfg Config[T]) (*Disruptor[T], error) {
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Disruptor[T]{
		ring:        r,
		subscribers: make(map[string]*Subscriber[T]),
		log:         r.log,
	}, nil
}

// Size returns the underlying ring's fixed capacity.
func (d *Disruptor[T]) Size() uint64 {
	return d.ring.Size()
}

// Subscribe registers a new Subscriber with its own read cursor and pair of
// wake barriers. If startAtLatest is true the subscriber's cursor starts at
// the ring's current cursor (it only sees values published from here on);
// otherwise it starts at zero (it sees every live sequence still in the
// ring, and will observe SequenceOverwritten on sequences the producer has
// already wrapped past). The returned Subscriber must eventually have
// Unregister called on it, or it will hold back the producer forever.
func (d *Disruptor[T]) Subscribe(startAtLatest bool) *Subscriber[T] {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := uint64(0)
	if startAtLatest {
		start = d.ring.cursorValue()
	}

	sub := &Subscriber[T]{
		id:             uuid.NewString(),
		disruptor:      d,
		readCursor:     start,
		dataAvailable:  newBarrier(),
		spaceAvailable: newBarrier(),
		log:            d.log,
	}
	d.subscribers[sub.id] = sub
	d.log.Infow("subscriber registered", "subscriber", sub.id, "startAtLatest", startAtLatest, "readCursor", start)
	return sub
}

// unregister removes sub from the subscriber set and wakes its own
// spaceAvailable barrier, in case the producer is currently parked waiting
// specifically on sub.
func (d *Disruptor[T]) unregister(sub *Subscriber[T]) {
	d.mu.Lock()
	delete(d.subscribers, sub.id)
	d.mu.Unlock()
	d.log.Infow("subscriber unregistered", "subscriber", sub.id)
	sub.spaceAvailable.Set()
}

// blockedBehind returns a registered subscriber whose read cursor trails the
// producer cursor by a full ring's capacity, or nil if none does. The
// registry is a map, so when several subscribers qualify, which one is
// returned is not defined; registration order is not tracked.
func (d *Disruptor[T]) blockedBehind() *Subscriber[T] {
	cursor := d.ring.cursorValue()
	for _, sub := range d.subscribers {
		if cursor-sub.readCursor == d.ring.size {
			return sub
		}
	}
	return nil
}

// Get always fails with OperationNotAllowed: a Disruptor has no single read
// cursor to address by sequence, so direct random access is not part of its
// contract. Use Subscribe and the returned Subscriber's Next instead.
func (d *Disruptor[T]) Get(seq uint64) (uint64, T, error) {
	var zero T
	return 0, zero, ErrOperationNotAllowed
}

// GetLatest always fails with OperationNotAllowed, for the same reason as
// Get.
func (d *Disruptor[T]) GetLatest() (uint64, T, error) {
	var zero T
	return 0, zero, ErrOperationNotAllowed
}

// Put blocks on whichever registered subscriber is currently blocking it
// until that subscriber makes room or timeout elapses, writes value, and
// wakes every subscriber whose read cursor was exactly the new sequence. It
// fails with ReadCursorBlocked if timeout elapses first.
//
// After every wake the back-pressure condition is re-evaluated against every
// currently-registered subscriber from scratch, per spec: the producer never
// assumes the subscriber whose barrier woke it is the one that was holding
// it up, since the registry can change (a new, further-behind subscriber may
// have joined, or the previously slowest one may have unregistered) between
// the wait starting and the wake happening.
func (d *Disruptor[T]) Put(value T, timeout time.Duration) (uint64, error) {
	deadline := time.Now().Add(timeout)
	for {
		d.mu.Lock()
		blocker := d.blockedBehind()
		d.mu.Unlock()
		if blocker == nil {
			break
		}

		remaining := time.Until(deadline)
		blocker.spaceAvailable.Clear()
		d.log.Warnw("put blocked on subscriber", "subscriber", blocker.id, "remaining", remaining)
		if !blocker.spaceAvailable.Wait(remaining) {
			return 0, ErrReadCursorBlocked
		}
	}

	seq := d.ring.Put(value)

	d.mu.Lock()
	for _, sub := range d.subscribers {
		if sub.readCursor == seq {
			sub.dataAvailable.Set()
		}
	}
	d.mu.Unlock()

	return seq, nil
}

// Flush rebuilds the underlying ring, resets every subscriber's read cursor
// to zero, and clears every barrier. It is intended for use only when no
// goroutine is concurrently calling Put or Next.
func (d *Disruptor[T]) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ring.Flush()
	for _, sub := range d.subscribers {
		sub.readCursor = 0
		sub.dataAvailable.Clear()
		sub.spaceAvailable.Clear()
	}
}

// Subscriber is one independently-paced consumer of a Disruptor. Two
// Subscribers never share a read cursor or a barrier pair; a slow Subscriber
// only ever back-pressures the producer, never another Subscriber.
type Subscriber[T any] struct {
	id         string
	disruptor  *Disruptor[T]
	readCursor uint64

	dataAvailable  *barrier // signaled by the producer when this subscriber's next sequence becomes live
	spaceAvailable *barrier // signaled by this subscriber after advancing past a filled slot

	log *zap.SugaredLogger
}

// ID returns the subscriber's unique identity, used in logging.
func (s *Subscriber[T]) ID() string {
	return s.id
}

// Next blocks until a value is available at this subscriber's read cursor
// or timeout elapses, advances the cursor, signals this subscriber's own
// spaceAvailable barrier (waking a producer parked on it), and returns the
// sequence and value. It fails with SequenceOverwritten if the producer has
// already overwritten the sequence this subscriber was about to read (the
// subscriber fell behind by a full ring's capacity — invariant 4 prevents
// this in correct use), or SequenceNotFound if timeout elapses first.
func (s *Subscriber[T]) Next(timeout time.Duration) (uint64, T, error) {
	var zero T

	seq, value, err := s.disruptor.ring.Get(s.readCursor)
	if err != nil {
		if err.(*Error).Kind() == SequenceOverwritten {
			s.log.Errorw("subscriber fell behind ring capacity", "subscriber", s.id, "readCursor", s.readCursor)
			return 0, zero, err
		}

		s.dataAvailable.Clear()
		if !s.dataAvailable.Wait(timeout) {
			return 0, zero, ErrSequenceNotFound
		}
		seq, value, err = s.disruptor.ring.Get(s.readCursor)
		if err != nil {
			return 0, zero, err
		}
	}

	s.disruptor.mu.Lock()
	s.readCursor++
	s.disruptor.mu.Unlock()

	s.spaceAvailable.Set()
	return seq, value, nil
}

// Unregister removes the subscriber from its Disruptor, which wakes its own
// spaceAvailable barrier and so may unblock a producer parked on it. A
// subscriber should not call Next again after Unregister: nothing will wake
// its dataAvailable barrier once it is no longer tracked by the producer.
func (s *Subscriber[T]) Unregister() {
	s.disruptor.unregister(s)
}
