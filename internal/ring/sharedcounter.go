package ring

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	mmap "github.com/edsrzf/mmap-go"
)

// SharedCounter abstracts the storage backing a Ring's producer cursor. The
// ring treats it as opaque: it only ever Loads and Stores it;
// CompareAndSwap is available to other users of the counter. The default
// implementation keeps the counter in process
// memory; MmapCounter backs it with a memory-mapped file so the cursor can
// be shared across cooperating processes.
type SharedCounter interface {
	Load() uint64
	Store(value uint64)
	CompareAndSwap(old, new uint64) bool
}

// inProcessCounter is the default SharedCounter: a plain atomic uint64.
type inProcessCounter struct {
	v atomic.Uint64
}

// NewInProcessCounter returns the default, in-memory SharedCounter used when
// a Ring is not given one explicitly.
func NewInProcessCounter() SharedCounter {
	return &inProcessCounter{}
}

func (c *inProcessCounter) Load() uint64 { return c.v.Load() }

func (c *inProcessCounter) Store(value uint64) { c.v.Store(value) }

func (c *inProcessCounter) CompareAndSwap(old, new uint64) bool {
	return c.v.CompareAndSwap(old, new)
}

// MmapCounter is a SharedCounter backed by the first 8 bytes of a
// memory-mapped file, so a Ring's producer cursor can live in shared memory
// rather than process memory. It guarantees safe coordination for: callers
// within one process (via an internal mutex), and cooperating processes
// that access the counter only through their own MmapCounter and respect a
// single-writer discipline (the mapped bytes themselves carry no
// cross-process lock — mmap gives shared storage, not a hardware CAS across
// address spaces). This mirrors how the ring is specified to treat
// SharedCounter: an opaque collaborator whose locking it does not manage.
type MmapCounter struct {
	mu   sync.Mutex
	file *os.File
	data mmap.MMap
}

// NewMmapCounter opens (creating if necessary) the file at path, ensures it
// is at least 8 bytes, and maps it. The counter starts at whatever value was
// already stored there (0 for a freshly created file).
func NewMmapCounter(path string) (*MmapCounter, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ring: open shared counter file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ring: stat shared counter file: %w", err)
	}
	if info.Size() < 8 {
		if err := file.Truncate(8); err != nil {
			file.Close()
			return nil, fmt.Errorf("ring: grow shared counter file: %w", err)
		}
	}

	data, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ring: mmap shared counter file: %w", err)
	}

	return &MmapCounter{file: file, data: data}, nil
}

// Close unmaps and closes the backing file.
func (c *MmapCounter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.data.Unmap(); err != nil {
		return fmt.Errorf("ring: unmap shared counter file: %w", err)
	}
	return c.file.Close()
}

func (c *MmapCounter) Load() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return littleEndianLoad(c.data)
}

func (c *MmapCounter) Store(value uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	littleEndianStore(c.data, value)
}

func (c *MmapCounter) CompareAndSwap(old, new uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if littleEndianLoad(c.data) != old {
		return false
	}
	littleEndianStore(c.data, new)
	return true
}

func littleEndianLoad(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func littleEndianStore(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}
