package ring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessCounterLoadStoreCompareAndSwap(t *testing.T) {
	c := NewInProcessCounter()
	assert.Equal(t, uint64(0), c.Load())

	c.Store(5)
	assert.Equal(t, uint64(5), c.Load())

	assert.True(t, c.CompareAndSwap(5, 6))
	assert.Equal(t, uint64(6), c.Load())

	assert.False(t, c.CompareAndSwap(5, 7))
	assert.Equal(t, uint64(6), c.Load())
}

func TestMmapCounterPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cursor")

	c1, err := NewMmapCounter(path)
	require.NoError(t, err)
	c1.Store(42)
	require.NoError(t, c1.Close())

	c2, err := NewMmapCounter(path)
	require.NoError(t, err)
	defer c2.Close()

	assert.Equal(t, uint64(42), c2.Load())
}

func TestMmapCounterCompareAndSwap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cursor")

	c, err := NewMmapCounter(path)
	require.NoError(t, err)
	defer c.Close()

	c.Store(10)
	assert.True(t, c.CompareAndSwap(10, 11))
	assert.Equal(t, uint64(11), c.Load())
	assert.False(t, c.CompareAndSwap(10, 12))
}

func TestMmapCounterGrowsShortFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cursor")

	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	c, err := NewMmapCounter(path)
	require.NoError(t, err)
	defer c.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, info.Size(), int64(8))
}

func TestRingWithMmapCounter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cursor")

	counter, err := NewMmapCounter(path)
	require.NoError(t, err)
	defer counter.Close()

	cfg := DefaultConfig[int](4)
	cfg.Counter = counter
	r, err := New(cfg)
	require.NoError(t, err)

	r.Put(1)
	r.Put(2)

	seq, value, err := r.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, 2, value)
}
