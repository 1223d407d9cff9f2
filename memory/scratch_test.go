package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {8, 8},
		{100, 128}, {1000, 1024}, {1024, 1024}, {1025, 2048},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classSize(tt.in), "classSize(%d)", tt.in)
	}
}

func TestGetReturnsRequestedLength(t *testing.T) {
	sp := NewScratchPool()
	buf := sp.Get(100)
	assert.Len(t, buf, 100)
	assert.Equal(t, 128, cap(buf))
	assert.Nil(t, sp.Get(0))

	stats := sp.Stats()[128]
	assert.Equal(t, int64(1), stats.Gets)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.InUse)
}

func TestPutTracksUsage(t *testing.T) {
	sp := NewScratchPool()
	a := sp.Get(60)
	b := sp.Get(64)
	sp.Put(a)
	sp.Put(b)

	stats := sp.Stats()[64]
	assert.Equal(t, int64(2), stats.Gets)
	assert.Equal(t, int64(2), stats.Puts)
	assert.Equal(t, int64(0), stats.InUse)
	assert.Equal(t, int64(2), stats.MaxInUse)

	again := sp.Get(10)
	assert.Len(t, again, 10)
	assert.Contains(t, sp.String(), "64 floats: Gets=2, Puts=2")
}

func TestPutIgnoresForeignBuffers(t *testing.T) {
	sp := NewScratchPool()
	sp.Put(make([]float32, 10))
	sp.Put(make([]float32, 16))
	sp.Put(nil)
	assert.Empty(t, sp.Stats())
}

func TestConcurrentUse(t *testing.T) {
	sp := NewScratchPool()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				buf := sp.Get(500)
				buf[499] = float32(i)
				sp.Put(buf)
			}
		}()
	}
	wg.Wait()

	stats := sp.Stats()[512]
	require.Equal(t, int64(800), stats.Gets)
	assert.Equal(t, int64(800), stats.Puts)
	assert.Equal(t, int64(0), stats.InUse)
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
