// Package memory pools the float32 scratch buffers used by the CPU kernels.
package memory

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
	"sync"
)

// ScratchPool hands out reusable float32 buffers grouped into power-of-two
// size classes. Buffers come back with stale contents; callers must overwrite
// every element they read.
type ScratchPool struct {
	mu      sync.Mutex
	classes map[int]*sizeClass
}

type sizeClass struct {
	pool  sync.Pool
	stats ClassStats
}

// ClassStats counts the traffic through one size class.
type ClassStats struct {
	Gets     int64
	Puts     int64
	Misses   int64
	InUse    int64
	MaxInUse int64
}

// NewScratchPool returns an empty pool.
func NewScratchPool() *ScratchPool {
	return &ScratchPool{classes: make(map[int]*sizeClass)}
}

// Get returns a buffer of length n.
func (sp *ScratchPool) Get(n int) []float32 {
	if n <= 0 {
		return nil
	}
	size := classSize(n)

	sp.mu.Lock()
	class, ok := sp.classes[size]
	if !ok {
		class = &sizeClass{}
		sp.classes[size] = class
	}
	class.stats.Gets++
	class.stats.InUse++
	if class.stats.InUse > class.stats.MaxInUse {
		class.stats.MaxInUse = class.stats.InUse
	}
	sp.mu.Unlock()

	if p, ok := class.pool.Get().(*[]float32); ok {
		return (*p)[:n]
	}

	sp.mu.Lock()
	class.stats.Misses++
	sp.mu.Unlock()
	return make([]float32, n, size)
}

// Put returns a buffer obtained from Get. Buffers whose capacity is not a
// size class are dropped.
func (sp *ScratchPool) Put(buf []float32) {
	c := cap(buf)
	if c == 0 || c != classSize(c) {
		return
	}

	sp.mu.Lock()
	class, ok := sp.classes[c]
	if ok {
		class.stats.Puts++
		class.stats.InUse--
	}
	sp.mu.Unlock()
	if !ok {
		return
	}

	buf = buf[:c]
	class.pool.Put(&buf)
}

// Stats returns a copy of the per-class counters, keyed by class size.
func (sp *ScratchPool) Stats() map[int]ClassStats {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	out := make(map[int]ClassStats, len(sp.classes))
	for size, class := range sp.classes {
		out[size] = class.stats
	}
	return out
}

func (sp *ScratchPool) String() string {
	stats := sp.Stats()
	sizes := make([]int, 0, len(stats))
	for size := range stats {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	var b strings.Builder
	b.WriteString("ScratchPool:\n")
	for _, size := range sizes {
		s := stats[size]
		hitRate := 0.0
		if s.Gets > 0 {
			hitRate = float64(s.Gets-s.Misses) / float64(s.Gets) * 100
		}
		fmt.Fprintf(&b, "  %d floats: Gets=%d, Puts=%d, InUse=%d, MaxInUse=%d, HitRate=%.1f%%\n",
			size, s.Gets, s.Puts, s.InUse, s.MaxInUse, hitRate)
	}
	return b.String()
}

// classSize rounds n up to a power of two.
func classSize(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

var (
	defaultPool     *ScratchPool
	defaultPoolOnce sync.Once
)

// Default returns the process-wide pool shared by the tensor kernels.
func Default() *ScratchPool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewScratchPool()
	})
	return defaultPool
}
