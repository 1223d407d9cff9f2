package dataloader

import (
	"container/list"
	"fmt"
	"sync"
)

// CacheManager is an LRU cache of preprocessed images keyed by file path.
// Cached slices are shared and must not be modified by callers.
type CacheManager struct {
	mu          sync.Mutex
	cache       map[string][]float32
	lru         *list.List
	lruMap      map[string]*list.Element
	maxSize     int
	currentSize int
	itemSize    int // float32 elements per image

	hits   int64
	misses int64
}

// NewCacheManager creates a cache holding at most maxSize images of itemSize
// elements. A non-positive maxSize disables caching.
func NewCacheManager(maxSize int, itemSize int) *CacheManager {
	return &CacheManager{
		cache:    make(map[string][]float32),
		lru:      list.New(),
		lruMap:   make(map[string]*list.Element),
		maxSize:  maxSize,
		itemSize: itemSize,
	}
}

// Get retrieves an item from the cache
func (cm *CacheManager) Get(key string) ([]float32, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if elem, ok := cm.lruMap[key]; ok {
		cm.lru.MoveToFront(elem)
		cm.hits++
		return cm.cache[key], true
	}

	cm.misses++
	return nil, false
}

// Put adds an item to the cache, evicting the least recently used entries.
func (cm *CacheManager) Put(key string, data []float32) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.maxSize <= 0 {
		return
	}
	if elem, ok := cm.lruMap[key]; ok {
		cm.lru.MoveToFront(elem)
		return
	}

	cm.lruMap[key] = cm.lru.PushFront(key)
	cm.cache[key] = data
	cm.currentSize++

	for cm.currentSize > cm.maxSize {
		cm.removeElement(cm.lru.Back())
	}
}

func (cm *CacheManager) removeElement(elem *list.Element) {
	key := elem.Value.(string)
	cm.lru.Remove(elem)
	delete(cm.lruMap, key)
	delete(cm.cache, key)
	cm.currentSize--
}

// Stats returns cache statistics
func (cm *CacheManager) Stats() CacheStats {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return CacheStats{
		Size:     cm.currentSize,
		MaxSize:  cm.maxSize,
		Hits:     cm.hits,
		Misses:   cm.misses,
		HitRate:  cm.calculateHitRate(),
		MemoryMB: float64(cm.currentSize*cm.itemSize*4) / (1 << 20),
	}
}

func (cm *CacheManager) calculateHitRate() float64 {
	total := cm.hits + cm.misses
	if total == 0 {
		return 0
	}
	return float64(cm.hits) / float64(total) * 100
}

// CacheStats holds cache statistics
type CacheStats struct {
	Size     int
	MaxSize  int
	Hits     int64
	Misses   int64
	HitRate  float64
	MemoryMB float64
}

// String returns a string representation of cache stats
func (cs CacheStats) String() string {
	return fmt.Sprintf("Cache: %d/%d items (%.1f MB), Hits: %d, Misses: %d, Hit Rate: %.1f%%",
		cs.Size, cs.MaxSize, cs.MemoryMB, cs.Hits, cs.Misses, cs.HitRate)
}
