package modelhttp

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/couchcryptid/rainfall-intel/internal/observability"
)

// LocationModel is the location+year half of the model server surface.
type LocationModel interface {
	PredictLocationYear(ctx context.Context, loc domain.LocationYear) (float64, error)
	ClassifyLocationYear(ctx context.Context, loc domain.LocationYear) (string, error)
}

// CachedModel wraps a LocationModel with in-memory LRU caches. The models are
// deterministic, so a location and year always map to the same answer.
type CachedModel struct {
	inner      LocationModel
	rainfall   *lruCache[float64]
	conditions *lruCache[string]
	metrics    *observability.Metrics
}

// NewCachedModel creates a cache decorator around a location model.
func NewCachedModel(inner LocationModel, maxEntries int, metrics *observability.Metrics) *CachedModel {
	return &CachedModel{
		inner:      inner,
		rainfall:   newLRUCache[float64](maxEntries),
		conditions: newLRUCache[string](maxEntries),
		metrics:    metrics,
	}
}

func (c *CachedModel) PredictLocationYear(ctx context.Context, loc domain.LocationYear) (float64, error) {
	key := cacheKey(loc)
	if mm, ok := c.rainfall.get(key); ok {
		c.observe(true)
		return mm, nil
	}
	c.observe(false)

	mm, err := c.inner.PredictLocationYear(ctx, loc)
	if err != nil {
		return mm, err
	}
	// Non-finite outputs are rejected upstream; keep them out like empty labels.
	if !math.IsInf(mm, 0) && !math.IsNaN(mm) {
		c.rainfall.put(key, mm)
	}
	return mm, nil
}

func (c *CachedModel) ClassifyLocationYear(ctx context.Context, loc domain.LocationYear) (string, error) {
	key := cacheKey(loc)
	if label, ok := c.conditions.get(key); ok {
		c.observe(true)
		return label, nil
	}
	c.observe(false)

	label, err := c.inner.ClassifyLocationYear(ctx, loc)
	if err != nil {
		return label, err
	}
	// Empty labels are rejected upstream; keep them out so a fixed model is picked up.
	if label != "" {
		c.conditions.put(key, label)
	}
	return label, nil
}

func (c *CachedModel) observe(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.metrics.PredictionCache.WithLabelValues(result).Inc()
}

func cacheKey(loc domain.LocationYear) string {
	return fmt.Sprintf("%s|%s|%d", loc.State, loc.District, loc.Year)
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) unlink(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
