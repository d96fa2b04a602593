package respcache

import (
	"container/list"
	"sync"
	"time"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/metrics"
)

// Cache is an in-process LRU response cache with per-entry TTL. Expiry is
// checked lazily on Get; an expired entry counts as a miss and is removed
// on sight. All operations are safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
	now      func() time.Time

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
}

type entry struct {
	key       string
	outcome   domain.Outcome
	expiresAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Size        int    `json:"size"`
	Capacity    int    `json:"capacity"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
}

// Option customizes cache construction.
type Option func(*Cache)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache holding at most capacity entries, each valid for ttl.
func New(capacity int, ttl time.Duration, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = 100
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached outcome for key, refreshing its recency on hit.
func (c *Cache) Get(key string) (domain.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		metrics.ResponseCacheTotal.WithLabelValues("miss").Inc()
		return domain.Outcome{}, false
	}

	e := elem.Value.(*entry)
	if !c.now().Before(e.expiresAt) {
		c.removeLocked(elem)
		c.expirations++
		c.misses++
		metrics.ResponseCacheTotal.WithLabelValues("expired").Inc()
		return domain.Outcome{}, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	metrics.ResponseCacheTotal.WithLabelValues("hit").Inc()
	return e.outcome, true
}

// Put stores an outcome under key, evicting the least recently used entry
// when the cache is full. Storing an existing key refreshes its value, TTL,
// and recency.
func (c *Cache) Put(key string, outcome domain.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry)
		e.outcome = outcome
		e.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
			c.evictions++
			metrics.ResponseCacheTotal.WithLabelValues("evicted").Inc()
		}
	}

	elem := c.order.PushFront(&entry{key: key, outcome: outcome, expiresAt: expiresAt})
	c.entries[key] = elem
}

// Clear drops all entries. Counters survive.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
}

// Stats returns a snapshot of the cache counters and current size.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:        c.order.Len(),
		Capacity:    c.capacity,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}

func (c *Cache) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.entries, e.key)
}
