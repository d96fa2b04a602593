package respcache

import (
	"sync"
	"testing"
	"time"

	"github.com/prof-ramos/sherlock/internal/domain"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestCache_GetMissThenHit(t *testing.T) {
	c := New(10, time.Hour)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("k", domain.OK("hello"))

	out, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if out.Status != domain.StatusOK || out.ReplyText != "hello" {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New(10, time.Hour, WithClock(clock.Now))

	c.Put("k", domain.OK("hello"))

	clock.Advance(59 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry survived past its TTL")
	}

	stats := c.Stats()
	if stats.Expirations != 1 {
		t.Errorf("expirations = %d, want 1", stats.Expirations)
	}
	if stats.Size != 0 {
		t.Errorf("expired entry not removed, size = %d", stats.Size)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := New(2, time.Hour)

	c.Put("a", domain.OK("1"))
	c.Put("b", domain.OK("2"))

	// Touch "a" so "b" becomes least recently used.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit on a")
	}

	c.Put("c", domain.OK("3"))

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should have survived eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("c should be present")
	}
	if stats := c.Stats(); stats.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", stats.Evictions)
	}
}

func TestCache_PutRefreshesExistingKey(t *testing.T) {
	clock := newFakeClock()
	c := New(10, time.Hour, WithClock(clock.Now))

	c.Put("k", domain.OK("old"))
	clock.Advance(50 * time.Minute)
	c.Put("k", domain.OK("new"))
	clock.Advance(30 * time.Minute)

	out, ok := c.Get("k")
	if !ok {
		t.Fatal("refreshed entry should still be valid 30m after re-Put")
	}
	if out.ReplyText != "new" {
		t.Fatalf("expected refreshed value, got %q", out.ReplyText)
	}
	if c.Stats().Size != 1 {
		t.Errorf("re-Put must not duplicate the entry, size = %d", c.Stats().Size)
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(10, time.Hour)
	c.Put("a", domain.OK("1"))
	c.Put("b", domain.OK("2"))

	c.Clear()

	if stats := c.Stats(); stats.Size != 0 {
		t.Fatalf("expected empty cache after Clear, size = %d", stats.Size)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after Clear")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(50, time.Hour)
	var wg sync.WaitGroup
	keys := []string{"a", "b", "c", "d", "e"}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k := keys[j%len(keys)]
				c.Put(k, domain.OK(k))
				c.Get(k)
			}
		}()
	}
	wg.Wait()

	if size := c.Stats().Size; size != len(keys) {
		t.Fatalf("size = %d, want %d", size, len(keys))
	}
}
