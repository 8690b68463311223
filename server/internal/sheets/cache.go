package sheets

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the freshness window for a fetched table.
const DefaultTTL = 60 * time.Second

// Observer is notified of cache outcomes. Implementations must be safe for
// concurrent use.
type Observer interface {
	CacheHit(url string)
	CacheMiss(url string)
	FetchFailed(url string)
	CacheCleared()
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)    {}
func (nopObserver) CacheMiss(string)   {}
func (nopObserver) FetchFailed(string) {}
func (nopObserver) CacheCleared()      {}

type cacheEntry struct {
	table     *Table
	fetchedAt time.Time
}

// Cache is a Loader that memoizes another Loader by URL for a freshness
// window. Concurrent misses for the same URL share one underlying load.
// Failed loads are never cached.
type Cache struct {
	loader Loader
	obs    Observer
	group  singleflight.Group

	mu   sync.Mutex
	ttl  time.Duration
	data map[string]*cacheEntry
	gen  uint64           // bumped by Clear; stale in-flight loads are not stored
	now  func() time.Time // injectable for deterministic tests
}

// NewCache wraps loader with a cache whose entries stay fresh for ttl.
// obs may be nil.
func NewCache(loader Loader, ttl time.Duration, obs Observer) *Cache {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Cache{
		loader: loader,
		obs:    obs,
		ttl:    ttl,
		data:   make(map[string]*cacheEntry),
		now:    time.Now,
	}
}

// Load returns the cached table for url if it was fetched less than TTL ago,
// otherwise it loads it through the wrapped Loader and caches the result.
// The shared load is not cancelled when one of its callers gives up; each
// caller returns ctx.Err() as soon as its own ctx is done.
func (c *Cache) Load(ctx context.Context, url string) (*Table, error) {
	if t, ok := c.fresh(url); ok {
		c.obs.CacheHit(url)
		return t, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(url, func() (interface{}, error) {
		// A load that finished between our miss and joining the group has
		// already refreshed the entry.
		if t, ok := c.fresh(url); ok {
			c.obs.CacheHit(url)
			return t, nil
		}
		c.obs.CacheMiss(url)

		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()

		t, err := c.loader.Load(shared, url)
		if err != nil {
			c.obs.FetchFailed(url)
			slog.Warn("sheets: fetch failed", "url", url, "err", err)
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.data[url] = &cacheEntry{table: t, fetchedAt: c.now()}
		}
		c.mu.Unlock()
		slog.Debug("sheets: fetched table", "url", url, "rows", t.Len())
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

func (c *Cache) fresh(url string) (*Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[url]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.table, true
}

// Clear drops every entry so the next Load of any URL goes to the network.
// Loads already in flight complete but do not repopulate the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.data)
	c.data = make(map[string]*cacheEntry)
	c.gen++
	c.mu.Unlock()
	c.obs.CacheCleared()
	slog.Info("sheets: cache cleared", "entries", n)
}

// SetTTL changes the freshness window. Existing entries are judged against
// the new window from the next Load on.
func (c *Cache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// TTL returns the current freshness window.
func (c *Cache) TTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl
}

// EntryStatus describes one cached table.
type EntryStatus struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
	Age       string    `json:"age"`
	Rows      int       `json:"rows"`
	Fresh     bool      `json:"fresh"`
}

// Status lists cached entries ordered by URL, including expired ones that
// have not been replaced yet.
func (c *Cache) Status() []EntryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	out := make([]EntryStatus, 0, len(c.data))
	for url, e := range c.data {
		age := now.Sub(e.fetchedAt)
		out = append(out, EntryStatus{
			URL:       url,
			FetchedAt: e.fetchedAt.UTC(),
			Age:       age.Truncate(time.Second).String(),
			Rows:      e.table.Len(),
			Fresh:     age < c.ttl,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// Count returns the number of cached entries, fresh or not.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
