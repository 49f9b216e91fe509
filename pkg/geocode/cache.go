package geocode

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
)

// Cache is a capacity-bounded LRU over reverse-geocode results, keyed by the
// coordinate rounded to 5 decimal places (~1m). Entries are write-once per
// key; an overwrite carries identical data.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]model.Address
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
}

// NewCache creates a reverse-geocode cache holding at most maxEntries.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	return &Cache{
		entries:    make(map[string]model.Address),
		maxEntries: maxEntries,
	}
}

// cacheKey rounds a coordinate to 5 decimal places for lookup.
func cacheKey(c geo.Coordinate) string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
}

// Get returns the cached address for a coordinate, if present.
func (c *Cache) Get(coord geo.Coordinate) (model.Address, bool) {
	key := cacheKey(coord)

	c.mu.Lock()
	defer c.mu.Unlock()

	addr, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return model.Address{}, false
	}
	c.touch(key)
	c.hits.Add(1)
	return addr, true
}

// Put stores an address under the coordinate's rounded key, evicting the
// least recently used entry when at capacity.
func (c *Cache) Put(coord geo.Coordinate, addr model.Address) {
	key := cacheKey(coord)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = addr
	c.touch(key)
}

// touch moves key to the newest position. Caller holds the lock.
func (c *Cache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, key)
}

// Stats reports hit/miss counters for the cache.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// CachedReverse wraps Reverse with the cache and a hard timeout. Expiry or
// any provider failure yields nil, never an error: callers treat nil as
// "skip enrichment". Successful lookups are stored for subsequent calls.
func (c *Client) CachedReverse(ctx context.Context, cache *Cache, coord geo.Coordinate, timeout time.Duration) *model.Address {
	if cache != nil {
		if addr, ok := cache.Get(coord); ok {
			return &addr
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	addr, err := c.Reverse(ctx, coord)
	if err != nil {
		zap.L().Debug("geocode: cached reverse miss",
			zap.Float64("lat", coord.Lat),
			zap.Float64("lng", coord.Lng),
			zap.Error(err),
		)
		return nil
	}

	if cache != nil {
		cache.Put(coord, *addr)
	}
	return addr
}
