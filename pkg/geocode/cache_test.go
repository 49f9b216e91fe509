package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
)

func TestCache_RoundedKeyLookup(t *testing.T) {
	cache := NewCache(4)
	addr := model.Address{Street: "MG Road", City: "Bengaluru"}

	cache.Put(geo.Coordinate{Lat: 12.971599, Lng: 77.594599}, addr)

	// Within 5-decimal rounding of the stored key.
	got, ok := cache.Get(geo.Coordinate{Lat: 12.9716, Lng: 77.5946})
	require.True(t, ok)
	assert.Equal(t, addr, got)

	// A different rounded key misses.
	_, ok = cache.Get(geo.Coordinate{Lat: 12.9717, Lng: 77.5946})
	assert.False(t, ok)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(2)
	a := geo.Coordinate{Lat: 1, Lng: 1}
	b := geo.Coordinate{Lat: 2, Lng: 2}
	c := geo.Coordinate{Lat: 3, Lng: 3}

	cache.Put(a, model.Address{City: "A"})
	cache.Put(b, model.Address{City: "B"})

	// Touch a so b becomes the eviction candidate.
	_, ok := cache.Get(a)
	require.True(t, ok)

	cache.Put(c, model.Address{City: "C"})

	_, ok = cache.Get(b)
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = cache.Get(a)
	assert.True(t, ok)
	_, ok = cache.Get(c)
	assert.True(t, ok)
}

func TestCache_Stats(t *testing.T) {
	cache := NewCache(4)
	cache.Put(geo.Coordinate{Lat: 1, Lng: 1}, model.Address{})

	cache.Get(geo.Coordinate{Lat: 1, Lng: 1})
	cache.Get(geo.Coordinate{Lat: 9, Lng: 9})

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachedReverse_PopulatesAndHitsCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"address": {"road": "Janpath", "city": "New Delhi", "state": "Delhi", "country": "India"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	cache := NewCache(8)
	coord := geo.Coordinate{Lat: 28.6129, Lng: 77.2295}

	first := c.CachedReverse(context.Background(), cache, coord, time.Second)
	require.NotNil(t, first)
	assert.Equal(t, "New Delhi", first.City)

	second := c.CachedReverse(context.Background(), cache, coord, time.Second)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, int32(1), calls.Load(), "second lookup must be served from cache")
}

func TestCachedReverse_TimeoutYieldsNilNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
			return
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	got := c.CachedReverse(context.Background(), NewCache(8), geo.Coordinate{Lat: 1, Lng: 1}, 30*time.Millisecond)
	assert.Nil(t, got)
}

func TestCachedReverse_ProviderFailureYieldsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	got := c.CachedReverse(context.Background(), NewCache(8), geo.Coordinate{Lat: 1, Lng: 1}, time.Second)
	assert.Nil(t, got)
}
