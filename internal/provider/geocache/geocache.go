// Package geocache memoizes provider responses per coordinate grid cell.
//
// Points that fall into the same cell share one entry, so a dashboard opened
// for two nearby cities costs one upstream call. Concurrent misses for a cell
// are collapsed into a single fetch that outlives any one caller: a caller
// that gives up stops waiting but does not cancel the fetch for the others.
// When a fetch fails, an entry that is past
// its TTL but still inside the stale window is served instead of the error.
package geocache

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const sweepInterval = 5 * time.Minute

// Recorder receives cache lookup outcomes.
type Recorder interface {
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// Config configures a Cache. Zero values fall back to the defaults below.
type Config struct {
	Provider  string
	Operation string

	// CellSize is the grid resolution in degrees (default 0.1, about 11km).
	CellSize float64
	TTL      time.Duration // default 10m
	StaleTTL time.Duration // measured from fetch time, default 1h

	// FetchTimeout bounds a shared fetch (default 30s).
	FetchTimeout time.Duration

	Metrics Recorder
	Logger  zerolog.Logger
}

// Stats describes the cache contents.
type Stats struct {
	Provider      string
	Entries       int
	FreshEntries  int
	LastFetchedAt time.Time
}

// FetchFunc loads the value for the cell containing a point.
type FetchFunc[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Cache is safe for concurrent use.
type Cache[V any] struct {
	cfg Config
	now func() time.Time

	mu        sync.RWMutex
	entries   map[string]entry[V]
	lastSweep time.Time

	flight singleflight.Group
}

// New returns an empty cache.
func New[V any](cfg Config) *Cache[V] {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 0.1
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.StaleTTL <= 0 {
		cfg.StaleTTL = time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.Operation == "" {
		cfg.Operation = "get"
	}
	return &Cache[V]{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

// ValidPoint reports whether lat/lon is a finite WGS84 coordinate.
func ValidPoint(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lon) &&
		lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Get returns the cached value for the point's cell, calling fetch on a miss.
func (c *Cache[V]) Get(ctx context.Context, lat, lon float64, fetch FetchFunc[V]) (V, error) {
	key := c.key(lat, lon)

	if v, ok := c.fresh(key); ok {
		c.record(true)
		return v, nil
	}
	c.record(false)
	return c.load(ctx, key, false, fetch)
}

// Refresh calls fetch even when the cell holds a fresh entry.
func (c *Cache[V]) Refresh(ctx context.Context, lat, lon float64, fetch FetchFunc[V]) (V, error) {
	return c.load(ctx, c.key(lat, lon), true, fetch)
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Stats returns a point-in-time view of the cache.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	s := Stats{Provider: c.cfg.Provider, Entries: len(c.entries)}
	for _, e := range c.entries {
		if now.Before(e.fetchedAt.Add(c.cfg.TTL)) {
			s.FreshEntries++
		}
		if e.fetchedAt.After(s.LastFetchedAt) {
			s.LastFetchedAt = e.fetchedAt
		}
	}
	return s
}

func (c *Cache[V]) fresh(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.fetchedAt.Add(c.cfg.TTL)) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// load runs fetch once per cell no matter how many callers are waiting.
// The fetch keeps the values of the starting caller's context but not its
// cancellation, and is bounded by FetchTimeout instead.
func (c *Cache[V]) load(ctx context.Context, key string, force bool, fetch FetchFunc[V]) (V, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		if !force {
			if v, ok := c.fresh(key); ok {
				return v, nil
			}
		}

		fctx, cancel := context.WithTimeout(detached, c.cfg.FetchTimeout)
		defer cancel()

		v, err := fetch(fctx)
		if err != nil {
			return c.stale(key, err)
		}
		c.store(key, v)
		return v, nil
	})

	var zero V
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache[V]) stale(key string, fetchErr error) (V, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.fetchedAt.Add(c.cfg.StaleTTL)) {
		var zero V
		return zero, fetchErr
	}

	c.cfg.Logger.Warn().
		Err(fetchErr).
		Str("provider", c.cfg.Provider).
		Str("cell", key).
		Time("fetched_at", e.fetchedAt).
		Msg("serving stale entry after provider error")
	return e.value, nil
}

func (c *Cache[V]) store(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry[V]{value: v, fetchedAt: now}

	if now.Sub(c.lastSweep) < sweepInterval {
		return
	}
	c.lastSweep = now

	swept := 0
	for k, e := range c.entries {
		if !now.Before(e.fetchedAt.Add(c.cfg.StaleTTL)) {
			delete(c.entries, k)
			swept++
		}
	}
	if swept > 0 {
		c.cfg.Logger.Debug().
			Str("provider", c.cfg.Provider).
			Int("swept", swept).
			Msg("dropped expired cache entries")
	}
}

func (c *Cache[V]) record(hit bool) {
	if c.cfg.Metrics == nil {
		return
	}
	if hit {
		c.cfg.Metrics.RecordCacheHit(c.cfg.Provider, c.cfg.Operation)
	} else {
		c.cfg.Metrics.RecordCacheMiss(c.cfg.Provider, c.cfg.Operation)
	}
}

// key names the grid cell containing the point.
func (c *Cache[V]) key(lat, lon float64) string {
	row := int64(math.Floor(lat / c.cfg.CellSize))
	col := int64(math.Floor(lon / c.cfg.CellSize))
	return fmt.Sprintf("%d:%d", row, col)
}
