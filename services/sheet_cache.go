package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gino-rizzo/ginos-pizza-api/models"
)

// DefaultCacheWindow is how long a snapshot is served without re-fetching
const DefaultCacheWindow = 30 * time.Second

// Snapshot is one parsed read of the live tab. Orders and Columns always
// come from the same fetch, so mutation writes computed against a snapshot
// address the columns that were actually present when it was taken.
type Snapshot struct {
	Orders  []models.Order
	Columns *ColumnMap
}

// FetchFunc reads and parses the entire live tab
type FetchFunc func(ctx context.Context) ([]models.Order, *ColumnMap, error)

// SheetCache serves recent order snapshots without hitting the sheet on
// every request. Concurrent callers that need a fetch share one in-flight
// external read (single-flight); there are never two simultaneous fetches.
type SheetCache struct {
	fetch  FetchFunc
	window time.Duration
	now    func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	snapshot  Snapshot
	fetchedAt time.Time
	valid     bool
}

// NewSheetCache creates a cache around fetch with the given freshness window
func NewSheetCache(fetch FetchFunc, window time.Duration) *SheetCache {
	if window <= 0 {
		window = DefaultCacheWindow
	}
	return &SheetCache{
		fetch:  fetch,
		window: window,
		now:    time.Now,
	}
}

// SetNowFunc replaces the cache's clock (primarily for testing)
func (c *SheetCache) SetNowFunc(now func() time.Time) {
	c.now = now
}

// Get returns the cached snapshot when it is still inside the window and
// force is false; otherwise it fetches. A fetch already in flight is joined
// rather than duplicated, regardless of force.
func (c *SheetCache) Get(ctx context.Context, force bool) (Snapshot, error) {
	c.mu.Lock()
	if !force && c.valid && c.now().Sub(c.fetchedAt) < c.window {
		snap := c.snapshot
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("live-tab", func() (interface{}, error) {
		orders, cols, err := c.fetch(ctx)
		if err != nil {
			// Leave the previous state untouched: an expired snapshot is
			// never silently served as fresh, and the next Get retries.
			return nil, err
		}
		snap := Snapshot{Orders: orders, Columns: cols}
		c.mu.Lock()
		c.snapshot = snap
		c.fetchedAt = c.now()
		c.valid = true
		c.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Invalidate drops the cached snapshot so the next Get fetches regardless
// of elapsed time. Called after every successful mutation and after an
// archival sweep.
func (c *SheetCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = Snapshot{}
	c.fetchedAt = time.Time{}
	c.valid = false
	c.mu.Unlock()
}
