package neows

import (
	"context"
	"time"

	"github.com/couchcryptid/impact-sim-service/internal/cache"
	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

const cacheName = "catalog"

// CachedCatalog wraps a Catalog with LRU caches whose entries expire after a
// TTL, since close-approach data is revised over time.
type CachedCatalog struct {
	inner   domain.Catalog
	records *cache.LRU[string, domain.CatalogRecord]
	feeds   *cache.LRU[string, []domain.CatalogRecord]
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedCatalog creates a cache decorator around a catalog.
func NewCachedCatalog(inner domain.Catalog, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedCatalog {
	return newCachedCatalog(inner, maxEntries, ttl, clockwork.NewRealClock(), metrics)
}

func newCachedCatalog(inner domain.Catalog, maxEntries int, ttl time.Duration, clk clockwork.Clock, metrics *observability.Metrics) *CachedCatalog {
	feedEntries := maxEntries / 10
	if feedEntries < 1 {
		feedEntries = 1
	}
	return &CachedCatalog{
		inner:   inner,
		records: cache.New[string, domain.CatalogRecord](maxEntries, cache.WithTTL(ttl), cache.WithClock(clk)),
		feeds:   cache.New[string, []domain.CatalogRecord](feedEntries, cache.WithTTL(ttl), cache.WithClock(clk)),
		clock:   clk,
		metrics: metrics,
	}
}

// Lookup returns a cached record or fetches and caches it.
func (c *CachedCatalog) Lookup(ctx context.Context, id string) (domain.CatalogRecord, error) {
	if rec, ok := c.records.Get(id); ok {
		c.metrics.ObserveCache(cacheName, true)
		return rec, nil
	}
	c.metrics.ObserveCache(cacheName, false)

	rec, err := c.inner.Lookup(ctx, id)
	if err != nil {
		return rec, err
	}
	c.records.Put(id, rec)
	return rec, nil
}

// Feed returns a cached feed window or fetches it. A zero start resolves to
// today so that the default window is keyed by its date.
func (c *CachedCatalog) Feed(ctx context.Context, start, end time.Time) ([]domain.CatalogRecord, error) {
	if start.IsZero() {
		start = truncateDay(c.clock.Now().UTC())
	}
	key := start.Format(dateLayout) + "|"
	if !end.IsZero() {
		key += end.Format(dateLayout)
	}

	if recs, ok := c.feeds.Get(key); ok {
		c.metrics.ObserveCache(cacheName, true)
		return recs, nil
	}
	c.metrics.ObserveCache(cacheName, false)

	recs, err := c.inner.Feed(ctx, start, end)
	if err != nil {
		return nil, err
	}
	c.feeds.Put(key, recs)
	return recs, nil
}
