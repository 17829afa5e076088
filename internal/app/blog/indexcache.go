package blog

import (
	"context"
	"time"

	"github.com/dalemusser/inkwell/internal/app/system/feedcache"
	"github.com/dalemusser/inkwell/internal/app/system/paging"
)

// DefaultIndexTTL is how long a rendered global-feed page is reused.
const DefaultIndexTTL = 20 * time.Second

// IndexCache serves pages of the global feed from a short-lived cache.
// Writes never invalidate it: a new post shows up on the index once the
// cached page ages out.
type IndexCache struct {
	q     *Query
	pages *feedcache.Cache[int, paging.Page[Entry]]
	// last remembers the page count seen by the latest load, so requests
	// past the end resolve to the last page's entry.
	last *feedcache.Cache[struct{}, int]
}

// NewIndexCache caches q's global feed for ttl (DefaultIndexTTL if <= 0).
// A nil clock means the system clock.
func NewIndexCache(q *Query, ttl time.Duration, clock feedcache.Clock) *IndexCache {
	if ttl <= 0 {
		ttl = DefaultIndexTTL
	}
	return &IndexCache{
		q:     q,
		pages: feedcache.New[int, paging.Page[Entry]]("index", ttl, clock),
		last:  feedcache.New[struct{}, int]("index_bounds", ttl, clock),
	}
}

// GetCachedIndexPage returns page number of the global feed, computing and
// caching it when absent or expired. Entries are keyed by the page actually
// served: a number past the end shares the last page's entry.
func (c *IndexCache) GetCachedIndexPage(ctx context.Context, number int) (paging.Page[Entry], error) {
	if number < 1 {
		number = 1
	}
	if last, ok := c.last.Get(struct{}{}); ok && number > last {
		number = last
	}
	return c.pages.GetOrLoadAs(ctx, number, func(ctx context.Context) (int, paging.Page[Entry], error) {
		p, err := c.q.Page(ctx, c.q.ListAll(), number)
		if err != nil {
			return 0, p, err
		}
		c.last.Set(struct{}{}, p.NumPages)
		return p.Number, p, nil
	})
}

// Len reports how many pages are held, fresh or not.
func (c *IndexCache) Len() int { return c.pages.Len() }

// TTL reports the configured time-to-live.
func (c *IndexCache) TTL() time.Duration { return c.pages.TTL() }
