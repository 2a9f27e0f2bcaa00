package unitcache

import (
	"context"
	"fmt"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/storage"
)

const (
	defaultMaxSize = 1000
	defaultTTL     = time.Minute
)

// Options tune the cache. Zero values fall back to defaults.
type Options struct {
	MaxSize int64
	TTL     time.Duration
}

func (o Options) normalized() Options {
	if o.MaxSize <= 0 {
		o.MaxSize = defaultMaxSize
	}
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	return o
}

// Cache is a read-through in-process cache in front of a storage.UnitStore.
// Unit lookups and unit counts are hit on every availability check and report,
// and change rarely. Not-found results are not cached.
type Cache struct {
	next   storage.UnitStore
	units  *ccache.Cache[booking.Unit]
	counts *ccache.Cache[int]
	ttl    time.Duration
}

var _ storage.UnitStore = (*Cache)(nil)

func New(next storage.UnitStore, opts Options) *Cache {
	opts = opts.normalized()
	return &Cache{
		next:   next,
		units:  ccache.New(ccache.Configure[booking.Unit]().MaxSize(opts.MaxSize)),
		counts: ccache.New(ccache.Configure[int]().MaxSize(opts.MaxSize)),
		ttl:    opts.TTL,
	}
}

func (c *Cache) FetchUnit(ctx context.Context, id string) (booking.Unit, error) {
	if item := c.units.Get(id); item != nil && !item.Expired() {
		return item.Value(), nil
	}

	u, err := c.next.FetchUnit(ctx, id)
	if err != nil {
		return booking.Unit{}, err
	}
	c.units.Set(id, u, c.ttl)
	return u, nil
}

func (c *Cache) FetchUnitCount(ctx context.Context, ownerScope string, activeOnly bool) (int, error) {
	key := fmt.Sprintf("%s|%t", ownerScope, activeOnly)
	if item := c.counts.Get(key); item != nil && !item.Expired() {
		return item.Value(), nil
	}

	n, err := c.next.FetchUnitCount(ctx, ownerScope, activeOnly)
	if err != nil {
		return 0, err
	}
	c.counts.Set(key, n, c.ttl)
	return n, nil
}

// Stop releases the cache's background workers.
func (c *Cache) Stop() {
	c.units.Stop()
	c.counts.Stop()
}
