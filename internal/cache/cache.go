// Package cache provides a read-through TTL cache over a catalog client.
//
// Catalog data changes rarely while every storefront page view reads it, so
// successful responses are held for a configurable TTL. Failures and
// not-found results are never cached; concurrent misses for the same key are
// collapsed into a single upstream call.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/xenking/shopfront/internal/domain/catalog"
)

var _ catalog.Client = (*Client)(nil)

type entry[T any] struct {
	val     T
	expires time.Time
}

// Client decorates a catalog.Client with caching. Construct with New.
type Client struct {
	next catalog.Client
	ttl  time.Duration
	now  func() time.Time
	sf   singleflight.Group

	mu         sync.RWMutex
	products   *entry[[]catalog.Product]
	categories *entry[[]string]
	byID       map[int64]*entry[catalog.Product]
}

// New wraps next with a TTL cache.
func New(next catalog.Client, ttl time.Duration) *Client {
	return &Client{
		next: next,
		ttl:  ttl,
		now:  time.Now,
		byID: make(map[int64]*entry[catalog.Product]),
	}
}

// Products returns the cached product list, refreshing it from upstream when
// the entry is missing or expired.
func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	c.mu.RLock()
	e := c.products
	c.mu.RUnlock()
	if e != nil && c.now().Before(e.expires) {
		return copyProducts(e.val), nil
	}

	v, err, _ := c.sf.Do("products", func() (any, error) {
		c.mu.RLock()
		e := c.products
		c.mu.RUnlock()
		if e != nil && c.now().Before(e.expires) {
			return e.val, nil
		}

		list, err := c.next.Products(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.products = &entry[[]catalog.Product]{val: list, expires: c.now().Add(c.ttl)}
		// The list is authoritative for single lookups too.
		for _, p := range list {
			c.byID[p.ID] = &entry[catalog.Product]{val: p, expires: c.products.expires}
		}
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return copyProducts(v.([]catalog.Product)), nil
}

// ProductByID returns the cached product, fetching it upstream on a miss.
// Not-found errors pass through uncached.
func (c *Client) ProductByID(ctx context.Context, id int64) (*catalog.Product, error) {
	c.mu.RLock()
	e := c.byID[id]
	c.mu.RUnlock()
	if e != nil && c.now().Before(e.expires) {
		p := e.val
		return &p, nil
	}

	v, err, _ := c.sf.Do(fmt.Sprintf("product/%d", id), func() (any, error) {
		c.mu.RLock()
		e := c.byID[id]
		c.mu.RUnlock()
		if e != nil && c.now().Before(e.expires) {
			return e.val, nil
		}

		p, err := c.next.ProductByID(ctx, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.byID[id] = &entry[catalog.Product]{val: *p, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return *p, nil
	})
	if err != nil {
		return nil, err
	}
	p := v.(catalog.Product)
	return &p, nil
}

// Categories returns the cached category labels, refreshing on expiry.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	e := c.categories
	c.mu.RUnlock()
	if e != nil && c.now().Before(e.expires) {
		return append([]string(nil), e.val...), nil
	}

	v, err, _ := c.sf.Do("categories", func() (any, error) {
		c.mu.RLock()
		e := c.categories
		c.mu.RUnlock()
		if e != nil && c.now().Before(e.expires) {
			return e.val, nil
		}

		labels, err := c.next.Categories(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.categories = &entry[[]string]{val: labels, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return labels, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

func copyProducts(in []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(in))
	copy(out, in)
	return out
}
