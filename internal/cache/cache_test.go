package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shopfront/internal/domain/catalog"
)

type stubCatalog struct {
	mu            sync.Mutex
	products      []catalog.Product
	categories    []string
	err           error
	productCalls  atomic.Int64
	byIDCalls     atomic.Int64
	categoryCalls atomic.Int64
	block         chan struct{} // when set, Products blocks until closed
}

func (s *stubCatalog) Products(context.Context) ([]catalog.Product, error) {
	s.productCalls.Add(1)
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products, s.err
}

func (s *stubCatalog) ProductByID(_ context.Context, id int64) (*catalog.Product, error) {
	s.byIDCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *stubCatalog) Categories(context.Context) ([]string, error) {
	s.categoryCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories, s.err
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Lamp", Price: decimal.RequireFromString("10.00"), Category: "home"},
		{ID: 2, Title: "Mug", Price: decimal.RequireFromString("5.00"), Category: "kitchen"},
	}
}

func TestProducts_ServedFromCacheWithinTTL(t *testing.T) {
	stub := &stubCatalog{products: testProducts()}
	c := New(stub, time.Minute)

	ctx := context.Background()
	for range 3 {
		got, err := c.Products(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}

	assert.Equal(t, int64(1), stub.productCalls.Load())
}

func TestProducts_RefreshesAfterExpiry(t *testing.T) {
	stub := &stubCatalog{products: testProducts()}
	c := New(stub, time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }

	ctx := context.Background()
	_, err := c.Products(ctx)
	require.NoError(t, err)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = c.Products(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stub.productCalls.Load())
}

func TestProducts_ErrorsAreNotCached(t *testing.T) {
	stub := &stubCatalog{err: errors.New("catalog down")}
	c := New(stub, time.Minute)

	ctx := context.Background()
	_, err := c.Products(ctx)
	require.Error(t, err)
	_, err = c.Products(ctx)
	require.Error(t, err)

	assert.Equal(t, int64(2), stub.productCalls.Load())
}

func TestProducts_ConcurrentMissesCollapse(t *testing.T) {
	stub := &stubCatalog{products: testProducts(), block: make(chan struct{})}
	c := New(stub, time.Minute)

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			_, _ = c.Products(context.Background())
		}()
	}

	// Let the goroutines pile up on the singleflight, then release.
	time.Sleep(50 * time.Millisecond)
	close(stub.block)
	wg.Wait()

	assert.Equal(t, int64(1), stub.productCalls.Load())
}

func TestProducts_ListSeedsSingleLookups(t *testing.T) {
	stub := &stubCatalog{products: testProducts()}
	c := New(stub, time.Minute)

	ctx := context.Background()
	_, err := c.Products(ctx)
	require.NoError(t, err)

	p, err := c.ProductByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Title)
	assert.Equal(t, int64(0), stub.byIDCalls.Load())
}

func TestProductByID_NotFoundPassesThrough(t *testing.T) {
	stub := &stubCatalog{products: testProducts()}
	c := New(stub, time.Minute)

	ctx := context.Background()
	_, err := c.ProductByID(ctx, 999)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	// Not cached: the next call hits upstream again.
	_, err = c.ProductByID(ctx, 999)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, int64(2), stub.byIDCalls.Load())
}

func TestCategories_Cached(t *testing.T) {
	stub := &stubCatalog{categories: []string{"home", "kitchen"}}
	c := New(stub, time.Minute)

	ctx := context.Background()
	for range 3 {
		got, err := c.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"home", "kitchen"}, got)
	}

	assert.Equal(t, int64(1), stub.categoryCalls.Load())
}

func TestProducts_CallerMutationDoesNotPoisonCache(t *testing.T) {
	stub := &stubCatalog{products: testProducts()}
	c := New(stub, time.Minute)

	ctx := context.Background()
	first, err := c.Products(ctx)
	require.NoError(t, err)
	first[0].Title = "mutated"

	second, err := c.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", second[0].Title)
}
