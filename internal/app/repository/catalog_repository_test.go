package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/kicks-storefront/pkg/platzi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    map[string]int
	products []platzi.Product
	fail     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls: make(map[string]int),
		products: []platzi.Product{
			{ID: 1, Title: "Air Max", Price: 120},
			{ID: 2, Title: "Blazer", Price: 90},
		},
	}
}

func (f *fakeSource) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.fail
}

func (f *fakeSource) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSource) ListCategories(context.Context) ([]platzi.Category, error) {
	if err := f.hit("categories"); err != nil {
		return nil, err
	}
	return []platzi.Category{{ID: 1, Name: "Shoes"}}, nil
}

func (f *fakeSource) ListProducts(_ context.Context, _ platzi.ListParams) ([]platzi.Product, error) {
	if err := f.hit("products"); err != nil {
		return nil, err
	}
	return f.products, nil
}

func (f *fakeSource) GetProductByID(_ context.Context, id int) (*platzi.Product, error) {
	if err := f.hit("product"); err != nil {
		return nil, err
	}
	for _, p := range f.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, platzi.ErrNotFound
}

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func TestCatalogRepository_CachesWithinTTL(t *testing.T) {
	source := newFakeSource()
	clock := &manualClock{now: time.Now()}
	repo := newCatalogRepository(source, 5*time.Minute, clock.Now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		categories, err := repo.FindCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	}
	assert.Equal(t, 1, source.count("categories"))

	clock.now = clock.now.Add(6 * time.Minute)
	_, err := repo.FindCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, source.count("categories"))
}

func TestCatalogRepository_ProductPagesCachedSeparately(t *testing.T) {
	source := newFakeSource()
	repo := NewCatalogRepository(source, time.Minute)
	ctx := context.Background()

	_, err := repo.FindProducts(ctx, platzi.ListParams{Limit: 24})
	require.NoError(t, err)
	_, err = repo.FindProducts(ctx, platzi.ListParams{Limit: 24, CategoryID: 3})
	require.NoError(t, err)
	_, err = repo.FindProducts(ctx, platzi.ListParams{Limit: 24})
	require.NoError(t, err)

	assert.Equal(t, 2, source.count("products"))
	assert.Equal(t, 2, repo.CachedEntries())
}

func TestCatalogRepository_ErrorsAreNotCached(t *testing.T) {
	source := newFakeSource()
	source.fail = platzi.ErrNetwork
	repo := NewCatalogRepository(source, time.Minute)
	ctx := context.Background()

	_, err := repo.FindCategories(ctx)
	assert.True(t, errors.Is(err, platzi.ErrNetwork))

	source.fail = nil
	categories, err := repo.FindCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
	assert.Equal(t, 2, source.count("categories"))
}

func TestCatalogRepository_FreshBypassesCache(t *testing.T) {
	source := newFakeSource()
	repo := NewCatalogRepository(source, time.Minute)
	ctx := context.Background()

	_, err := repo.FindProductByID(ctx, 1)
	require.NoError(t, err)
	_, err = repo.FindProductByIDFresh(ctx, 1)
	require.NoError(t, err)
	_, err = repo.FindProductByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, source.count("product"))

	_, err = repo.FindProductByID(ctx, 99)
	assert.ErrorIs(t, err, platzi.ErrNotFound)
}

func TestCatalogRepository_ZeroTTLDisablesCache(t *testing.T) {
	source := newFakeSource()
	repo := NewCatalogRepository(source, 0)
	ctx := context.Background()

	_, _ = repo.FindCategories(ctx)
	_, _ = repo.FindCategories(ctx)
	assert.Equal(t, 2, source.count("categories"))
	assert.Equal(t, 0, repo.CachedEntries())
}

func TestCatalogRepository_Invalidate(t *testing.T) {
	source := newFakeSource()
	repo := NewCatalogRepository(source, time.Minute)
	ctx := context.Background()

	_, _ = repo.FindCategories(ctx)
	repo.Invalidate()
	assert.Equal(t, 0, repo.CachedEntries())
	_, _ = repo.FindCategories(ctx)
	assert.Equal(t, 2, source.count("categories"))
}
