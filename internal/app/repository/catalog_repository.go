package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/ikkim/kicks-storefront/pkg/platzi"
)

// CatalogSource is the remote catalog. *platzi.Client satisfies it.
type CatalogSource interface {
	ListCategories(ctx context.Context) ([]platzi.Category, error)
	ListProducts(ctx context.Context, params platzi.ListParams) ([]platzi.Product, error)
	GetProductByID(ctx context.Context, id int) (*platzi.Product, error)
}

// CatalogRepository reads the catalog through a TTL cache.
type CatalogRepository interface {
	FindCategories(ctx context.Context) ([]platzi.Category, error)
	FindProducts(ctx context.Context, params platzi.ListParams) ([]platzi.Product, error)
	FindProductByID(ctx context.Context, id int) (*platzi.Product, error)
	// FindProductByIDFresh bypasses the cache and refreshes the entry.
	FindProductByIDFresh(ctx context.Context, id int) (*platzi.Product, error)
	Invalidate()
	CachedEntries() int
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

type catalogRepository struct {
	source CatalogSource
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCatalogRepository caches source responses for ttl. A zero ttl disables caching.
func NewCatalogRepository(source CatalogSource, ttl time.Duration) CatalogRepository {
	return newCatalogRepository(source, ttl, time.Now)
}

func newCatalogRepository(source CatalogSource, ttl time.Duration, now func() time.Time) *catalogRepository {
	return &catalogRepository{
		source: source,
		ttl:    ttl,
		now:    now,
		cache:  make(map[string]cacheEntry),
	}
}

func (r *catalogRepository) FindCategories(ctx context.Context) ([]platzi.Category, error) {
	v, err := r.cached("categories", func() (interface{}, error) {
		return r.source.ListCategories(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]platzi.Category), nil
}

func (r *catalogRepository) FindProducts(ctx context.Context, params platzi.ListParams) ([]platzi.Product, error) {
	key := fmt.Sprintf("products:%d:%d:%d", params.Offset, params.Limit, params.CategoryID)
	v, err := r.cached(key, func() (interface{}, error) {
		return r.source.ListProducts(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return v.([]platzi.Product), nil
}

func (r *catalogRepository) FindProductByID(ctx context.Context, id int) (*platzi.Product, error) {
	v, err := r.cached(productKey(id), func() (interface{}, error) {
		return r.source.GetProductByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*platzi.Product), nil
}

func (r *catalogRepository) FindProductByIDFresh(ctx context.Context, id int) (*platzi.Product, error) {
	product, err := r.source.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(productKey(id), product)
	return product, nil
}

func (r *catalogRepository) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]cacheEntry)
	r.mu.Unlock()
}

func (r *catalogRepository) CachedEntries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// cached returns a live entry or calls load. Errors are never cached.
func (r *catalogRepository) cached(key string, load func() (interface{}, error)) (interface{}, error) {
	r.mu.Lock()
	entry, ok := r.cache[key]
	if ok && r.now().Before(entry.expiresAt) {
		r.mu.Unlock()
		return entry.value, nil
	}
	if ok {
		delete(r.cache, key)
	}
	r.mu.Unlock()

	value, err := load()
	if err != nil {
		logger.Warn("Catalog request failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, err
	}
	r.store(key, value)
	return value, nil
}

func (r *catalogRepository) store(key string, value interface{}) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	r.cache[key] = cacheEntry{value: value, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}
