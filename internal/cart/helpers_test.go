package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ikkim/kicks-storefront/internal/storage"
	"github.com/ikkim/kicks-storefront/pkg/logger"
)

const testKey = "scope:test:kicks_cart"

var errUnavailable = errors.New("storage unavailable")

// flakyBackend wraps a memory backend and fails on demand.
type flakyBackend struct {
	*storage.MemoryBackend
	mu       sync.Mutex
	failSet  bool
	failGet  bool
	setCalls int
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{MemoryBackend: storage.NewMemoryBackend()}
}

func (b *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	fail := b.failGet
	b.mu.Unlock()
	if fail {
		return nil, errUnavailable
	}
	return b.MemoryBackend.Get(ctx, key)
}

func (b *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	b.setCalls++
	fail := b.failSet
	b.mu.Unlock()
	if fail {
		return errUnavailable
	}
	return b.MemoryBackend.Set(ctx, key, value)
}

func (b *flakyBackend) setFailures(get, set bool) {
	b.mu.Lock()
	b.failGet, b.failSet = get, set
	b.mu.Unlock()
}

func newTestPersister(t *testing.T, backend storage.Backend) *Persister {
	t.Helper()
	p := NewPersister(backend, 0)
	t.Cleanup(p.Close)
	return p
}

func newTestStore(t *testing.T, backend storage.Backend, p *Persister) *Store {
	t.Helper()
	return NewStore(testKey, backend, p, Options{Logger: logger.New(discard{})})
}

func newReadyStore(t *testing.T) (*Store, *flakyBackend, *Persister) {
	t.Helper()
	backend := newFlakyBackend()
	p := newTestPersister(t, backend)
	s := newTestStore(t, backend, p)
	s.Load(context.Background())
	return s, backend, p
}

func fakeProduct() Product {
	return Product{
		ID:     gofakeit.IntRange(1, 10000),
		Title:  gofakeit.ProductName(),
		Price:  float64(gofakeit.IntRange(10, 500)),
		Images: []string{gofakeit.URL()},
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
