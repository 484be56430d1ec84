package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/kicks-storefront/internal/app/repository"
	"github.com/ikkim/kicks-storefront/internal/app/service"
	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/ikkim/kicks-storefront/internal/middleware"
	"github.com/ikkim/kicks-storefront/internal/storage"
	ws "github.com/ikkim/kicks-storefront/internal/websocket"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/ikkim/kicks-storefront/pkg/platzi"
	"github.com/stretchr/testify/require"
)

const testScopeID = "5f0c8a59-3f8e-4d0b-9a3c-6a1f7f0f6c21"

// stubSource serves a fixed catalog.
type stubSource struct {
	categories []platzi.Category
	products   []platzi.Product
	err        error
}

func (s *stubSource) ListCategories(context.Context) ([]platzi.Category, error) {
	return s.categories, s.err
}

func (s *stubSource) ListProducts(_ context.Context, params platzi.ListParams) ([]platzi.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []platzi.Product
	for _, p := range s.products {
		if params.CategoryID == 0 || p.Category.ID == params.CategoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubSource) GetProductByID(_ context.Context, id int) (*platzi.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, platzi.ErrNotFound
}

func newStubSource() *stubSource {
	shoes := platzi.Category{ID: 1, Name: "Shoes", Image: "https://img.test/shoes.png"}
	return &stubSource{
		categories: []platzi.Category{shoes, {ID: 2, Name: "Clothes", Image: `["https://img.test/c.png"]`}},
		products: []platzi.Product{
			{ID: 7, Title: "Air Runner", Description: "Light running shoe", Price: 120, Images: []string{"https://img.test/7.png"}, Category: shoes},
			{ID: 8, Title: "Trail Boot", Description: "Grippy", Price: 0, Category: shoes},
			{ID: 9, Title: "Hoodie", Description: "Warm", Price: 55.5, Category: platzi.Category{ID: 2, Name: "Clothes"}},
		},
	}
}

type testEnv struct {
	engine   *gin.Engine
	registry *cart.Registry
	source   *stubSource
	hub      *ws.Hub
}

func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	backend := storage.NewMemoryBackend()
	persister := cart.NewPersister(backend, time.Second)
	t.Cleanup(persister.Close)

	registry := cart.NewRegistry(backend, persister, "kicks_cart", cart.Options{
		FallbackPrice: cart.DefaultFallbackPrice,
		Logger:        logger.New(io.Discard),
	})

	source := newStubSource()
	catalogService := service.NewCatalogService(repository.NewCatalogRepository(source, 0))
	cartService := service.NewCartService(registry, catalogService, 6.99)

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	catalogController := NewCatalogController(catalogService)
	cartController := NewCartController(cartService, hub, []string{"http://localhost:3000"})

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.ScopeIDKey, testScopeID)
		c.Next()
	})

	v1 := engine.Group("/api/v1")
	v1.GET("/categories", catalogController.ListCategories)
	v1.GET("/products", catalogController.ListProducts)
	v1.GET("/products/:id", catalogController.GetProductByID)

	c := v1.Group("/cart")
	c.GET("", cartController.GetCart)
	c.GET("/badge", cartController.GetBadge)
	c.GET("/summary", cartController.GetSummary)
	c.POST("/items", cartController.AddToCart)
	c.PUT("/items/:product_id", cartController.UpdateCartItem)
	c.DELETE("/items/:product_id", cartController.RemoveFromCart)
	c.POST("/buy-now", cartController.BuyNow)
	c.POST("/open", cartController.OpenCart)
	c.GET("/export", cartController.ExportCart)

	return &testEnv{engine: engine, registry: registry, source: source, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
