package platzi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	for _, cfg := range []Config{
		{},
		{BaseURL: "not a url"},
		{BaseURL: "http://catalog.test", Timeout: -time.Second},
	} {
		_, err := NewClient(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestClient_ListCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Shoes","image":"https://img.test/shoes.png"},{"id":2,"name":"Clothes","image":""}]`))
	})

	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, Category{ID: 1, Name: "Shoes", Image: "https://img.test/shoes.png"}, categories[0])
}

func TestClient_ListProductsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "8", r.URL.Query().Get("offset"))
		assert.Equal(t, "4", r.URL.Query().Get("limit"))
		assert.Equal(t, "3", r.URL.Query().Get("categoryId"))
		_, _ = w.Write([]byte(`[{"id":7,"title":"Air Max","description":"Runner","price":120,"images":["/a.png"],"category":{"id":3,"name":"Shoes"}}]`))
	})

	products, err := client.ListProducts(context.Background(), ListParams{Offset: 8, Limit: 4, CategoryID: 3})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 7, products[0].ID)
	assert.Equal(t, 120.0, products[0].Price)
	assert.Equal(t, "Shoes", products[0].Category.Name)
}

func TestClient_ListProductsDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		assert.Equal(t, "24", r.URL.Query().Get("limit"))
		assert.False(t, r.URL.Query().Has("categoryId"))
		_, _ = w.Write([]byte(`[]`))
	})

	products, err := client.ListProducts(context.Background(), ListParams{Offset: -1})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestClient_GetProductByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/7":
			_, _ = w.Write([]byte(`{"id":7,"title":"Air Max","price":120,"images":["\"https://img.test/a.png\""]}`))
		case "/products/404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Could not find any entity"}`))
		}
	})

	product, err := client.GetProductByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Air Max", product.Title)
	assert.Equal(t, "https://img.test/a.png", product.PrimaryImage())

	_, err = client.GetProductByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetProductByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetProductByID(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListCategories(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"oops":`))
	})

	_, err := client.ListProducts(context.Background(), ListParams{})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.ListCategories(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestProduct_Images(t *testing.T) {
	p := Product{Images: []string{"  ", `["https://img.test/b.png"`, `"https://img.test/c.png"]`}}
	assert.Equal(t, PlaceholderImage, p.PrimaryImage())
	assert.Equal(t, []string{"https://img.test/b.png", "https://img.test/c.png"}, p.CleanImages())

	assert.Equal(t, PlaceholderImage, Product{}.PrimaryImage())
}
