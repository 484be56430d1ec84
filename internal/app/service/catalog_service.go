package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/kicks-storefront/internal/app/model"
	"github.com/ikkim/kicks-storefront/internal/app/repository"
	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/ikkim/kicks-storefront/pkg/platzi"
	"github.com/ikkim/kicks-storefront/pkg/util"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

type ProductListOptions struct {
	Offset     int
	Limit      int
	CategoryID int
	// Query filters by case-insensitive substring of title or description
	Query string
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.CategoryView, error)
	ListProducts(ctx context.Context, opts ProductListOptions) ([]model.ProductView, error)
	GetProduct(ctx context.Context, id int) (*model.ProductDetailView, error)
	// ProductSnapshot fetches the current catalog entry for adding to a cart.
	ProductSnapshot(ctx context.Context, id int) (cart.Product, error)
	WarmCache(ctx context.Context) error
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.CategoryView, error) {
	categories, err := s.repo.FindCategories(ctx)
	if err != nil {
		return nil, catalogError(err)
	}

	views := make([]model.CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView(c))
	}
	return views, nil
}

func (s *catalogService) ListProducts(ctx context.Context, opts ProductListOptions) ([]model.ProductView, error) {
	if opts.Limit <= 0 {
		opts.Limit = platzi.DefaultLimit
	}
	if opts.Offset < 0 {
		opts.Offset = platzi.DefaultOffset
	}

	products, err := s.repo.FindProducts(ctx, platzi.ListParams{
		Offset:     opts.Offset,
		Limit:      opts.Limit,
		CategoryID: opts.CategoryID,
	})
	if err != nil {
		return nil, catalogError(err)
	}

	query := normalizeText(opts.Query)
	views := make([]model.ProductView, 0, len(products))
	for _, p := range products {
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		views = append(views, productView(p))
	}

	logger.Debug("Products listed", map[string]interface{}{
		"offset":      opts.Offset,
		"limit":       opts.Limit,
		"category_id": opts.CategoryID,
		"query":       query,
		"count":       len(views),
	})
	return views, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int) (*model.ProductDetailView, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, catalogError(err)
	}

	return &model.ProductDetailView{
		ProductView:  productView(*product),
		Sizes:        append([]string(nil), AvailableSizes...),
		Colors:       append([]string(nil), AvailableColors...),
		DefaultSize:  cart.DefaultSize,
		DefaultColor: cart.DefaultColor,
	}, nil
}

func (s *catalogService) ProductSnapshot(ctx context.Context, id int) (cart.Product, error) {
	product, err := s.repo.FindProductByIDFresh(ctx, id)
	if err != nil {
		return cart.Product{}, catalogError(err)
	}
	return cart.Product{
		ID:     product.ID,
		Title:  product.Title,
		Price:  product.Price,
		Images: product.CleanImages(),
	}, nil
}

// WarmCache preloads categories and the default product page.
func (s *catalogService) WarmCache(ctx context.Context) error {
	if _, err := s.repo.FindCategories(ctx); err != nil {
		return catalogError(err)
	}
	if _, err := s.repo.FindProducts(ctx, platzi.ListParams{Offset: platzi.DefaultOffset, Limit: platzi.DefaultLimit}); err != nil {
		return catalogError(err)
	}
	return nil
}

func catalogError(err error) error {
	if errors.Is(err, platzi.ErrNotFound) {
		return ErrProductNotFound
	}
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchesQuery(p platzi.Product, query string) bool {
	return strings.Contains(normalizeText(p.Title), query) ||
		strings.Contains(normalizeText(p.Description), query)
}

func categoryView(c platzi.Category) model.CategoryView {
	image := platzi.CleanImageURL(c.Image)
	if image == "" {
		image = platzi.PlaceholderImage
	}
	return model.CategoryView{ID: c.ID, Name: c.Name, Image: image}
}

func productView(p platzi.Product) model.ProductView {
	price := decimal.NewFromFloat(p.Price)
	return model.ProductView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       price,
		PriceLabel:  util.FormatWholePrice(price),
		Image:       p.PrimaryImage(),
		Images:      p.CleanImages(),
		Category:    categoryView(p.Category),
	}
}
