package service

import (
	"context"
	"errors"
	"slices"

	"github.com/ikkim/kicks-storefront/internal/app/model"
	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/ikkim/kicks-storefront/internal/events"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSize     = errors.New("size must be one of 38-47")
	ErrInvalidColor    = errors.New("color must be black or green")
	ErrEmptyCartBuyNow = errors.New("add an item to your cart before buying")
)

var (
	AvailableSizes  = []string{"38", "39", "40", "41", "42", "43", "44", "45", "46", "47"}
	AvailableColors = []string{"black", "green"}
)

// IsValidSize reports whether size is offered. Empty means the default.
func IsValidSize(size string) bool {
	return size == "" || slices.Contains(AvailableSizes, size)
}

// IsValidColor reports whether color is offered. Empty means the default.
func IsValidColor(color string) bool {
	return color == "" || slices.Contains(AvailableColors, color)
}

// AddToCartInput is one add-to-cart action from a product page.
type AddToCartInput struct {
	ProductID int
	Size      string
	Color     string
	Quantity  int
}

// SessionProvider opens the cart session of a shopper scope.
type SessionProvider interface {
	Open(ctx context.Context, scopeID string) *cart.Session
}

type CartService interface {
	Session(ctx context.Context, scopeID string) *cart.Session
	Badge(ctx context.Context, scopeID string) model.BadgeView
	Summary(ctx context.Context, scopeID string) model.CartSummaryView
	Page(ctx context.Context, scopeID string) model.CartPageView
	AddToCart(ctx context.Context, scopeID string, in AddToCartInput) (model.CartSummaryView, error)
	UpdateQuantity(ctx context.Context, scopeID string, productID int, size, color string, quantity int) model.CartPageView
	RemoveFromCart(ctx context.Context, scopeID string, productID int, size, color string) model.CartPageView
	// BuyNow adds in (when given) and returns the cart redirect.
	BuyNow(ctx context.Context, scopeID string, in *AddToCartInput) (*model.BuyNowResult, error)
	OpenCart(ctx context.Context, scopeID string) int
}

type cartService struct {
	sessions    SessionProvider
	catalog     CatalogService
	deliveryFee decimal.Decimal
}

func NewCartService(sessions SessionProvider, catalog CatalogService, deliveryFee float64) CartService {
	return &cartService{
		sessions:    sessions,
		catalog:     catalog,
		deliveryFee: decimal.NewFromFloat(deliveryFee),
	}
}

func (s *cartService) Session(ctx context.Context, scopeID string) *cart.Session {
	return s.sessions.Open(ctx, scopeID)
}

func (s *cartService) Badge(ctx context.Context, scopeID string) model.BadgeView {
	return BuildBadgeView(s.Session(ctx, scopeID).Store.Snapshot())
}

func (s *cartService) Summary(ctx context.Context, scopeID string) model.CartSummaryView {
	store := s.Session(ctx, scopeID).Store
	return BuildSummaryView(store.Snapshot(), store.FallbackPrice())
}

func (s *cartService) Page(ctx context.Context, scopeID string) model.CartPageView {
	store := s.Session(ctx, scopeID).Store
	return BuildCartPageView(store.Snapshot(), store.FallbackPrice(), s.deliveryFee)
}

func (s *cartService) AddToCart(ctx context.Context, scopeID string, in AddToCartInput) (model.CartSummaryView, error) {
	sess := s.Session(ctx, scopeID)
	if _, err := s.add(ctx, sess, in); err != nil {
		return model.CartSummaryView{}, err
	}

	sess.Events.Publish(events.TopicOpenCart)
	return BuildSummaryView(sess.Store.Snapshot(), sess.Store.FallbackPrice()), nil
}

func (s *cartService) add(ctx context.Context, sess *cart.Session, in AddToCartInput) (cart.State, error) {
	if !IsValidSize(in.Size) {
		return cart.State{}, ErrInvalidSize
	}
	if !IsValidColor(in.Color) {
		return cart.State{}, ErrInvalidColor
	}

	product, err := s.catalog.ProductSnapshot(ctx, in.ProductID)
	if err != nil {
		logger.Warn("Cannot add to cart: product unavailable", map[string]interface{}{
			"scope_id":   sess.ScopeID,
			"product_id": in.ProductID,
			"error":      err.Error(),
		})
		return cart.State{}, err
	}

	st := sess.Store.AddToCart(product, in.Size, in.Color, in.Quantity)
	logger.Info("Item added to cart", map[string]interface{}{
		"scope_id":   sess.ScopeID,
		"product_id": product.ID,
		"size":       in.Size,
		"color":      in.Color,
		"quantity":   in.Quantity,
		"count":      st.Count(),
	})
	return st, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, scopeID string, productID int, size, color string, quantity int) model.CartPageView {
	store := s.Session(ctx, scopeID).Store
	st := store.UpdateQuantity(productID, size, color, quantity)
	return BuildCartPageView(st, store.FallbackPrice(), s.deliveryFee)
}

func (s *cartService) RemoveFromCart(ctx context.Context, scopeID string, productID int, size, color string) model.CartPageView {
	store := s.Session(ctx, scopeID).Store
	st := store.RemoveFromCart(productID, size, color)
	return BuildCartPageView(st, store.FallbackPrice(), s.deliveryFee)
}

func (s *cartService) BuyNow(ctx context.Context, scopeID string, in *AddToCartInput) (*model.BuyNowResult, error) {
	sess := s.Session(ctx, scopeID)

	st := sess.Store.Snapshot()
	if in != nil {
		var err error
		if st, err = s.add(ctx, sess, *in); err != nil {
			return nil, err
		}
	}

	if st.IsEmpty() {
		logger.Info("Buy now refused on empty cart", map[string]interface{}{"scope_id": scopeID})
		return nil, ErrEmptyCartBuyNow
	}
	return &model.BuyNowResult{RedirectURL: CartPageURL, Count: st.Count()}, nil
}

// OpenCart asks the scope's summary views to open and returns how many listened.
func (s *cartService) OpenCart(ctx context.Context, scopeID string) int {
	return s.Session(ctx, scopeID).Events.Publish(events.TopicOpenCart)
}
