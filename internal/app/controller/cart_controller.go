package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gorilla/websocket"
	"github.com/ikkim/kicks-storefront/internal/app/service"
	apperrors "github.com/ikkim/kicks-storefront/internal/errors"
	"github.com/ikkim/kicks-storefront/internal/middleware"
	"github.com/ikkim/kicks-storefront/internal/sheet"
	ws "github.com/ikkim/kicks-storefront/internal/websocket"
)

type CartController struct {
	cartService service.CartService
	hub         *ws.Hub
	upgrader    websocket.Upgrader
}

func NewCartController(cartService service.CartService, hub *ws.Hub, allowedOrigins []string) *CartController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &CartController{
		cartService: cartService,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

type AddToCartRequest struct {
	ProductID int    `json:"product_id" binding:"required,gt=0"`
	Size      string `json:"size" binding:"omitempty,cart_size"`
	Color     string `json:"color" binding:"omitempty,cart_color"`
	Quantity  int    `json:"quantity" binding:"omitempty,gte=1,lte=99"`
}

func (r AddToCartRequest) input() service.AddToCartInput {
	quantity := r.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return service.AddToCartInput{
		ProductID: r.ProductID,
		Size:      r.Size,
		Color:     r.Color,
		Quantity:  quantity,
	}
}

// Quantity below 1 is accepted and clamped to 1.
type UpdateCartItemRequest struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity *int   `json:"quantity" binding:"required,lte=99"`
}

type RemoveCartItemQuery struct {
	Size  string `form:"size"`
	Color string `form:"color"`
}

// GetCart returns the full cart page
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	scopeID, ok := requireScope(c)
	if !ok {
		return
	}

	page := ctrl.cartService.Page(c.Request.Context(), scopeID)

	middleware.GetLoggerFromContext(c).Debug("Cart fetched", map[string]interface{}{
		"scope_id": scopeID,
		"count":    page.Count,
	})

	c.JSON(http.StatusOK, gin.H{"cart": page})
}

// GetBadge returns the header badge
// GET /api/v1/cart/badge
func (ctrl *CartController) GetBadge(c *gin.Context) {
	scopeID, ok := requireScope(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"badge": ctrl.cartService.Badge(c.Request.Context(), scopeID)})
}

// GetSummary returns the popover summary
// GET /api/v1/cart/summary
func (ctrl *CartController) GetSummary(c *gin.Context) {
	scopeID, ok := requireScope(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": ctrl.cartService.Summary(c.Request.Context(), scopeID)})
}

// AddToCart adds a product and asks the scope's summary views to open
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	scopeID, ok := requireScope(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"scope_id": scopeID,
			"error":    err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	summary, err := ctrl.cartService.AddToCart(c.Request.Context(), scopeID, req.input())
	if err != nil {
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"summary": summary,
	})
}

// UpdateCartItem sets the quantity of one line
// PUT /api/v1/cart/items/:product_id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	scopeID, ok := requireScope(c)
	if !ok {
		return
	}
	productID, ok := parsePositiveID(c, "product_id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"scope_id": scopeID,
			"error":    err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	page := ctrl.cartService.UpdateQuantity(c.Request.Context(), scopeID, productID, req.Size, req.Color, *req.Quantity)

	log.Info("Cart item updated", map[string]interface{}{
		"scope_id":   scopeID,
		"product_id": productID,
		"quantity":   *req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{"cart": page})
}

// RemoveFromCart removes one line
// DELETE /api/v1/cart/items/:product_id?size=&color=
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	scopeID, ok := requireScope(c)
	if !ok {
		return
	}
	productID, ok := parsePositiveID(c, "product_id")
	if !ok {
		return
	}

	var query RemoveCartItemQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	page := ctrl.cartService.RemoveFromCart(c.Request.Context(), scopeID, productID, query.Size, query.Color)

	log.Info("Cart item removed", map[string]interface{}{
		"scope_id":   scopeID,
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{"cart": page})
}

// BuyNow optionally adds the posted item, then redirects to the cart
// POST /api/v1/cart/buy-now
func (ctrl *CartController) BuyNow(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	scopeID, ok := requireScope(c)
	if !ok {
		return
	}

	var in *service.AddToCartInput
	if c.Request.ContentLength > 0 {
		var req AddToCartRequest
		if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
			log.Warn("Invalid buy now request", map[string]interface{}{
				"scope_id": scopeID,
				"error":    err.Error(),
			})
			respondBindingError(c, err)
			return
		}
		input := req.input()
		in = &input
	}

	result, err := ctrl.cartService.BuyNow(c.Request.Context(), scopeID, in)
	if err != nil {
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"redirect_url": result.RedirectURL,
		"count":        result.Count,
	})
}

// OpenCart asks every summary view of the scope to open
// POST /api/v1/cart/open
func (ctrl *CartController) OpenCart(c *gin.Context) {
	scopeID, ok := requireScope(c)
	if !ok {
		return
	}
	listeners := ctrl.cartService.OpenCart(c.Request.Context(), scopeID)
	c.JSON(http.StatusOK, gin.H{"listeners": listeners})
}

// ExportCart downloads the cart as a spreadsheet
// GET /api/v1/cart/export
func (ctrl *CartController) ExportCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	scopeID, ok := requireScope(c)
	if !ok {
		return
	}

	store := ctrl.cartService.Session(c.Request.Context(), scopeID).Store
	st := store.Snapshot()

	var buf bytes.Buffer
	if err := sheet.WriteCart(&buf, st.Items, store.FallbackPrice()); err != nil {
		log.Error("Failed to export cart", err, map[string]interface{}{
			"scope_id": scopeID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.CartExportFailed,
			"Failed to export the cart. Please try again later")
		return
	}

	fileName := fmt.Sprintf("kicks-cart-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, sheet.ContentType, buf.Bytes())
}

// WebSocketHandler streams cart updates and open requests of the scope
// GET /api/v1/cart/ws
func (ctrl *CartController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	scopeID, ok := requireScope(c)
	if !ok {
		return
	}

	sess := ctrl.cartService.Session(c.Request.Context(), scopeID)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, conn, sess)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"scope_id": scopeID,
	})
}

func requireScope(c *gin.Context) (string, bool) {
	scopeID, ok := middleware.GetScopeID(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Error("Request reached cart without a scope", nil)
		apperrors.InternalError(c, "")
		return "", false
	}
	return scopeID, true
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSize):
		apperrors.BadRequest(c, apperrors.CartInvalidSize, err.Error())
	case errors.Is(err, service.ErrInvalidColor):
		apperrors.BadRequest(c, apperrors.CartInvalidColor, err.Error())
	case errors.Is(err, service.ErrEmptyCartBuyNow):
		apperrors.Conflict(c, apperrors.CartEmpty, "Your cart is empty. Add an item before buying")
	default:
		respondCatalogError(c, err, "product")
	}
}
