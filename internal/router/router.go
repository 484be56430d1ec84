package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/kicks-storefront/config"
	"github.com/ikkim/kicks-storefront/internal/app/controller"
	apperrors "github.com/ikkim/kicks-storefront/internal/errors"
	"github.com/ikkim/kicks-storefront/internal/middleware"
)

type Router struct {
	catalogController *controller.CatalogController
	cartController    *controller.CartController
	scopeMiddleware   *middleware.ScopeMiddleware
	config            *config.Config
}

func NewRouter(
	catalogController *controller.CatalogController,
	cartController *controller.CartController,
	scopeMiddleware *middleware.ScopeMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		catalogController: catalogController,
		cartController:    cartController,
		scopeMiddleware:   scopeMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	middleware.SetupValidator()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "KICKS API is running",
		})
	})

	router.NoRoute(func(c *gin.Context) {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Not found")
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", r.catalogController.ListCategories)

		products := v1.Group("/products")
		{
			products.GET("", r.catalogController.ListProducts)
			products.GET("/:id", r.catalogController.GetProductByID)
		}

		cart := v1.Group("/cart")
		cart.Use(r.scopeMiddleware.Resolve())
		{
			cart.GET("", r.cartController.GetCart)
			cart.GET("/badge", r.cartController.GetBadge)
			cart.GET("/summary", r.cartController.GetSummary)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items/:product_id", r.cartController.UpdateCartItem)
			cart.DELETE("/items/:product_id", r.cartController.RemoveFromCart)
			cart.POST("/buy-now", r.cartController.BuyNow)
			cart.POST("/open", r.cartController.OpenCart)
			cart.GET("/export", r.cartController.ExportCart)
			cart.GET("/ws", r.cartController.WebSocketHandler)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
