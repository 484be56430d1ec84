package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/kicks-storefront/internal/app/service"
	apperrors "github.com/ikkim/kicks-storefront/internal/errors"
	"github.com/ikkim/kicks-storefront/internal/middleware"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

type ListProductsQuery struct {
	Offset   int    `form:"offset" binding:"omitempty,gte=0"`
	Limit    int    `form:"limit" binding:"omitempty,gte=1,lte=100"`
	Category int    `form:"category" binding:"omitempty,gte=1"`
	Query    string `form:"q"`
}

// ListCategories returns the catalog categories
// GET /api/v1/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch categories", err, nil)
		respondCatalogError(c, err, "categories")
		return
	}

	log.Info("Categories fetched successfully", map[string]interface{}{
		"count": len(categories),
	})

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// ListProducts returns one page of products
// GET /api/v1/products?offset=&limit=&category=&q=
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.Warn("Invalid product list query", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	products, err := ctrl.catalogService.ListProducts(c.Request.Context(), service.ProductListOptions{
		Offset:     query.Offset,
		Limit:      query.Limit,
		CategoryID: query.Category,
		Query:      query.Query,
	})
	if err != nil {
		log.Error("Failed to fetch products", err, map[string]interface{}{
			"offset":   query.Offset,
			"limit":    query.Limit,
			"category": query.Category,
		})
		respondCatalogError(c, err, "products")
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns a product with its size and color options
// GET /api/v1/products/:id
func (ctrl *CatalogController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parsePositiveID(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		log.Warn("Failed to fetch product", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		respondCatalogError(c, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// parsePositiveID reads a positive integer path parameter and writes the
// error response itself when it is not one.
func parsePositiveID(c *gin.Context, param string) (int, bool) {
	raw := c.Param(param)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID format", map[string]interface{}{
			"param": param,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+param)
		return 0, false
	}
	return id, true
}

func respondCatalogError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.CatalogProductNotFound, "The product could not be found")
	case errors.Is(err, service.ErrCatalogUnavailable):
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.CatalogUnavailable,
			"The catalog is unavailable. Please try again shortly")
	default:
		apperrors.RespondWithParsedError(c, err, context)
	}
}

func respondBindingError(c *gin.Context, err error) {
	if fields := apperrors.ValidationFields(err); len(fields) > 0 {
		apperrors.RespondWithValidationError(c, fields)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
}
