package controller

import (
	"net/http"
	"strings"

	"github.com/deqistore/deqistore-backend/internal/app/service"
	apperrors "github.com/deqistore/deqistore-backend/internal/errors"
	"github.com/deqistore/deqistore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CatalogController serves the storefront home page data
type CatalogController struct {
	productService service.ProductService
}

func NewCatalogController(productService service.ProductService) *CatalogController {
	return &CatalogController{productService: productService}
}

// Home lists the catalog, filtered by ?search=
// GET /
func (ctrl *CatalogController) Home(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))

	products, err := ctrl.productService.Search(c.Request.Context(), search)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list catalog", err, map[string]interface{}{
			"search": search,
		})
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"filters": gin.H{
			"search": search,
		},
	})
}
