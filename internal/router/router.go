package router

import (
	"net/http"

	"github.com/deqistore/deqistore-backend/config"
	"github.com/deqistore/deqistore-backend/internal/app/controller"
	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	catalogController  *controller.CatalogController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	flashController    *controller.FlashController
	productController  *controller.ProductController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
	// imageDir is served under the public storage URL; empty when images live in S3
	imageDir string
}

func NewRouter(
	catalogController *controller.CatalogController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	flashController *controller.FlashController,
	productController *controller.ProductController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
	imageDir string,
) *Router {
	return &Router{
		catalogController:  catalogController,
		cartController:     cartController,
		checkoutController: checkoutController,
		flashController:    flashController,
		productController:  productController,
		authMiddleware:     authMiddleware,
		config:             cfg,
		imageDir:           imageDir,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "DeqiStore API is running",
		})
	})

	if r.imageDir != "" {
		router.Static(r.config.Storage.PublicBaseURL, r.imageDir)
	}

	router.GET("/", r.authMiddleware.OptionalAuthenticate(), r.catalogController.Home)

	user := router.Group("")
	user.Use(r.authMiddleware.Authenticate())
	{
		user.GET("/cart", r.cartController.GetCart)
		user.POST("/cart", r.cartController.AddToCart)
		user.GET("/cart/count", r.cartController.GetCount)
		user.DELETE("/cart/:id", r.cartController.RemoveFromCart)
		user.GET("/checkout", r.checkoutController.GetCheckout)
		user.GET("/flash", r.flashController.GetFlash)
	}

	products := router.Group("/products")
	products.Use(
		r.authMiddleware.Authenticate(),
		r.authMiddleware.RequireRole(model.RoleAdmin),
	)
	{
		products.GET("", r.productController.GetAllProducts)
		products.GET("/export", r.productController.ExportProducts)
		products.GET("/:id", r.productController.GetProductByID)
		products.POST("", r.productController.CreateProduct)
		products.PUT("/:id", r.productController.UpdateProduct)
		products.DELETE("/:id", r.productController.DeleteProduct)
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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Request-ID, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
