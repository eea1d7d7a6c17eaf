package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deqistore/deqistore-backend/config"
	"github.com/deqistore/deqistore-backend/internal/app/controller"
	"github.com/deqistore/deqistore-backend/internal/app/repository"
	"github.com/deqistore/deqistore-backend/internal/app/service"
	"github.com/deqistore/deqistore-backend/internal/cache"
	"github.com/deqistore/deqistore-backend/internal/db"
	"github.com/deqistore/deqistore-backend/internal/flash"
	"github.com/deqistore/deqistore-backend/internal/middleware"
	"github.com/deqistore/deqistore-backend/internal/router"
	"github.com/deqistore/deqistore-backend/internal/storage"
	"github.com/deqistore/deqistore-backend/pkg/logger"
	"github.com/deqistore/deqistore-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting DeqiStore Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Flash messages and the cart count cache live in Redis when configured
	var (
		flashes    flash.Store = flash.NewMemoryStore()
		countCache []cache.CountCache
	)
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer redis.Close()

		flashes = flash.NewRedisStore(redis.GetClient(), cfg.Redis.FlashTTL)
		countCache = append(countCache, cache.NewRedisCountCache(redis.GetClient(), cfg.Redis.CountTTL))
	} else {
		logger.Warn("REDIS_ADDR not set, flash messages are kept in memory and cart counts are not cached")
	}

	images, imageDir, err := newImageStore(&cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize image storage", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())

	// Initialize services
	productService := service.NewProductService(productRepo, images, cfg.Storage.MaxImageBytes, countCache...)
	cartService := service.NewCartService(cartRepo, productRepo, images, countCache...)
	checkoutService := service.NewCheckoutService(cartService)

	// Initialize controllers
	respond := controller.NewResponder(flashes)
	catalogController := controller.NewCatalogController(productService)
	cartController := controller.NewCartController(cartService, respond)
	checkoutController := controller.NewCheckoutController(checkoutService, respond)
	flashController := controller.NewFlashController(respond)
	productController := controller.NewProductController(productService, respond)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		catalogController,
		cartController,
		checkoutController,
		flashController,
		productController,
		authMiddleware,
		cfg,
		imageDir,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

// newImageStore returns the configured backend and, for local storage, the
// directory the router should serve.
func newImageStore(cfg *config.StorageConfig) (storage.ImageStore, string, error) {
	switch cfg.Backend {
	case config.StorageS3:
		s3, err := storage.NewS3Storage(
			context.Background(),
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
		if err != nil {
			return nil, "", err
		}
		return s3, "", nil
	default:
		local, err := storage.NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return local, local.Root(), nil
	}
}
