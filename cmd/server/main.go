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

	"github.com/ikkim/kicks-storefront/config"
	"github.com/ikkim/kicks-storefront/internal/app/controller"
	"github.com/ikkim/kicks-storefront/internal/app/repository"
	"github.com/ikkim/kicks-storefront/internal/app/service"
	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/ikkim/kicks-storefront/internal/middleware"
	"github.com/ikkim/kicks-storefront/internal/router"
	"github.com/ikkim/kicks-storefront/internal/scheduler"
	"github.com/ikkim/kicks-storefront/internal/storage"
	ws "github.com/ikkim/kicks-storefront/internal/websocket"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/ikkim/kicks-storefront/pkg/platzi"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.LogLevel(),
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting KICKS storefront server", map[string]interface{}{
		"environment":    cfg.Server.Environment,
		"port":           cfg.Server.Port,
		"log_level":      cfg.LogLevel(),
		"storage_driver": cfg.Storage.Driver,
	})

	ctx := context.Background()

	// Cart storage
	backend, closeStorage, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open cart storage", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.Error("Failed to close cart storage", err)
		}
	}()

	persister := cart.NewPersister(backend, cfg.Cart.WriteTimeout)
	registry := cart.NewRegistry(backend, persister, cfg.Cart.StorageKey, cart.Options{
		FallbackPrice: cfg.Cart.FallbackPrice,
		LoadTimeout:   cfg.Cart.LoadTimeout,
		Logger:        logger.Get().Component("cart"),
	})

	// Catalog
	catalogClient, err := platzi.NewClient(platzi.Config{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog client", err)
	}
	catalogRepo := repository.NewCatalogRepository(catalogClient, cfg.Catalog.CacheTTL)

	// Services
	catalogService := service.NewCatalogService(catalogRepo)
	cartService := service.NewCartService(registry, catalogService, cfg.Cart.DeliveryFee)

	// Live cart updates
	hub := ws.NewHub()
	go hub.Run()

	// Controllers and router
	catalogController := controller.NewCatalogController(catalogService)
	cartController := controller.NewCartController(cartService, hub, cfg.CORS.AllowedOrigins)
	scopeMiddleware := middleware.NewScopeMiddleware(middleware.ScopeOptions{
		CookieName: cfg.Scope.CookieName,
		Secret:     cfg.Scope.Secret,
		MaxAge:     cfg.Scope.MaxAge,
		Secure:     cfg.Scope.Secure,
	})

	r := router.NewRouter(catalogController, cartController, scopeMiddleware, cfg)
	engine := r.Setup()

	// Scheduled jobs
	jobs := scheduler.NewScheduler(catalogService, registry, scheduler.Options{
		WarmSpec:    cfg.Catalog.WarmCron,
		WarmTimeout: cfg.Catalog.Timeout,
		EvictSpec:   cfg.Cart.EvictionCron,
		MaxIdle:     cfg.Cart.IdleEviction,
	})
	if err := jobs.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown did not complete", err)
	}
	jobs.Stop()
	hub.Stop()

	// pending cart writes must reach storage before it closes
	persister.Close()
	stats := persister.Stats()
	logger.Info("Server stopped successfully", map[string]interface{}{
		"cart_writes":        stats.Written,
		"cart_write_errors":  stats.Failed,
		"cart_sessions_open": registry.Len(),
	})
}
