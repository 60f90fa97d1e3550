package main

import (
	"context"
	"fmt"
	"log"
	"myPharmacyStore/app/echo-server/metrics"
	"myPharmacyStore/app/echo-server/router"
	"myPharmacyStore/business/cart"
	"myPharmacyStore/business/checkout"
	"myPharmacyStore/internal/middleware"
	"myPharmacyStore/internal/repository/memory"
	"myPharmacyStore/internal/repository/pharmacy"
	psqlRepo "myPharmacyStore/internal/repository/postgres"
	redisRepo "myPharmacyStore/internal/repository/redis"
	"myPharmacyStore/internal/rest"
	"myPharmacyStore/pkg/config"
	"myPharmacyStore/pkg/database"
	redisClient "myPharmacyStore/pkg/database/redis"
	"myPharmacyStore/pkg/logger"
	checkoutMetrics "myPharmacyStore/pkg/metrics"
	"myPharmacyStore/pkg/utils"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting MyPharmacyStore", "version", cfg.App.Version)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	metrics.Init()
	checkoutMetrics.Init()

	// Pharmacy backend
	pharmacyRepo := pharmacy.NewPharmacyRepository(
		pharmacy.PharmacyConfig{
			BaseURL: cfg.Backend.BaseURL,
			Timeout: cfg.Backend.Timeout,
		},
	)

	// Cart sessions live in Redis when configured
	var rdb *redis.Client
	var cartRepo interface {
		cart.CartRepository
		checkout.CartRepository
	}
	if cfg.Redis.RedisHost != "" {
		rdb, err = redisClient.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		cartRepo = redisRepo.NewCartRepository(rdb, cfg.Cart.TTL)
		logger.Info("Redis cart store connected", "host", cfg.Redis.RedisHost)
	} else {
		cartRepo = memory.NewCartRepository()
		logger.Warn("REDIS_HOST not set, carts are kept in memory")
	}

	// Checkout ledger is optional
	var ledgerRepo checkout.LedgerRepository
	if cfg.Database.Host != "" {
		db, err := database.InitPostgres(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		ledgerRepo = psqlRepo.NewCheckoutRepository(db)
		logger.Info("Database connected successfully")
	} else {
		logger.Warn("DB_HOST not set, checkout attempts are not recorded")
	}

	// Init service
	cartService := cart.NewCartService(cartRepo, pharmacyRepo)
	checkoutService := checkout.NewCheckoutService(cartRepo, pharmacyRepo, ledgerRepo, cfg.Cart.DefaultPaymentMethod)

	// Init handler
	cartHandler := rest.NewCartHandler(cartService)
	checkoutHandler := rest.NewCheckoutHandler(checkoutService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(metrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupCartRoutes(api, cartHandler, checkoutHandler, authRequired)
	router.SetupAdminRoutes(api, checkoutHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr, "backend", cfg.Backend.BaseURL)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisClient.CloseRedisClient(rdb); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	logger.Info("Server stopped")
}
