package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/clients"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/events"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/handlers"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/repository"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/server"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()
	logging.SetGlobalLevel(cfg.LogLevel)

	logger := logging.NewLogger("checkout-service")
	logger.Info("Starting checkout-service", logging.Fields{"port": cfg.Server.Port})

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	catalogStore := repository.NewPostgresCatalogStore(db)
	couponLedger := repository.NewPostgresCouponLedger(db)
	orderStore := repository.NewPostgresOrderStore(db)

	var catalog repository.CatalogStore = catalogStore
	var cache *repository.CachedCatalogStore
	if cfg.Features.EnableCatalogCache {
		cache = repository.NewCachedCatalogStore(catalogStore, cfg.Redis)
		catalog = cache
	}

	limiter := service.NewRateLimiter(
		repository.NewRedisRateLimitStore(cfg.Redis),
		repository.NewLocalRateLimitStore(),
		cfg.RateLimit,
	)

	var guard repository.IdempotencyGuard
	if cfg.Features.EnableIdempotencyGuard {
		guard = repository.NewRedisIdempotencyGuard(cfg.Redis)
	}

	userClient := clients.NewHTTPUserClient(cfg.UserService)
	notificationClient := clients.NewHTTPNotificationClient(cfg.NotificationService)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka)
	defer eventPublisher.Close()

	pricing := service.NewPriceValidator(catalog, couponLedger, cfg.Pricing)

	var invalidator service.CatalogInvalidator
	if cache != nil {
		invalidator = cache
	}

	checkoutService := service.NewCheckoutService(
		orderStore,
		couponLedger,
		pricing,
		limiter,
		guard,
		userClient,
		notificationClient,
		eventPublisher,
		invalidator,
		cfg,
	)

	h := handlers.NewHandlers(checkoutService, cfg)
	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":              cfg.Server.Port,
			"order_events":      cfg.Features.EnableOrderEvents,
			"idempotency_guard": cfg.Features.EnableIdempotencyGuard,
			"catalog_cache":     cfg.Features.EnableCatalogCache,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	// Payment confirmations arrive on the payments topic.
	eventConsumer := events.NewKafkaConsumer(cfg.Kafka, checkoutService)
	go func() {
		if err := eventConsumer.Start(context.Background()); err != nil && err != context.Canceled {
			logger.Error("Payment event consumer failed", logging.Fields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eventConsumer.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
