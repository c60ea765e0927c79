package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_shop/internal/auth"
	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/config"
	"github.com/fjod/go_shop/internal/events"
	shophttp "github.com/fjod/go_shop/internal/http"
	"github.com/fjod/go_shop/internal/inventory"
	"github.com/fjod/go_shop/internal/logger"
	"github.com/fjod/go_shop/internal/metrics"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/fjod/go_shop/internal/service"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "shop",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		log.Error("failed to connect to MongoDB", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = repository.EnsureIndexes(ctx, db)
	cancel()
	if err != nil {
		log.Error("failed to create indexes", slog.Any("err", err))
		os.Exit(1)
	}

	var cartCache cache.CartCache = cache.NopCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		cartCache = cache.NewRedisCache(redisClient)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = kp
	}

	reg := metrics.NewRegistry()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	ledger := inventory.NewMongoLedger(db)

	cartRepo := repository.NewMongoCartRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	favoriteRepo := repository.NewMongoFavoriteRepository(db)

	cartService := service.NewCartService(cartRepo, ledger, cartCache, log)
	checkoutService := service.NewCheckoutService(cartService, ledger, orderRepo, publisher, reg, log)
	orderService := service.NewOrderService(orderRepo, ledger, publisher, reg, log)
	productService := service.NewProductService(productRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, productRepo)
	authService := service.NewAuthService(userRepo, tokens)

	router := shophttp.NewRouter(shophttp.RouterConfig{
		Tokens:         tokens,
		RequestTimeout: cfg.RequestTimeout,
		MetricsHandler: reg.Handler(),
		Auth:           shophttp.NewAuthHandler(authService),
		Products:       shophttp.NewProductHandler(productService),
		Cart:           shophttp.NewCartHandler(cartService),
		Orders:         shophttp.NewOrderHandler(checkoutService, orderService),
		Favorites:      shophttp.NewFavoriteHandler(favoriteService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", slog.Any("err", err))
	}

	log.Info("server exited")
}
