package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/broker"
	"storefront/internal/catalog"
	"storefront/internal/redisclient"
	"storefront/internal/service"
	"storefront/internal/shop"
	"storefront/internal/store"
	"storefront/internal/util"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront", zap.String("env", cfg.Server.Env))

	shutdownTracer, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint, cfg.Observ.TracingEnabled)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	products, err := catalog.Load()
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.Int("products", products.Len()))

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer closeStore()
	logger.Info("Store ready", zap.String("backend", cfg.Storage.Backend))

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var (
		factories []service.SubscriberFactory
		publisher service.CheckoutPublisher
		activity  *worker.ActivityWorker
	)
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicShop)
		defer producer.Close()
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicShop))

		eventPublisher := broker.NewEventPublisher(producer)
		factories = append(factories, func(sessionID string) shop.Subscriber {
			return eventPublisher.ForSession(sessionID)
		})
		publisher = eventPublisher

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicShop, cfg.Kafka.ConsumerGroup)
		activity = worker.NewActivityWorker(consumer)
		go func() {
			if err := activity.Start(workerCtx); err != nil {
				logger.Error("Activity worker error", zap.Error(err))
			}
		}()
	}

	sessions := service.NewSessionRegistry(kv, cfg.Storage.CartKey, cfg.Storage.WishlistKey, factories...)
	go sessions.RunEviction(workerCtx, 10*time.Minute, time.Hour)

	checkout := service.NewCheckoutService(service.Pricing{
		FreeShippingThreshold: cfg.Business.FreeShippingThreshold,
		ShippingFee:           cfg.Business.ShippingFee,
		TaxRate:               cfg.Business.TaxRate,
	}, cfg.Business.CheckoutDelay, publisher)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(products, sessions, checkout, cfg.Business.PageSize)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if activity != nil {
		if err := activity.Stop(); err != nil {
			logger.Error("Error stopping activity worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// openStore connects the configured state backend
func openStore(cfg *config.Config) (shop.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Storage.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	case config.BackendPostgres:
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case config.BackendMemory:
		return store.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Storage.Backend)
	}
}
