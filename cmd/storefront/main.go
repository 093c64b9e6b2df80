package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/Tejash97/klassico-style-haven/internal/activity"
	"github.com/Tejash97/klassico-style-haven/internal/api"
	"github.com/Tejash97/klassico-style-haven/internal/catalog"
	"github.com/Tejash97/klassico-style-haven/internal/checkout"
	"github.com/Tejash97/klassico-style-haven/internal/command"
	"github.com/Tejash97/klassico-style-haven/internal/config"
	"github.com/Tejash97/klassico-style-haven/internal/domain/cart"
	"github.com/Tejash97/klassico-style-haven/internal/email"
	"github.com/Tejash97/klassico-style-haven/internal/infrastructure/kafka"
	"github.com/Tejash97/klassico-style-haven/internal/infrastructure/storage"
	"github.com/Tejash97/klassico-style-haven/internal/logging"
	"github.com/Tejash97/klassico-style-haven/internal/notification"
	"github.com/Tejash97/klassico-style-haven/internal/query"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, notice := config.Load()
	logger := logging.New(cfg.LogLevel).With().Str("service", "storefront").Logger()
	if notice != "" {
		logger.Info().Msg(notice)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Cart storage
	cartStorage, closeStorage, err := openCartStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.CartStorageDriver).Msg("Failed to open cart storage")
	}
	defer closeStorage()
	logger.Info().Str("driver", cfg.CartStorageDriver).Msg("Cart storage ready")

	// Catalog
	db, err := catalog.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	logger.Info().Msg("Connected to PostgreSQL")

	var repo catalog.Repository = catalog.NewPostgresRepository(db, logger)
	var cached *catalog.CachedRepository
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable, catalog cache will miss until it recovers")
		}
		cached = catalog.NewCachedRepository(repo, rdb, cfg.CatalogCacheTTL, logger)
		repo = cached
	}

	// The cart is owned here and handed down to everything that needs it
	toasts := notification.NewQueue(notification.DefaultQueueSize)
	notifier := notification.Multi{toasts, notification.NewLogNotifier(logger)}
	cartStore := cart.NewStore(cartStorage,
		cart.WithKey(cfg.CartStorageKey),
		cart.WithNotifier(notifier),
		cart.WithLogger(logger),
		cart.WithPersistTimeout(cfg.CartPersistTimeout),
	)
	logger.Info().Int("items", cartStore.Count()).Msg("Cart loaded")

	var wg sync.WaitGroup

	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaCartTopic)
		defer producer.Close()

		publisher := activity.NewPublisher(producer, uuid.New().String(), activity.DefaultBufferSize, logger)
		cartStore.Subscribe(publisher.Observe)
		wg.Add(1)
		go func() {
			defer wg.Done()
			publisher.Run(ctx, 3*time.Second)
		}()

		if cached != nil {
			consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaCatalogTopic, cfg.KafkaGroupID, logger)
			defer consumer.Close()
			wg.Add(1)
			go func() {
				defer wg.Done()
				logger.Info().Str("topic", cfg.KafkaCatalogTopic).Msg("Starting catalog update consumer")
				if err := consumer.Consume(ctx, cached.HandleUpdate); err != nil && ctx.Err() == nil {
					logger.Error().Err(err).Msg("Catalog update consumer stopped")
				}
			}()
		}
	} else {
		logger.Info().Msg("KAFKA_BROKERS not set, cart activity stream disabled")
	}

	var mailer checkout.Mailer
	if cfg.SMTPEnabled() {
		mailer = email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	}
	checkoutSvc := checkout.NewService(cartStore, mailer, notifier, logger)

	cmdHandler := command.NewHandler(repo, cartStore, checkoutSvc, notifier, logger)
	queryHandler := query.NewHandler(repo, cartStore, logger)
	handlers := api.NewHandlers(cmdHandler, queryHandler, toasts, logger)
	router := api.NewRouter(api.RouterConfig{
		Handlers: handlers,
		Logger:   logger,
		WebDir:   cfg.WebDir,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("Storefront started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown")
	}

	cancel() // stop publisher and consumer
	wg.Wait()
}

func openCartStorage(ctx context.Context, cfg *config.Config) (storage.Storage, func(), error) {
	switch cfg.CartStorageDriver {
	case config.DriverMemory:
		return storage.NewMemoryStorage(), func() {}, nil
	case config.DriverDynamoDB:
		client, err := storage.NewDynamoClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewDynamoStorage(client, cfg.CartDynamoTable), func() {}, nil
	default:
		s, err := storage.OpenSQLite(cfg.CartSQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
}
