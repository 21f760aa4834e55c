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

	"github.com/joho/godotenv"

	"rentbook/internal/infra/broker/kafka"
	"rentbook/internal/infra/config"
	ginserver "rentbook/internal/infra/http/gin"
	"rentbook/internal/infra/identity"
	"rentbook/internal/infra/obs"
	outboxstore "rentbook/internal/infra/outbox"
	"rentbook/internal/infra/routing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()
	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn(".env not loaded", "error", envErr)
	}
	slog.SetDefault(logger)

	st := newMemoryStorage()
	if cfg.Storage == config.StorageMongo {
		st, err = newMongoStorage(ctx, cfg)
		if err != nil {
			logger.Error("storage init failed", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Warn("storage close failed", "error", err)
		}
	}()

	opts := buildOptions{}
	if cfg.RoutingURL != "" {
		opts.distances = routing.NewClient(cfg.RoutingURL, cfg.RoutingTimeout, logger)
	}
	app := buildApplication(cfg, logger, st, opts)
	defer app.listings.Stop()

	if err := app.loadListingFixtures(ctx, cfg.ListingsFixtures, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", cfg.ListingsFixtures)
	}

	var producer outboxstore.Producer = outboxstore.LogProducer{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers, Timeout: 10 * time.Second})
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer kp.Close()
		producer = kp
	}
	worker := &outboxstore.Worker{
		Relay:       st.relay,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
		Wakeup:      st.wakeup,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaKYCTopic != "" {
		listener := &identity.KYCListener{Commands: app.commands, Inbox: st.inbox, Logger: logger}
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{Brokers: cfg.KafkaBrokers, GroupID: cfg.KafkaGroupID}, listener, logger)
		if err != nil {
			logger.Error("kafka consumer init failed", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx, []string{cfg.KafkaKYCTopic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("kyc consumer stopped", "error", err)
			}
		}()
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: st.ready}, app.handlers)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}
