package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tair/storefront-funnel/internal/funnel"
	"github.com/tair/storefront-funnel/internal/funnel/config"
	"github.com/tair/storefront-funnel/kafka"
	"github.com/tair/storefront-funnel/pkg/database"
	"github.com/tair/storefront-funnel/pkg/logger"
	"github.com/tair/storefront-funnel/pkg/tracing"
)

// counter-worker applies product.viewed events queued by the funnel service
// when ASYNC_VIEWS is on.
func main() {
	cfg := config.Load()
	serviceName := cfg.ServiceName + "-counter-worker"

	logger.Init(serviceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	if len(cfg.KafkaBrokers) == 0 {
		logger.Logger.Fatal().Msg("KAFKA_BROKERS is required")
	}

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    serviceName,
		JaegerEndpoint: cfg.JaegerURL,
		SampleRatio:    cfg.TraceRatio,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// no publisher: queued views are applied, never re-queued
	recorder, err := funnel.InitializeViewRecorder(db, funnel.Options{})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize view recorder")
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "funnel-counter-worker", []string{kafka.TopicProductViewed})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.RegisterHandler(kafka.EventTypeProductViewed, kafka.ProductViewedHandler(
		func(ctx context.Context, event kafka.ProductViewedEvent) error {
			_, err := recorder.Apply(ctx, event.View())
			return err
		},
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start consumer")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down counter worker...")
}
