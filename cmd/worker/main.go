package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/charterbook/config"
	"github.com/Domenick1991/charterbook/internal/cache"
	"github.com/Domenick1991/charterbook/internal/email"
	"github.com/Domenick1991/charterbook/internal/kafka"
	"github.com/Domenick1991/charterbook/internal/logger"
	"github.com/Domenick1991/charterbook/internal/service/workflow"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	loc, err := cfg.Booking.Location()
	if err != nil {
		lg.Fatal("load timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.AssetsCacheTTL(), cfg.Booking.DraftIdle())
	defer redisCache.Close()

	// The worker only sweeps drafts, so the booking collaborators stay unset.
	drafts := workflow.NewService(redisCache, nil, nil, nil, nil, nil, nil,
		workflow.Settings{Location: loc, DraftIdle: cfg.Booking.DraftIdle()},
		workflow.WithLogger(lg),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, lg)
	defer consumer.Close()

	sender := email.NewSender(lg)

	go func() {
		if err := consumer.Consume(ctx, sender.Send); err != nil {
			lg.Error("consumer stopped", zap.Error(err))
			stop()
		}
	}()

	sweep := time.NewTicker(time.Duration(cfg.Worker.DraftSweepMinutes) * time.Minute)
	defer sweep.Stop()

	lg.Info("worker started",
		zap.String("topic", cfg.Kafka.NotificationsTopic),
		zap.Int("draft_sweep_minutes", cfg.Worker.DraftSweepMinutes),
	)
	for {
		select {
		case <-sweep.C:
			if _, err := drafts.ExpireAbandonedDrafts(ctx); err != nil {
				lg.Warn("draft sweep failed", zap.Error(err))
			}
		case <-ctx.Done():
			lg.Info("shutting down worker")
			return
		}
	}
}
