package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/freshcart-backend/internal/notifications"
	"github.com/angelmondragon/freshcart-backend/internal/orders"
	"github.com/angelmondragon/freshcart-backend/internal/users"
	"github.com/angelmondragon/freshcart-backend/pkg/config"
	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/idempotency"
	"github.com/angelmondragon/freshcart-backend/pkg/instance"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
	"github.com/angelmondragon/freshcart-backend/pkg/migrate"
	"github.com/angelmondragon/freshcart-backend/pkg/pubsub"
	"github.com/angelmondragon/freshcart-backend/pkg/redis"
	"github.com/angelmondragon/freshcart-backend/pkg/sendgrid"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, true, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}

	sender, err := buildSender(cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to build email sender", err)
		os.Exit(1)
	}

	guard, err := idempotency.NewGuard(redisClient, cfg.Idempotency.NotificationTTL)
	if err != nil {
		logg.Error(ctx, "failed to build idempotency guard", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	consumer, err := notifications.NewConsumer(notifications.ConsumerParams{
		Orders:       orders.NewRepository(conn),
		Users:        users.NewRepository(conn),
		Inbox:        notifications.NewRepository(conn),
		Sender:       sender,
		Guard:        guard,
		Subscription: pubsubClient.NotificationSubscription(),
		Logger:       logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build notification consumer", err)
		os.Exit(1)
	}

	svc, err := NewService(ServiceParams{
		Config:               cfg,
		Logger:               logg,
		DB:                   dbClient,
		Redis:                redisClient,
		PubSub:               pubsubClient,
		NotificationConsumer: consumer,
	})
	if err != nil {
		logg.Error(ctx, "failed to create worker service", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"instance":     instance.ID("worker"),
		"subscription": cfg.PubSub.NotificationSubscription,
	})
	logg.Info(ctx, "starting worker")
	runErr := svc.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	closeErr := multierr.Combine(pubsubClient.Close(), redisClient.Close(), dbClient.Close())
	if err := multierr.Append(runErr, closeErr); err != nil {
		logg.Error(context.Background(), "worker exited with error", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "worker shutting down gracefully")
}

// buildSender uses SendGrid when an API key is configured and logs emails otherwise.
func buildSender(cfg *config.Config, logg *logger.Logger) (notifications.Sender, error) {
	if !cfg.Sendgrid.Enabled() {
		logg.Warn(context.Background(), "sendgrid api key not set, confirmation emails will only be logged")
		return notifications.NewLogSender(logg), nil
	}
	client, err := sendgrid.NewClient(
		cfg.Sendgrid.APIKey,
		cfg.Sendgrid.DefaultFrom,
		cfg.Sendgrid.Timeout,
		sendgrid.WithBaseURL(cfg.Sendgrid.BaseURL),
	)
	if err != nil {
		return nil, err
	}
	return notifications.NewSendGridSender(client)
}
