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

	"example.com/finance-dashboard/backend/internal/config"
	"example.com/finance-dashboard/backend/internal/database"
	"example.com/finance-dashboard/backend/internal/events"
	"example.com/finance-dashboard/backend/internal/jobs"
	"example.com/finance-dashboard/backend/internal/repository"
	"example.com/finance-dashboard/backend/internal/server"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.DSN()); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		db.Close()
	}()

	publisher := newPublisher(cfg.Events, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("event publisher close failed", slog.String("error", err.Error()))
		}
	}()

	scheduler, err := jobs.NewScheduler(jobs.Config{
		TokenPurgeSchedule:   cfg.Jobs.TokenPurgeSchedule,
		ChatLogPurgeSchedule: cfg.Jobs.ChatLogPurgeSchedule,
		ChatLogRetention:     cfg.Jobs.ChatLogRetention,
	}, repository.NewRefreshTokenRepository(db), repository.NewChatRepository(db))
	if err != nil {
		logger.Error("failed to schedule jobs", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()

	e := server.New(cfg, logger, db, publisher)
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		logger.Info("http server started", slog.String("addr", httpServer.Addr))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	scheduler.Stop(shutdownCtx)
}

// newPublisher подключается к брокеру; без AMQP_URL или при ошибке события не публикуются.
func newPublisher(cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NoopPublisher{}
	}

	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange, cfg.Queue)
	if err != nil {
		logger.Warn("amqp unavailable, document events disabled", slog.String("error", err.Error()))
		return events.NoopPublisher{}
	}
	return publisher
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
