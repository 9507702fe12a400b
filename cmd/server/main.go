package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/deskline/backend/internal/config"
	"github.com/deskline/backend/internal/db"
	httpapi "github.com/deskline/backend/internal/http"
	"github.com/deskline/backend/internal/notify"
	"github.com/deskline/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "deskline-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	var notifier notify.Adapter
	if cfg.NotifyURL == "" {
		notifier = &notify.MockAdapter{}
		logger.Info().Msg("using mock notify adapter")
	} else {
		notifier = notify.HTTPAdapter{BaseURL: cfg.NotifyURL}
	}

	queue := &service.Queue{
		Store:              store,
		Flags:              &db.Flags{Store: store, Logger: logger},
		Notifier:           notifier,
		Logger:             logger,
		RoutingConfigPath:  cfg.RoutingConfigPath,
		AllocateMaxRetries: cfg.AllocateMaxRetries,
	}

	router := httpapi.Router(cfg, store, queue, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
