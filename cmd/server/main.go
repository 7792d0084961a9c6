package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jesus-007-cmd/chat-backend/internal/api"
	"github.com/Jesus-007-cmd/chat-backend/internal/config"
	"github.com/Jesus-007-cmd/chat-backend/internal/hub"
	"github.com/Jesus-007-cmd/chat-backend/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the message store: PostgreSQL when configured, SQLite
	// otherwise. An unreachable database at startup is logged, not fatal;
	// requests fail with storage errors until connectivity is restored.
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid postgres configuration")
		}
		defer pgStore.Close()

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		if err := pgStore.Ping(pingCtx); err != nil {
			logger.Error().Err(err).Msg("postgres unreachable, requests will fail until it recovers")
		} else if err := pgStore.InitSchema(pingCtx); err != nil {
			logger.Error().Err(err).Msg("failed to initialize schema")
		} else {
			logger.Info().Msg("connected to PostgreSQL")
		}
		cancel()

		db = pgStore
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite initialization failed")
		}
		defer sqliteStore.Close()
		logger.Info().Msg("using SQLite store")

		db = sqliteStore
	}

	// Optional Redis bridge so multiple instances share one live room
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Start the fanout hub
	var bridge hub.MessageBridge
	if redisStore != nil {
		bridge = redisStore
	}
	liveHub := hub.NewHub(logger, bridge)
	go liveHub.Run(ctx)

	// Create router
	router := api.NewRouter(cfg, logger, db, redisStore, liveHub)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chat relay server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
