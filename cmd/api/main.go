// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the laundrytrack HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and .env).
//  3. Open storage for the selected mode:
//     remote: PostgreSQL (+ migrations), Redis, S3 bucket or local photo dir.
//     local:  badger database and local photo dir.
//  4. Wire stores and HTTP handlers.
//  5. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/laundrytrack/internal/api"
	"github.com/taibuivan/laundrytrack/internal/laundry/batch"
	"github.com/taibuivan/laundrytrack/internal/laundry/library"
	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/laundry/tag"
	"github.com/taibuivan/laundrytrack/internal/platform/config"
	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
	"github.com/taibuivan/laundrytrack/internal/platform/migration"
	"github.com/taibuivan/laundrytrack/internal/platform/objectstore"
	pgstore "github.com/taibuivan/laundrytrack/internal/platform/postgres"
	redisstore "github.com/taibuivan/laundrytrack/internal/platform/redis"
	"github.com/taibuivan/laundrytrack/internal/platform/sec"
	"github.com/taibuivan/laundrytrack/internal/users/auth"
)

// storage is everything the selected persistence mode provides.
type storage struct {
	tags     tag.Repository
	clothes  library.Repository
	batches  batch.Repository
	users    auth.UserRepository
	sessions auth.SessionRepository
	feed     notify.Feed

	photos       objectstore.PhotoStore
	photoHandler http.Handler

	checks  []api.HealthCheck
	closers []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_mode", cfg.StorageMode),
	)

	// Startup gets a deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Storage ────────────────────────────────────────────────────────
	var store *storage
	if cfg.IsLocal() {
		store, err = openLocal(cfg, log)
	} else {
		store, err = openRemote(startupCtx, cfg, log)
	}
	must(log, err, "open storage")
	defer store.close()

	// ── 4. Token Service ──────────────────────────────────────────────────
	var tokens *sec.TokenService
	if cfg.JWTPrivKeyPath != "" {
		tokens, err = sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	} else {
		log.Warn("jwt_ephemeral_keys", slog.String("reason", "no key paths configured"))
		tokens, err = sec.NewEphemeralTokenService(constants.AuthIssuer)
	}
	must(log, err, "initialize jwt service")

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	notifier := notify.NewNotifier(store.feed)

	registry := tag.NewRegistry(store.tags, notifier)
	clothes := library.NewLibrary(store.clothes, store.photos, notifier)
	batches := batch.NewStore(store.batches, notifier, batch.Options{
		UncheckLimit: cfg.UncheckLimit,
		MaxItems:     cfg.MaxItems,
	})
	clothes.AddPhotoReferences(batches)
	authService := auth.NewService(store.users, store.sessions, tokens)

	liveness, readiness := api.NewHealthHandlers(store.checks, log)

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, tokens, api.Handlers{
		Liveness:      liveness,
		Readiness:     readiness,
		Auth:          auth.NewHandler(authService, !cfg.IsDevelopment()),
		Batches:       batch.NewHandler(batches, clothes),
		Tags:          tag.NewHandler(registry),
		Clothes:       library.NewHandler(clothes),
		Notifications: notify.NewHandler(notifier),
		Photos:        store.photoHandler,
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	log.Info("server_stopped_cleanly")
}

// openRemote connects PostgreSQL, Redis and the photo bucket.
func openRemote(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage, error) {
	store := &storage{}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	store.closers = append(store.closers, func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	})

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		store.close()
		return nil, err
	}

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		store.close()
		return nil, err
	}
	store.closers = append(store.closers, func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	})

	store.tags = tag.NewPostgresRepository(pool)
	store.clothes = library.NewPostgresRepository(pool)
	store.batches = batch.NewPostgresRepository(pool)
	store.users = auth.NewUserRepository(pool)
	store.sessions = auth.NewRedisSessionRepository(rdb)
	store.feed = notify.NewRedisFeed(rdb, constants.NotificationFeedSize, constants.NotificationFeedTTL)

	store.checks = []api.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Check: redisstore.HealthCheck(rdb)},
	}

	if cfg.UsesS3() {
		bucket, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.PublicBaseURL,
		})
		if err != nil {
			store.close()
			return nil, err
		}
		store.photos = bucket
		store.checks = append(store.checks, api.HealthCheck{Name: "s3", Check: bucket.Ping})
		return store, nil
	}

	if err := store.usePhotoDir(cfg); err != nil {
		store.close()
		return nil, err
	}
	return store, nil
}

// openLocal opens the embedded badger database and the local photo directory.
func openLocal(cfg *config.Config, log *slog.Logger) (*storage, error) {
	store := &storage{}

	db, err := kv.Open(cfg.LocalDataDir, log)
	if err != nil {
		return nil, err
	}
	store.closers = append(store.closers, func() {
		log.Info("closing_kv_store")
		if cerr := db.Close(); cerr != nil {
			log.Error("kv_close_error", slog.Any("error", cerr))
		}
	})

	store.tags = tag.NewLocalRepository(db)
	store.clothes = library.NewLocalRepository(db)
	store.batches = batch.NewLocalRepository(db)
	store.users = auth.NewLocalUserRepository(db)
	store.sessions = auth.NewLocalSessionRepository(db)
	store.feed = notify.NewMemoryFeed(constants.NotificationFeedSize)

	store.checks = []api.HealthCheck{
		{Name: "badger", Check: func(context.Context) error { return db.Ping() }},
	}

	if err := store.usePhotoDir(cfg); err != nil {
		store.close()
		return nil, err
	}
	return store, nil
}

// usePhotoDir stores photos on disk and serves them under /photos.
func (s *storage) usePhotoDir(cfg *config.Config) error {
	files, err := objectstore.NewFileStore(cfg.PhotoDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}
	s.photos = files
	s.photoHandler = files.Handler()
	return nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
