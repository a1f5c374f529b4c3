package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/biztrack/internal/assistant"
	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/config"
	"github.com/MrJamesThe3rd/biztrack/internal/database"
	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
	docmemory "github.com/MrJamesThe3rd/biztrack/internal/docstore/memory"
	docpostgres "github.com/MrJamesThe3rd/biztrack/internal/docstore/postgres"
	"github.com/MrJamesThe3rd/biztrack/internal/export"
	bizhttp "github.com/MrJamesThe3rd/biztrack/internal/http"
	assistantHandler "github.com/MrJamesThe3rd/biztrack/internal/http/assistant"
	authHandler "github.com/MrJamesThe3rd/biztrack/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/biztrack/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/biztrack/internal/http/importcsv"
	"github.com/MrJamesThe3rd/biztrack/internal/http/middleware"
	notificationHandler "github.com/MrJamesThe3rd/biztrack/internal/http/notification"
	preferenceHandler "github.com/MrJamesThe3rd/biztrack/internal/http/preference"
	projectHandler "github.com/MrJamesThe3rd/biztrack/internal/http/project"
	reportHandler "github.com/MrJamesThe3rd/biztrack/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/biztrack/internal/http/transaction"
	"github.com/MrJamesThe3rd/biztrack/internal/importer"
	"github.com/MrJamesThe3rd/biztrack/internal/logging"
	"github.com/MrJamesThe3rd/biztrack/internal/notify"
	"github.com/MrJamesThe3rd/biztrack/internal/prefs"
	prefsmemory "github.com/MrJamesThe3rd/biztrack/internal/prefs/memory"
	prefsredis "github.com/MrJamesThe3rd/biztrack/internal/prefs/redis"
	prefssqlite "github.com/MrJamesThe3rd/biztrack/internal/prefs/sqlite"
	projectStore "github.com/MrJamesThe3rd/biztrack/internal/project/store"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	txStore "github.com/MrJamesThe3rd/biztrack/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.ValidateServer(); err != nil {
		slog.Error("invalid server config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.LogLevel()
	slog.SetDefault(logging.New(os.Stdout, cfg.App.Name, cfg.App.LogFormat, level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				slog.Warn("failed to close resource", "error", err)
			}
		}
	}()

	docs, closer, err := openDocuments(ctx, cfg)
	if err != nil {
		return err
	}

	if closer != nil {
		closers = append(closers, closer)
	}

	prefStore, closer, err := openPrefs(ctx, cfg)
	if err != nil {
		return err
	}

	if closer != nil {
		closers = append(closers, closer)
	}

	var notifier notify.Notifier = notify.Log{}

	if cfg.AMQP.URL != "" {
		amqp, err := notify.NewAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return fmt.Errorf("connecting to AMQP: %w", err)
		}

		closers = append(closers, amqp)
		notifier = notify.Multi{notify.Log{}, amqp}

		slog.Info("publishing notifications", "exchange", cfg.AMQP.Exchange)
	}

	var archiver export.Archiver

	if cfg.Export.Bucket != "" {
		gcs, err := export.NewGCS(ctx, cfg.Export.Bucket, cfg.Export.CredentialsFile)
		if err != nil {
			return fmt.Errorf("opening export bucket: %w", err)
		}

		closers = append(closers, gcs)
		archiver = gcs

		slog.Info("archiving exports", "bucket", cfg.Export.Bucket)
	}

	var answerer assistant.Answerer = assistant.Unavailable{}

	if cfg.Gemini.APIKey != "" {
		gemini, err := assistant.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return fmt.Errorf("creating assistant: %w", err)
		}

		answerer = gemini
	}

	var (
		authService = auth.NewService(docs)
		tokens      = auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)
		manager     = session.NewManager(session.Deps{
			Projects:     projectStore.New(docs),
			Transactions: txStore.New(docs),
			Prefs:        prefStore,
			Notifier:     notifier,
		})
	)

	authService.Subscribe(manager.HandleUserChanged)

	handlers := bizhttp.Handlers{
		Auth:          authHandler.NewHandler(authService, tokens),
		Projects:      projectHandler.NewHandler(),
		Transactions:  txHandler.NewHandler(),
		Reports:       reportHandler.NewHandler(),
		Export:        exportHandler.NewHandler(export.NewService(archiver)),
		Import:        importHandler.NewHandler(importer.NewService()),
		Assistant:     assistantHandler.NewHandler(assistant.NewService(answerer)),
		Preferences:   preferenceHandler.NewHandler(prefStore),
		Notifications: notificationHandler.NewHandler(),
	}

	router := bizhttp.New(handlers, bizhttp.Options{
		Tokens:         tokens,
		Users:          authService,
		Sessions:       manager,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthLimiter:    middleware.NewRateLimiter(rate.Limit(cfg.Server.AuthRate), cfg.Server.AuthBurst),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(router, cfg.Server.Timeout, "request timed out"),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr, "store", cfg.Store.Backend, "prefs", cfg.Prefs.Backend)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openDocuments(ctx context.Context, cfg *config.Config) (docstore.Store, io.Closer, error) {
	if cfg.Store.Backend != config.BackendPostgres {
		slog.Warn("using in-memory document store, data is lost on restart")
		return docmemory.New(), nil, nil
	}

	if err := docpostgres.Migrate(cfg.ConnectionString()); err != nil {
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	return docpostgres.New(db), db, nil
}

func openPrefs(ctx context.Context, cfg *config.Config) (prefs.Store, io.Closer, error) {
	switch cfg.Prefs.Backend {
	case config.BackendSQLite:
		store, err := prefssqlite.Open(cfg.Prefs.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening preferences: %w", err)
		}

		return store, store, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Prefs.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}

		return prefsredis.New(client), client, nil
	}

	return prefsmemory.New(), nil, nil
}
