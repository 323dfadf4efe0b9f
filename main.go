package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"telemetry-hub/internal/api"
	"telemetry-hub/internal/auth"
	"telemetry-hub/internal/cache"
	"telemetry-hub/internal/config"
	"telemetry-hub/internal/connmgr"
	"telemetry-hub/internal/db"
	"telemetry-hub/internal/hub"
	"telemetry-hub/internal/inference"
	"telemetry-hub/internal/metrics"
	"telemetry-hub/internal/processors/alerts"
	"telemetry-hub/internal/processors/ingest"
	"telemetry-hub/internal/processors/normalizer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configDir := pflag.String("config", ".", "directory containing config.yaml")
	pflag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	slog.InfoContext(ctx, "Starting service...", "addr", cfg.HTTP.Addr, "auth_mode", cfg.Auth.Mode)

	store, err := db.Init(ctx, db.Config{
		ConnString:     cfg.Postgres.ConnString,
		MigrationsPath: cfg.Postgres.MigrationsPath,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	authenticator, closeAuth, err := newAuthenticator(cfg, store)
	if err != nil {
		slog.ErrorContext(ctx, "Error configuring authentication", "error", err)
		os.Exit(1)
	}
	defer closeAuth()

	inferrer, err := inference.New(ctx, inference.Config{
		APIKey:  cfg.Inference.APIKey,
		Model:   cfg.Inference.Model,
		BaseURL: cfg.Inference.BaseURL,
		Timeout: cfg.Inference.Timeout,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Error configuring metadata inference", "error", err)
		os.Exit(1)
	}

	metadata := cache.New(cache.Config{
		Store:           store,
		Inferrer:        inferrer,
		RefreshInterval: cfg.Metadata.RefreshInterval,
		InferTimeout:    cfg.Inference.Timeout,
		Metrics:         m,
	})
	if err := metadata.Hydrate(ctx); err != nil {
		slog.WarnContext(ctx, "Metadata cache hydration failed, starting empty", "error", err)
	} else {
		slog.InfoContext(ctx, "Cache hydrated with initial data")
		metadata.Dump()
	}

	subscribers := hub.New(hub.Config{Metrics: m})

	pipeline := ingest.New(ingest.Config{
		Normalizer:  normalizer.New(normalizer.Config{}),
		Registry:    metadata,
		Evaluator:   alerts.New(alerts.Config{Store: store}),
		Broadcaster: subscribers,
		Metrics:     m,
	})

	devices := connmgr.New(connmgr.Config{
		Store:          store,
		Handler:        pipeline,
		ReconnectDelay: cfg.Devices.ReconnectDelay,
		ResyncInterval: cfg.Devices.ResyncInterval,
		ClientIDPrefix: cfg.Devices.ClientIDPrefix,
		Metrics:        m,
	})
	if err := devices.Start(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial device sync failed, retrying on the resync interval", "error", err)
	}

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: api.New(api.Config{
			Auth:     authenticator,
			Hub:      subscribers,
			Devices:  devices,
			Metadata: metadata,
			Gatherer: reg,
		}).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg := sync.WaitGroup{}
	wg.Go(func() {
		devices.Run(ctx)
	})
	wg.Go(func() {
		slog.InfoContext(ctx, "HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "HTTP server error", "error", err)
			cancel()
		}
	})

	go func() {
		select {
		case <-sigs:
		case <-ctx.Done():
		}
		cancel()
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	wg.Wait()

	devices.Close()
	metadata.Wait()
	slog.Info("Service stopped")
}

// newAuthenticator builds the handshake authenticator for the configured
// auth mode. The returned func releases any client it opened.
func newAuthenticator(cfg config.Config, store *db.DB) (*auth.Authenticator, func(), error) {
	cookie := auth.CookieCredential{Name: cfg.Auth.CookieName, Secret: cfg.Auth.SessionSecret}

	switch cfg.Auth.Mode {
	case config.AuthModeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return auth.New(auth.Config{
			Extractor: cookie,
			Resolver: auth.NewRedisSessionResolver(auth.RedisConfig{
				Client: client,
				Users:  store,
				Prefix: cfg.Redis.SessionPrefix,
			}),
		}), func() { _ = client.Close() }, nil
	case config.AuthModeJWT:
		return auth.New(auth.Config{
			Extractor: auth.BearerCredential{},
			Resolver:  auth.NewJWTResolver(cfg.Auth.JWTSecret),
		}), func() {}, nil
	case config.AuthModeSession:
		return auth.New(auth.Config{
			Extractor: cookie,
			Resolver:  auth.NewSessionResolver(auth.SessionConfig{Sessions: store, Users: store}),
		}), func() {}, nil
	default:
		return nil, nil, errors.New("unknown auth mode " + cfg.Auth.Mode)
	}
}
