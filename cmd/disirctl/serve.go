package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kspt-johs/disir-go/api"
	"github.com/kspt-johs/disir-go/api/middleware"
	"github.com/kspt-johs/disir-go/internal/appconfig"
	"github.com/kspt-johs/disir-go/k8sloader"
	"github.com/kspt-johs/disir-go/pkg/disirlog"
	"github.com/kspt-johs/disir-go/pkg/disirmetrics"
	"github.com/kspt-johs/disir-go/registry"
	"github.com/kspt-johs/disir-go/registry/postgres"
	"github.com/kspt-johs/disir-go/registry/sqlite"
	"github.com/kspt-johs/disir-go/resolvercache"
)

// newServeCommand is disir-server's composition root: load config, wire
// a registry.Store for the configured profile, build the HTTP router,
// and run it with the teacher's signal-driven graceful shutdown
// (cmd/server/main.go's quit-channel pattern).
func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP validation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := disirlog.New(disirlog.Config{
				Level:      cfg.Log.Level,
				Format:     cfg.Log.Format,
				Output:     cfg.Log.Output,
				Filename:   cfg.Log.Filename,
				MaxSizeMB:  cfg.Log.MaxSize,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAgeDays: cfg.Log.MaxAge,
				Compress:   cfg.Log.Compress,
			})

			sanitized := appconfig.NewSanitizer("***REDACTED***").Sanitize(cfg)
			logger.Info("starting disir-server", "profile", cfg.Profile, "config", sanitized)

			store, closeStore, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			if cfg.K8s.Enabled {
				stopWatch, err := startK8sWatch(cmd.Context(), cfg, store, logger)
				if err != nil {
					return fmt.Errorf("start k8s watch: %w", err)
				}
				defer stopWatch()
			}

			metrics := disirmetrics.NewRegistry()
			routerConfig := api.DefaultConfig(logger, metrics)
			routerConfig.RateLimitPerMinute = int(cfg.Server.RateLimitPerSecond * 60)
			routerConfig.RateLimitBurst = cfg.Server.RateLimitBurst
			routerConfig.Auth = middleware.AuthConfig{Enabled: false}

			if cfg.Resolver.Enabled {
				resolver, err := newResolver(cfg, metrics, logger)
				if err != nil {
					return fmt.Errorf("build resolver cache: %w", err)
				}
				routerConfig.Resolver = resolver
			}

			router := api.NewRouter(store, routerConfig)

			server := &http.Server{
				Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  cfg.Server.IdleTimeout,
			}

			return runWithGracefulShutdown(server, cfg.Server.GracefulShutdownTimeout, logger)
		},
	}
}

func openStore(cfg *appconfig.Config, logger *slog.Logger) (registry.Store, func(), error) {
	switch cfg.Registry.Backend {
	case "sqlite":
		store, err := sqlite.Open(cfg.Registry.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite registry: %w", err)
		}
		return store, func() { _ = store.Close() }, nil

	case "postgres":
		poolConfig := &postgres.Config{
			Host:              cfg.Registry.Host,
			Port:              cfg.Registry.Port,
			Database:          cfg.Registry.Database,
			User:              cfg.Registry.Username,
			Password:          cfg.Registry.Password,
			SSLMode:           cfg.Registry.SSLMode,
			MaxConns:          int32(cfg.Registry.MaxConnections),
			MinConns:          int32(cfg.Registry.MinConnections),
			MaxConnLifetime:   cfg.Registry.MaxConnLifetime,
			MaxConnIdleTime:   cfg.Registry.MaxConnIdleTime,
			ConnectTimeout:    cfg.Registry.ConnectTimeout,
			HealthCheckPeriod: 30 * time.Second,
		}
		pool := postgres.New(poolConfig, logger)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Registry.ConnectTimeout)
		defer cancel()
		if err := pool.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect to postgres registry: %w", err)
		}
		store := postgres.NewStore(pool)
		return store, func() { _ = pool.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown registry.backend %q", cfg.Registry.Backend)
	}
}

// newResolver builds the LRU+Redis cache sitting in front of default
// resolution. RedisAddr == "" runs LRU-only, skipping the Redis tier
// rather than dialing a Redis that was never configured.
func newResolver(cfg *appconfig.Config, metrics *disirmetrics.Registry, logger *slog.Logger) (*resolvercache.Resolver, error) {
	var remote resolvercache.Cache
	if cfg.Resolver.RedisAddr != "" {
		redisCache, err := resolvercache.NewRedisCache(&resolvercache.Config{
			Addr:            cfg.Resolver.RedisAddr,
			Password:        cfg.Resolver.RedisPassword,
			DB:              cfg.Resolver.RedisDB,
			DialTimeout:     cfg.Resolver.DialTimeout,
			ReadTimeout:     cfg.Resolver.ReadTimeout,
			WriteTimeout:    cfg.Resolver.WriteTimeout,
			MaxRetries:      cfg.Resolver.MaxRetries,
			MinRetryBackoff: cfg.Resolver.MinRetryBackoff,
			MaxRetryBackoff: cfg.Resolver.MaxRetryBackoff,
			PoolSize:        10,
			MinIdleConns:    1,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect resolver redis: %w", err)
		}
		remote = redisCache
	}
	return resolvercache.NewResolver(cfg.Resolver.LocalLRUSize, remote, cfg.Resolver.DefaultTTL, metrics.Cache)
}

// startK8sWatch mirrors ConfigMaps labeled for disir into the registry
// as they change, so a cluster's ConfigMaps are the source of truth and
// the HTTP API serves whatever was last applied via kubectl.
func startK8sWatch(ctx context.Context, cfg *appconfig.Config, store registry.Store, logger *slog.Logger) (func(), error) {
	client, err := k8sloader.NewClient(k8sloader.DefaultConfig())
	if err != nil {
		return nil, err
	}
	loader := k8sloader.NewLoader(client, cfg.K8s.Namespace, cfg.K8s.LabelSelector)

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := loader.WatchDocuments(watchCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		for ev := range events {
			if _, err := store.Put(watchCtx, ev.Document, 0); err != nil {
				logger.Warn("failed to mirror configmap into registry", "namespace", ev.Document.Namespace, "name", ev.Document.Name, "error", err)
			}
		}
	}()

	return func() {
		cancel()
		_ = client.Close()
	}, nil
}

func runWithGracefulShutdown(server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
