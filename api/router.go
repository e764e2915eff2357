// Package api assembles disir-server's HTTP validation service: a
// gorilla/mux router wiring registry-backed Mold/Config CRUD,
// on-demand revalidation, a websocket verdict stream, and a
// prometheus/swagger-documented surface. Grounded on the teacher's
// internal/api/router.go (middleware ordering, RouterConfig shape).
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kspt-johs/disir-go/api/handlers"
	"github.com/kspt-johs/disir-go/api/middleware"
	"github.com/kspt-johs/disir-go/api/verdictbus"
	"github.com/kspt-johs/disir-go/pkg/disirlog"
	"github.com/kspt-johs/disir-go/pkg/disirmetrics"
	"github.com/kspt-johs/disir-go/registry"
	"github.com/kspt-johs/disir-go/resolvercache"
)

// Config holds router-level configuration — which middleware to apply
// and at what thresholds, mirroring the teacher's RouterConfig.
type Config struct {
	EnableRateLimit    bool
	RateLimitPerMinute int
	RateLimitBurst     int

	MaxRequestBytes int64

	StrictDecoding bool

	Auth middleware.AuthConfig

	// Resolver accelerates GET .../defaults/{keyval} lookups. Nil runs
	// that endpoint uncached, walking the Mold tree on every request.
	Resolver *resolvercache.Resolver

	Logger  *slog.Logger
	Metrics *disirmetrics.Registry
}

// DefaultConfig returns sane defaults for a single-replica deployment.
// Auth is disabled by default — a deployment that wants API-key gating
// sets Config.Auth directly with its own key table.
func DefaultConfig(logger *slog.Logger, metrics *disirmetrics.Registry) Config {
	return Config{
		EnableRateLimit:    true,
		RateLimitPerMinute: 300,
		RateLimitBurst:     50,
		MaxRequestBytes:    1 << 20,
		StrictDecoding:     true,
		Logger:             logger,
		Metrics:            metrics,
	}
}

// NewRouter builds the full mux.Router: global middleware (request ID,
// logging, metrics, security headers), then the /v1 resource routes,
// then health/metrics/docs endpoints.
//
// @title disir-server API
// @version 1.0.0
// @description Config schema validation service built on pkg/disir.
// @BasePath /v1
func NewRouter(store registry.Store, config Config) *mux.Router {
	bus := verdictbus.New(config.Logger)
	svc := handlers.NewService(store, config.Metrics, bus, config.Logger, config.StrictDecoding)
	svc.Resolver = config.Resolver

	router := mux.NewRouter()
	normalizer := middleware.NewPathNormalizer()

	router.Use(disirlog.HTTPMiddleware(config.Logger))
	router.Use(middleware.Metrics(config.Metrics.HTTP, normalizer))
	router.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()))
	router.Use(middleware.AuthMiddleware(config.Auth))

	router.HandleFunc("/healthz", handlers.HealthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(config.Metrics.Gatherer(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.PathPrefix("/docs").Handler(httpSwagger.WrapHandler)

	v1 := router.PathPrefix("/v1").Subrouter()
	setupNamespaceRoutes(v1, svc, config)

	return router
}

func setupNamespaceRoutes(v1 *mux.Router, svc *handlers.Service, config Config) {
	ns := v1.PathPrefix("/namespaces/{namespace}").Subrouter()
	if config.Auth.Enabled {
		ns.Use(middleware.RequireRole(middleware.RoleViewer))
	}

	writable := ns.PathPrefix("").Subrouter()
	writable.Use(middleware.ContentType(config.MaxRequestBytes))
	if config.EnableRateLimit {
		writable.Use(middleware.RateLimit(config.RateLimitPerMinute, config.RateLimitBurst))
	}
	if config.Auth.Enabled {
		writable.Use(middleware.RequireRole(middleware.RoleOperator))
	}

	molds := ns.PathPrefix("/molds/{name}").Subrouter()
	molds.HandleFunc("", svc.GetMold).Methods(http.MethodGet)
	molds.HandleFunc("/defaults/{keyval}", svc.GetKeyvalDefault).Methods(http.MethodGet)

	moldsWrite := writable.PathPrefix("/molds/{name}").Subrouter()
	moldsWrite.HandleFunc("", svc.PutMold).Methods(http.MethodPut)

	configs := ns.PathPrefix("/configs/{name}").Subrouter()
	configs.HandleFunc("", svc.GetConfig).Methods(http.MethodGet)
	configs.HandleFunc("/validate", svc.ValidateConfig).Methods(http.MethodGet)
	configs.HandleFunc("/watch", svc.WatchConfig).Methods(http.MethodGet)

	configsWrite := writable.PathPrefix("/configs/{name}").Subrouter()
	configsWrite.HandleFunc("", svc.PutConfig).Methods(http.MethodPut)
}
