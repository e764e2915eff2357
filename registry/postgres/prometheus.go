package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/kspt-johs/disir-go/pkg/disirmetrics"
)

// PoolStatsProvider decouples PrometheusExporter from the concrete
// Pool type, so it can be exercised with a fake in tests.
type PoolStatsProvider interface {
	Stats() PoolStats
}

// PrometheusExporter periodically copies Pool's lock-free atomic
// counters into Prometheus gauges/counters, bridging the hot query
// path (atomics) and the scrape path (thread-safe collectors).
type PrometheusExporter struct {
	pool      PoolStatsProvider
	dbMetrics *disirmetrics.DatabaseMetrics
	logger    *slog.Logger
	cancel    context.CancelFunc
}

func NewPrometheusExporter(pool PoolStatsProvider, dbMetrics *disirmetrics.DatabaseMetrics) *PrometheusExporter {
	return &PrometheusExporter{pool: pool, dbMetrics: dbMetrics, logger: slog.Default()}
}

// Start launches a background goroutine that exports Stats() every
// interval until Stop is called or ctx is canceled.
func (e *PrometheusExporter) Start(ctx context.Context, interval time.Duration) {
	exportCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-exportCtx.Done():
				return
			case <-ticker.C:
				e.export()
			}
		}
	}()
}

func (e *PrometheusExporter) export() {
	stats := e.pool.Stats()
	e.dbMetrics.ActiveConnections.Set(float64(stats.ActiveConnections))
	e.dbMetrics.IdleConnections.Set(float64(stats.IdleConnections))
	e.dbMetrics.TotalConnections.Set(float64(stats.TotalConnections))
	if stats.IsHealthy {
		e.dbMetrics.HealthStatus.Set(1)
	} else {
		e.dbMetrics.HealthStatus.Set(0)
	}
}

// Stop halts the export goroutine.
func (e *PrometheusExporter) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}
