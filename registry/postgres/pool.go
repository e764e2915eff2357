package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn is the subset of pgxpool.Pool that registry code depends on —
// narrow enough that Store tests can fake it without a real database.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pool is a pgx connection pool instrumented with retry-aware metrics
// and a background health checker.
type Pool struct {
	pool     *pgxpool.Pool
	config   *Config
	logger   *slog.Logger
	metrics  *PoolMetrics
	health   HealthChecker
	isClosed atomic.Bool
}

// New creates a Pool that is not yet connected; call Connect to dial.
func New(config *Config, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		config:  config,
		logger:  logger,
		metrics: NewPoolMetrics(),
	}
	p.health = NewHealthChecker(p)
	return p
}

// Connect dials PostgreSQL, validates connectivity with a ping, and
// starts the periodic health checker.
func (p *Pool) Connect(ctx context.Context) error {
	if p.isClosed.Load() {
		return ErrConnectionClosed
	}
	if err := p.config.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	p.logger.Info("connecting to registry database",
		"host", p.config.Host, "port", p.config.Port, "database", p.config.Database)

	poolConfig, err := pgxpool.ParseConfig(p.config.DSN())
	if err != nil {
		p.metrics.RecordConnectionError()
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	poolConfig.MaxConns = p.config.MaxConns
	poolConfig.MinConns = p.config.MinConns
	poolConfig.MaxConnLifetime = p.config.MaxConnLifetime
	poolConfig.MaxConnIdleTime = p.config.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = p.config.HealthCheckPeriod

	connectCtx, cancel := context.WithTimeout(ctx, p.config.ConnectTimeout)
	defer cancel()

	start := time.Now()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		p.metrics.RecordConnectionError()
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		p.metrics.RecordConnectionError()
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	p.pool = pool
	p.metrics.RecordConnectionWait(time.Since(start))
	p.metrics.RecordSuccessfulConnection()
	p.logger.Info("connected to registry database", "connection_time", time.Since(start))

	if checker, ok := p.health.(*DefaultHealthChecker); ok {
		periodic := NewPeriodicHealthChecker(checker, p.config.HealthCheckPeriod)
		go periodic.Start(ctx)
	}
	return nil
}

// Disconnect closes the pool. It is a no-op on a pool that never
// connected; a second call on a closed pool returns ErrConnectionClosed.
func (p *Pool) Disconnect(context.Context) error {
	if p.pool == nil {
		return nil
	}
	if p.isClosed.Load() {
		return ErrConnectionClosed
	}
	p.pool.Close()
	p.isClosed.Store(true)
	p.logger.Info("disconnected from registry database")
	return nil
}

func (p *Pool) Close() error { return p.Disconnect(context.Background()) }

func (p *Pool) IsConnected() bool {
	if p.isClosed.Load() || p.pool == nil {
		return false
	}
	return p.pool.Stat().TotalConns() > 0
}

func (p *Pool) Health(ctx context.Context) error {
	if p.isClosed.Load() {
		return ErrConnectionClosed
	}
	if p.pool == nil {
		return ErrNotConnected
	}
	return p.health.CheckHealth(ctx)
}

func (p *Pool) Stats() PoolStats {
	if p.pool == nil {
		return PoolStats{}
	}
	stats := p.pool.Stat()
	total := int64(stats.TotalConns())
	acquired := int64(stats.AcquireCount())
	p.metrics.UpdateConnectionStats(int32(acquired), int32(total-acquired), total)
	return p.metrics.Snapshot()
}

func (p *Pool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if p.pool == nil {
		return pgconn.CommandTag{}, ErrNotConnected
	}
	start := time.Now()
	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		p.metrics.RecordQueryError()
		p.logger.Error("exec failed", "sql", sql, "duration", time.Since(start), "error", err)
		return tag, err
	}
	p.metrics.RecordQueryExecution(time.Since(start))
	return tag, nil
}

func (p *Pool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	if p.pool == nil {
		return nil, ErrNotConnected
	}
	start := time.Now()
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		p.metrics.RecordQueryError()
		p.logger.Error("query failed", "sql", sql, "duration", time.Since(start), "error", err)
		return nil, err
	}
	p.metrics.RecordQueryExecution(time.Since(start))
	return rows, nil
}

func (p *Pool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if p.pool == nil {
		return &errorRow{err: ErrNotConnected}
	}
	start := time.Now()
	row := p.pool.QueryRow(ctx, sql, args...)
	p.metrics.RecordQueryExecution(time.Since(start))
	return row
}

func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	if p.pool == nil {
		return nil, ErrNotConnected
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.metrics.RecordQueryError()
		return nil, err
	}
	return tx, nil
}

func (p *Pool) GetConfig() *Config          { return p.config }
func (p *Pool) GetMetrics() *PoolMetrics    { return p.metrics }
func (p *Pool) GetHealthChecker() HealthChecker { return p.health }
func (p *Pool) Raw() *pgxpool.Pool          { return p.pool }

type errorRow struct{ err error }

func (r *errorRow) Scan(dest ...interface{}) error { return r.err }
