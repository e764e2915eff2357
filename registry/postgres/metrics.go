package postgres

import (
	"sync/atomic"
	"time"
)

// PoolMetrics holds lock-free connection pool counters, updated on the
// hot query path and periodically folded into Prometheus via
// PrometheusExporter.
type PoolMetrics struct {
	ActiveConnections    atomic.Int32
	IdleConnections      atomic.Int32
	TotalConnections     atomic.Int64
	ConnectionsCreated   atomic.Int64
	ConnectionsDestroyed atomic.Int64

	ConnectionWaitTime atomic.Int64 // nanoseconds
	QueryExecutionTime atomic.Int64 // nanoseconds
	TotalQueries       atomic.Int64

	ConnectionErrors atomic.Int64
	QueryErrors      atomic.Int64
	TimeoutErrors    atomic.Int64

	LastHealthCheck     atomic.Int64 // unix timestamp
	HealthCheckFailures atomic.Int64
	IsHealthy           atomic.Bool

	SuccessfulConnections atomic.Int64
	FailedConnections     atomic.Int64
}

// PoolStats is a point-in-time snapshot of PoolMetrics.
type PoolStats struct {
	ActiveConnections     int32
	IdleConnections       int32
	TotalConnections      int64
	ConnectionsCreated    int64
	ConnectionsDestroyed  int64
	ConnectionWaitTime    time.Duration
	QueryExecutionTime    time.Duration
	TotalQueries          int64
	ConnectionErrors      int64
	QueryErrors           int64
	TimeoutErrors         int64
	LastHealthCheck       time.Time
	HealthCheckFailures   int64
	IsHealthy             bool
	SuccessfulConnections int64
	FailedConnections     int64
}

func NewPoolMetrics() *PoolMetrics {
	m := &PoolMetrics{}
	m.LastHealthCheck.Store(time.Now().Unix())
	m.IsHealthy.Store(true)
	return m
}

func (m *PoolMetrics) Snapshot() PoolStats {
	return PoolStats{
		ActiveConnections:     m.ActiveConnections.Load(),
		IdleConnections:       m.IdleConnections.Load(),
		TotalConnections:      m.TotalConnections.Load(),
		ConnectionsCreated:    m.ConnectionsCreated.Load(),
		ConnectionsDestroyed:  m.ConnectionsDestroyed.Load(),
		ConnectionWaitTime:    time.Duration(m.ConnectionWaitTime.Load()),
		QueryExecutionTime:    time.Duration(m.QueryExecutionTime.Load()),
		TotalQueries:          m.TotalQueries.Load(),
		ConnectionErrors:      m.ConnectionErrors.Load(),
		QueryErrors:           m.QueryErrors.Load(),
		TimeoutErrors:         m.TimeoutErrors.Load(),
		LastHealthCheck:       time.Unix(m.LastHealthCheck.Load(), 0),
		HealthCheckFailures:   m.HealthCheckFailures.Load(),
		IsHealthy:             m.IsHealthy.Load(),
		SuccessfulConnections: m.SuccessfulConnections.Load(),
		FailedConnections:     m.FailedConnections.Load(),
	}
}

func (m *PoolMetrics) RecordConnectionWait(d time.Duration) { m.ConnectionWaitTime.Add(d.Nanoseconds()) }

func (m *PoolMetrics) RecordQueryExecution(d time.Duration) {
	m.QueryExecutionTime.Add(d.Nanoseconds())
	m.TotalQueries.Add(1)
}

func (m *PoolMetrics) RecordConnectionError() {
	m.ConnectionErrors.Add(1)
	m.FailedConnections.Add(1)
}

func (m *PoolMetrics) RecordQueryError()   { m.QueryErrors.Add(1) }
func (m *PoolMetrics) RecordTimeoutError() { m.TimeoutErrors.Add(1) }

func (m *PoolMetrics) RecordSuccessfulConnection() { m.SuccessfulConnections.Add(1) }

func (m *PoolMetrics) UpdateConnectionStats(active, idle int32, total int64) {
	m.ActiveConnections.Store(active)
	m.IdleConnections.Store(idle)
	m.TotalConnections.Store(total)
}

func (m *PoolMetrics) RecordHealthCheck(success bool) {
	m.LastHealthCheck.Store(time.Now().Unix())
	if !success {
		m.HealthCheckFailures.Add(1)
		m.IsHealthy.Store(false)
		return
	}
	m.IsHealthy.Store(true)
}

// GetSuccessRate returns the percentage of queries that did not error.
func (m *PoolMetrics) GetSuccessRate() float64 {
	total := m.TotalQueries.Load() + m.ConnectionErrors.Load() + m.QueryErrors.Load()
	if total == 0 {
		return 100.0
	}
	return float64(m.TotalQueries.Load()) / float64(total) * 100.0
}
