// Package migrations wraps pressly/goose to version the registry's
// SQL schema — the tables registry/postgres.Store uses to hold
// serialized Mold/Config documents and their revision history.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

// Manager drives goose migrations against the registry database.
type Manager struct {
	config *Config
	db     *sql.DB
	logger *slog.Logger
}

// NewManager opens a raw *sql.DB (goose needs database/sql, not pgx's
// native pool) and wires it for migration control.
func NewManager(config *Config) (*Manager, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	goose.SetTableName(config.Table)

	return &Manager{config: config, db: db, logger: logger}, nil
}

// NewManagerFromDB wraps an already-open *sql.DB, for callers (tests,
// disirctl) that manage the connection's lifetime themselves.
func NewManagerFromDB(db *sql.DB, config *Config) *Manager {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	goose.SetTableName(config.Table)
	return &Manager{config: config, db: db, logger: config.Logger}
}

func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *Manager) setDialect() error {
	if err := goose.SetDialect(m.config.Dialect); err != nil {
		return fmt.Errorf("%w: %v", ErrDialectNotSet, err)
	}
	return nil
}

// Up applies every pending migration in order.
func (m *Manager) Up(ctx context.Context) error {
	if err := m.setDialect(); err != nil {
		return err
	}
	start := time.Now()
	if err := goose.UpContext(ctx, m.db, m.config.Dir); err != nil {
		m.logger.Error("registry migration up failed", "error", err)
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	m.logger.Info("registry migrations applied", "duration", time.Since(start))
	return nil
}

// UpTo applies migrations up to and including the given version.
func (m *Manager) UpTo(ctx context.Context, version int64) error {
	if err := m.setDialect(); err != nil {
		return err
	}
	if err := goose.UpToContext(ctx, m.db, m.config.Dir, version); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	return nil
}

// UpByOne applies exactly the next pending migration.
func (m *Manager) UpByOne(ctx context.Context) error {
	if err := m.setDialect(); err != nil {
		return err
	}
	if err := goose.UpByOneContext(ctx, m.db, m.config.Dir); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	return nil
}

// Down rolls back the most recently applied migration.
func (m *Manager) Down(ctx context.Context) error {
	if err := m.setDialect(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, m.db, m.config.Dir); err != nil {
		return fmt.Errorf("%w: %v", ErrRollbackFailed, err)
	}
	return nil
}

// DownTo rolls back migrations down to (but not including) the given
// version.
func (m *Manager) DownTo(ctx context.Context, version int64) error {
	if err := m.setDialect(); err != nil {
		return err
	}
	if err := goose.DownToContext(ctx, m.db, m.config.Dir, version); err != nil {
		return fmt.Errorf("%w: %v", ErrRollbackFailed, err)
	}
	return nil
}

// Reset rolls back every applied migration.
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.setDialect(); err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, m.db, m.config.Dir); err != nil {
		return fmt.Errorf("%w: %v", ErrRollbackFailed, err)
	}
	return nil
}

// Status prints the applied/pending state of every migration through
// goose's own status reporter, which writes to goose's package-level
// logger rather than the manager's.
func (m *Manager) Status(ctx context.Context) error {
	if err := m.setDialect(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, m.db, m.config.Dir)
}

// Version returns the current schema version.
func (m *Manager) Version(ctx context.Context) (int64, error) {
	if err := m.setDialect(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return 0, fmt.Errorf("get migration version: %w", err)
	}
	return version, nil
}
