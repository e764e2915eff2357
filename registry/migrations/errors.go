package migrations

import "errors"

var (
	ErrNotConnected     = errors.New("migrations: database connection not established")
	ErrDialectNotSet    = errors.New("migrations: goose dialect could not be set")
	ErrMigrationFailed  = errors.New("migrations: migration failed to apply")
	ErrRollbackFailed   = errors.New("migrations: rollback failed")
	ErrInvalidDirectory = errors.New("migrations: migration directory is invalid or empty")
)
