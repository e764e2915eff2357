package postgres

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected     = errors.New("registry pool is not connected")
	ErrAlreadyConnected = errors.New("registry pool is already connected")
	ErrConnectionFailed = errors.New("failed to connect to registry database")
	ErrConnectionClosed = errors.New("registry connection pool is closed")
	ErrHealthCheckFailed = errors.New("registry health check failed")
	ErrInvalidConfig    = errors.New("invalid registry database configuration")
	ErrQueryTimeout     = errors.New("registry query execution timed out")
	ErrTransactionFailed = errors.New("registry transaction failed")
	ErrCircuitBreakerOpen = errors.New("registry circuit breaker is open")
)

// DatabaseError wraps a PostgreSQL error code with query/operation context.
type DatabaseError struct {
	Code      string
	Message   string
	Operation string
	Query     string
	Args      []interface{}
}

func (e *DatabaseError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("database error in %s [%s]: %s", e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("database error [%s]: %s", e.Code, e.Message)
}

func NewDatabaseError(code, message string) *DatabaseError {
	return &DatabaseError{Code: code, Message: message}
}

func (e *DatabaseError) WithOperation(operation string) *DatabaseError {
	e.Operation = operation
	return e
}

func (e *DatabaseError) WithQuery(query string, args ...interface{}) *DatabaseError {
	e.Query = query
	e.Args = args
	return e
}

// IsRetryable reports whether the PostgreSQL error code is transient.
func (e *DatabaseError) IsRetryable() bool {
	retryableCodes := map[string]bool{
		"08006": true, // connection_failure
		"40001": true, // serialization_failure
		"40P01": true, // deadlock_detected
		"53300": true, // too_many_connections
		"57P01": true, // admin_shutdown
		"57P02": true, // crash_shutdown
		"57P03": true, // cannot_connect_now
	}
	return retryableCodes[e.Code]
}

func (e *DatabaseError) IsConnectionError() bool {
	connectionCodes := map[string]bool{
		"08000": true,
		"08003": true,
		"08006": true,
		"08001": true,
		"08004": true,
		"08007": true,
		"53300": true,
	}
	return connectionCodes[e.Code]
}

// IsRetryable reports whether err represents a transient failure worth
// retrying (a DatabaseError marked retryable, or any connection error).
func IsRetryable(err error) bool {
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return dbErr.IsRetryable() || dbErr.IsConnectionError()
	}
	return false
}
