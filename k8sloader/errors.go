package k8sloader

import (
	"fmt"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
)

// Error is the base error type for k8sloader failures.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("k8sloader %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("k8sloader %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

type ConnectionError struct{ *Error }

func NewConnectionError(message string, err error) *ConnectionError {
	return &ConnectionError{&Error{Op: "connection", Message: message, Err: err}}
}

type AuthError struct{ *Error }

func NewAuthError(message string, err error) *AuthError {
	return &AuthError{&Error{Op: "authentication", Message: message, Err: err}}
}

type NotFoundError struct{ *Error }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{&Error{Op: "not_found", Message: message}}
}

type TimeoutError struct{ *Error }

func NewTimeoutError(message string, err error) *TimeoutError {
	return &TimeoutError{&Error{Op: "timeout", Message: message, Err: err}}
}

func wrapK8sError(operation string, err error) error {
	if k8serrors.IsUnauthorized(err) || k8serrors.IsForbidden(err) {
		return NewAuthError("insufficient permissions", err)
	}
	if k8serrors.IsNotFound(err) {
		return NewNotFoundError(operation + " not found")
	}
	if k8serrors.IsTimeout(err) || k8serrors.IsServerTimeout(err) {
		return NewTimeoutError("request timed out", err)
	}
	return &Error{Op: operation, Message: "operation failed", Err: err}
}

func isRetryableError(err error) bool {
	if k8serrors.IsTimeout(err) || k8serrors.IsServerTimeout(err) {
		return true
	}
	if k8serrors.IsInternalError(err) || k8serrors.IsServiceUnavailable(err) {
		return true
	}
	if k8serrors.IsTooManyRequests(err) {
		return true
	}
	if k8serrors.IsUnauthorized(err) || k8serrors.IsForbidden(err) {
		return false
	}
	if k8serrors.IsNotFound(err) || k8serrors.IsInvalid(err) {
		return false
	}
	return true
}

func isNotFoundErr(err error) bool {
	if e, ok := err.(*NotFoundError); ok {
		return e != nil
	}
	return k8serrors.IsNotFound(err)
}
