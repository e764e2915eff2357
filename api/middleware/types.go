// Package middleware is disir-server's HTTP middleware chain. Request
// ID propagation and access logging are handled by pkg/disirlog's
// HTTPMiddleware; this package adds the API-specific concerns:
// Prometheus instrumentation, path normalization, rate limiting,
// security headers and request validation, adapted from the teacher's
// internal/api/middleware package.
package middleware

import (
	"context"

	"github.com/kspt-johs/disir-go/pkg/disirlog"
)

const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"

	NormalizedPathHeader = "X-Normalized-Path"

	APIVersionHeader = "X-API-Version"
)

// GetRequestID returns the request ID disirlog.HTTPMiddleware attached
// to ctx, or "" if none is present.
func GetRequestID(ctx context.Context) string {
	return disirlog.RequestID(ctx)
}
