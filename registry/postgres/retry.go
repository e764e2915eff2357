package postgres

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// RetryConfig controls RetryExecutor's backoff schedule.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterFactor  float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

// RetryExecutor retries an operation with exponential backoff and
// jitter, only when the failure is classified retryable.
type RetryExecutor struct {
	config RetryConfig
	logger *slog.Logger
}

func NewRetryExecutor(config RetryConfig, logger *slog.Logger) *RetryExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryExecutor{config: config, logger: logger}
}

func (r *RetryExecutor) Execute(ctx context.Context, operation func() error) error {
	var lastErr error
	delay := r.config.InitialDelay

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < r.config.MaxRetries && IsRetryable(err) {
			r.logger.Warn("registry operation failed, retrying",
				"attempt", attempt+1, "max_retries", r.config.MaxRetries, "delay", delay, "error", err)
			if !r.waitWithContext(ctx, delay) {
				return ctx.Err()
			}
			delay = r.nextDelay(delay)
			continue
		}
		break
	}

	r.logger.Error("registry operation failed after all retries", "max_retries", r.config.MaxRetries, "error", lastErr)
	return lastErr
}

func (r *RetryExecutor) waitWithContext(ctx context.Context, delay time.Duration) bool {
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *RetryExecutor) nextDelay(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * r.config.BackoffFactor)
	if next > r.config.MaxDelay {
		next = r.config.MaxDelay
	}
	if r.config.JitterFactor > 0 {
		next += time.Duration(float64(next) * r.config.JitterFactor * rand.Float64())
	}
	return next
}

// CircuitBreakerState is the state of a CircuitBreaker.
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker trips open after maxFailures consecutive failures and
// refuses calls until resetTimeout has elapsed, then allows one
// half-open probe.
type CircuitBreaker struct {
	state        CircuitBreakerState
	failureCount int
	maxFailures  int
	resetTimeout time.Duration
	lastFailure  time.Time
	lastSuccess  time.Time
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{state: StateClosed, maxFailures: maxFailures, resetTimeout: resetTimeout}
}

func (cb *CircuitBreaker) Call(operation func() error) error {
	if cb.state == StateOpen {
		if time.Since(cb.lastFailure) > cb.resetTimeout {
			cb.state = StateHalfOpen
		} else {
			return ErrCircuitBreakerOpen
		}
	}

	if err := operation(); err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failureCount++
	cb.lastFailure = time.Now()
	if cb.failureCount >= cb.maxFailures {
		cb.state = StateOpen
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.failureCount = 0
	cb.lastSuccess = time.Now()
	cb.state = StateClosed
}

func (cb *CircuitBreaker) GetState() CircuitBreakerState { return cb.state }
func (cb *CircuitBreaker) IsOpen() bool                  { return cb.state == StateOpen }

func (cb *CircuitBreaker) Reset() {
	cb.state = StateClosed
	cb.failureCount = 0
	cb.lastFailure = time.Time{}
	cb.lastSuccess = time.Now()
}
