package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-buzz/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type BuzzError struct {
	Message string
	Cause   error
}

func (e *BuzzError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BuzzError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As at the API boundary
type ConfigurationError struct{ BuzzError }
type NetworkError struct{ BuzzError }
type DataSourceError struct{ BuzzError }
type CacheError struct{ BuzzError }
type ValidationError struct{ BuzzError }

func NewNetworkError(message string, cause error) error {
	return &NetworkError{BuzzError{Message: message, Cause: cause}}
}

func NewDataSourceError(message string, cause error) error {
	return &DataSourceError{BuzzError{Message: message, Cause: cause}}
}

func NewCacheError(message string, cause error) error {
	return &CacheError{BuzzError{Message: message, Cause: cause}}
}

func NewValidationError(message string, cause error) error {
	return &ValidationError{BuzzError{Message: message, Cause: cause}}
}

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{BuzzError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

// IsUpstreamError reports whether err came from a remote source rather than
// from the caller.
func IsUpstreamError(err error) bool {
	var netErr *NetworkError
	var dsErr *DataSourceError
	return errors.As(err, &netErr) || errors.As(err, &dsErr)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries times, doubling baseDelay after
// every failure. Waiting stops early when ctx is cancelled.
func RetryWithBackoff[T any](ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", operation, maxRetries, lastErr)
}
