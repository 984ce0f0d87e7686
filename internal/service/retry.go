package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wealthpath/notifications/internal/repository"
)

// DefaultStoreTimeout bounds a single data-store call.
const DefaultStoreTimeout = 10 * time.Second

// StoreError reports a data-store call that failed after its retry.
type StoreError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Operation, e.Attempts, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// callStore runs fn with a per-attempt timeout and retries it once. The retry
// is skipped when the parent context is already done.
func callStore[T any](ctx context.Context, timeout time.Duration, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}

	var (
		result T
		err    error
	)
	attempts := 0
	for attempts < 2 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err == nil {
				err = ctxErr
			}
			break
		}
		attempts++

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err = fn(callCtx)
		cancel()
		if err == nil {
			return result, nil
		}
		if !isRetryable(err) {
			break
		}
		if logger != nil && attempts == 1 {
			logger.Warn("store call failed, retrying",
				slog.String("operation", op),
				slog.String("error", err.Error()),
			)
		}
	}

	var zero T
	return zero, &StoreError{Operation: op, Attempts: attempts, Err: err}
}

// callStoreErr is callStore for calls that return only an error.
func callStoreErr(ctx context.Context, timeout time.Duration, logger *slog.Logger, op string, fn func(context.Context) error) error {
	_, err := callStore(ctx, timeout, logger, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// isRetryable excludes failures a second attempt cannot fix.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrPreferencesNotFound),
		errors.Is(err, repository.ErrUnknownFeature):
		return false
	}
	return true
}
