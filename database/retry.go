package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

// RetryConfig controls how often a statement outside a transaction is retried
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	EnableRetry  bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		EnableRetry:  true,
	}
}

// transientStates are the SQLSTATEs a single statement can safely be re-run
// after: lost serialization or deadlock races, and the server refusing or
// dropping connections while it starts, restarts or runs out of slots.
var transientStates = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"57P01": {}, // admin_shutdown
	"57P03": {}, // cannot_connect_now
	"53300": {}, // too_many_connections
}

// transientNetErrors are connection failures seen between the pool and Postgres
var transientNetErrors = []error{
	driver.ErrBadConn,
	io.EOF,
	io.ErrUnexpectedEOF,
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.EPIPE,
}

// isRetryableError reports whether err is a transient failure. Everything a
// caller can act on (constraint violations, missing rows, bad input) is final.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	if code, ok := sqlState(err); ok {
		if _, transient := transientStates[code]; transient {
			return true
		}
		// connection_exception class
		return strings.HasPrefix(code, "08")
	}

	// pgx marks errors where nothing reached the server
	if pgconn.SafeToRetry(err) {
		return true
	}
	for _, target := range transientNetErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// sqlState extracts the SQLSTATE code from a pgx or pgdriver error
func sqlState(err error) (string, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, true
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C'), true
	}
	return "", false
}

// RetryWithBackoff runs operation until it succeeds, fails with a final
// error, or runs out of attempts. The delay doubles up to MaxDelay.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func() error) error {
	if !config.EnableRetry {
		return operation()
	}

	delay := config.InitialDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = operation()
		if err == nil || !isRetryableError(err) || attempt >= config.MaxAttempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*config.Multiplier), config.MaxDelay)
	}
}

// WithRetry runs fn with the default retry policy
func WithRetry(ctx context.Context, fn func() error) error {
	return RetryWithBackoff(ctx, DefaultRetryConfig(), fn)
}
