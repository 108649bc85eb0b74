package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 50 * time.Millisecond
)

// busyMarkers are the sqlite error fragments that mean another writer
// holds the lock.
var busyMarkers = []string{"database is locked", "database is busy", "sqlite_busy"}

type retryPolicy struct {
	attempts int
	backoff  time.Duration
	logger   zerolog.Logger
}

// TransactionWithRetry runs fn in a transaction, retrying with doubling
// backoff while sqlite reports the database as busy. Non-positive
// arguments select the defaults.
func (db *DB) TransactionWithRetry(ctx context.Context, maxAttempts int, baseBackoff time.Duration, fn func(*sql.Tx) error) error {
	policy := retryPolicy{attempts: maxAttempts, backoff: baseBackoff, logger: db.logger}
	if policy.attempts <= 0 {
		policy.attempts = defaultRetryAttempts
	}
	if policy.backoff <= 0 {
		policy.backoff = defaultRetryBackoff
	}

	return policy.run(ctx, func() error {
		return db.Transaction(ctx, fn)
	})
}

func (p retryPolicy) run(ctx context.Context, fn func() error) error {
	wait := p.backoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !isBusyError(err) || attempt >= p.attempts {
			return err
		}

		p.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", p.attempts).
			Dur("backoff", wait).
			Msg("database busy, retrying transaction")

		if err := sleepWithContext(ctx, wait); err != nil {
			return err
		}
		wait *= 2
	}
}

func isBusyError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	message := strings.ToLower(err.Error())
	for _, marker := range busyMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
