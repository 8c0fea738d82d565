package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// Connect opens a database handle for the given driver and DSN and pings it
// until it responds, using fibonacci backoff capped at maxAttempts. The
// backoff state lives entirely inside this call; nothing is kept in package
// globals, so concurrent Connect calls do not interfere.
func Connect(ctx context.Context, driver, dsn string, maxAttempts uint64) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	backoff := retry.WithMaxRetries(maxAttempts, retry.NewFibonacci(500*time.Millisecond))

	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, nil
}
