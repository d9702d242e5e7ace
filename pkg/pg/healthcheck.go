package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthcheck returns a probe that pings pool. A positive timeout bounds
// each probe.
func Healthcheck(pool *pgxpool.Pool, timeout time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}
