package connpool

import (
	"context"

	retry "github.com/avast/retry-go"
	"github.com/pkg/errors"
)

// GetAvailableConnection borrows a connection from the pool. When every
// scanned candidate looked dead it retries with exponential backoff
// (RetryBaseDelay, doubled per retry, AcquireRetries times) before
// surfacing ErrServerUnavailable. A PoolBusyError is surfaced immediately
// so the caller can apply its own backpressure policy.
//
// The returned handle must be released with Release when the borrower is
// done, so deaths discovered mid-use reach the pool.
func (p *ConnectionPool) GetAvailableConnection(ctx context.Context) (*ProxiedConnection, error) {
	var proxied *ProxiedConnection

	err := retry.Do(
		func() error {
			conn, err := p.getAvailableConnection(ctx)
			if err != nil {
				return err
			}
			proxied = conn

			return nil
		},
		retry.Attempts(uint(p.config.AcquireRetries)+1),
		retry.Delay(p.config.RetryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrServerUnavailable)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			p.GetLogger(ctx).Warn().
				Uint("attempt", attempt+1).
				Err(err).
				Msg("no open connection, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}

	return proxied, nil
}
