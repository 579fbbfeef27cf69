package connpool

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrServerUnavailable is returned when the snapshot was empty or every
	// scanned connection was observed closed. It is the only acquisition
	// error the backoff wrapper retries.
	ErrServerUnavailable = errors.New("no open connections available on the server")
	// ErrPoolDisposed is returned on acquisition from a pool that has been
	// shut down.
	ErrPoolDisposed = errors.New("connection pool has been disposed")
	// ErrInvalidPoolOptions is returned on construction with a bad config.
	ErrInvalidPoolOptions = errors.New("invalid pool options")
)

// PoolBusyError reports that every open connection in the snapshot was at
// its concurrency ceiling. It is a capacity signal, not a liveness signal,
// so it is surfaced immediately and never retried internally.
type PoolBusyError struct {
	PoolSize                  int
	MaxInProcessPerConnection int
}

func NewPoolBusyError(poolSize, maxInProcessPerConnection int) *PoolBusyError {
	return &PoolBusyError{
		PoolSize:                  poolSize,
		MaxInProcessPerConnection: maxInProcessPerConnection,
	}
}

func (e *PoolBusyError) Error() string {
	return fmt.Sprintf(
		"no connection available: pool size %d, max in-process per connection %d",
		e.PoolSize, e.MaxInProcessPerConnection)
}

// IsPoolBusy reports whether err carries a PoolBusyError.
func IsPoolBusy(err error) bool {
	var busyErr *PoolBusyError
	return errors.As(err, &busyErr)
}
