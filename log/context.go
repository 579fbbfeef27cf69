package log

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// NewContext attaches a logger built from config to ctx. Components down
// the call chain pick it up with zerolog.Ctx.
func NewContext(ctx context.Context, config *Config) (context.Context, error) {
	logger, err := NewLogger(config)
	if err != nil {
		return nil, errors.Wrap(err, "new logger")
	}

	return logger.WithContext(ctx), nil
}

// FromContext returns the logger attached to ctx, or a disabled logger
// when there is none.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
