package connpool

import (
	"time"

	"github.com/pkg/errors"
	"github.com/vrischmann/envconfig"
)

const (
	defaultPoolSize                  = 4
	defaultMaxInProcessPerConnection = 32
	defaultAcquireRetries            = 3
	defaultRetryBaseDelay            = 2 * time.Second
)

// Config represents configuration structure for a connection pool.
type Config struct {
	// PoolSize is the number of live connections the pool maintains.
	// Default: 4
	PoolSize int `envconfig:"optional"`
	// MaxInProcessPerConnection is the concurrency ceiling of a single
	// connection. A connection at or above it is skipped as busy, not
	// counted as dead. Default: 32
	MaxInProcessPerConnection int `envconfig:"optional"`
	// AcquireRetries is how many additional acquisition attempts are made
	// when the server looks unavailable. Default: 3
	AcquireRetries int `envconfig:"optional"`
	// RetryBaseDelay is the delay before the first retry; every following
	// retry doubles it. Default: 2s
	RetryBaseDelay time.Duration `envconfig:"optional"`
}

// SetDefault checks pool config. If required field is empty - it will
// be filled with some default value.
// Returns a copy of config.
func (c *Config) SetDefault() *Config {
	cfgCopy := *c

	if cfgCopy.PoolSize == 0 {
		cfgCopy.PoolSize = defaultPoolSize
	}

	if cfgCopy.MaxInProcessPerConnection == 0 {
		cfgCopy.MaxInProcessPerConnection = defaultMaxInProcessPerConnection
	}

	if cfgCopy.AcquireRetries == 0 {
		cfgCopy.AcquireRetries = defaultAcquireRetries
	}

	if cfgCopy.RetryBaseDelay == 0 {
		cfgCopy.RetryBaseDelay = defaultRetryBaseDelay
	}

	return &cfgCopy
}

func (c *Config) Validate() error {
	if c.PoolSize <= 0 {
		return errors.Wrap(ErrInvalidPoolOptions, "pool size must be positive")
	}

	if c.MaxInProcessPerConnection <= 0 {
		return errors.Wrap(ErrInvalidPoolOptions, "max in-process per connection must be positive")
	}

	if c.AcquireRetries < 0 {
		return errors.Wrap(ErrInvalidPoolOptions, "acquire retries must not be negative")
	}

	return nil
}

// NewConfigFromEnv fills config from environment variables
// (POOL_SIZE, MAX_IN_PROCESS_PER_CONNECTION, ...).
func NewConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Init(cfg); err != nil {
		return nil, errors.Wrap(err, "init envconfig")
	}

	return cfg.SetDefault(), nil
}
