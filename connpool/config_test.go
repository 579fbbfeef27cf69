package connpool

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_SetDefault(t *testing.T) {
	cfg := (&Config{}).SetDefault()

	assert.Equal(t, defaultPoolSize, cfg.PoolSize)
	assert.Equal(t, defaultMaxInProcessPerConnection, cfg.MaxInProcessPerConnection)
	assert.Equal(t, defaultAcquireRetries, cfg.AcquireRetries)
	assert.Equal(t, defaultRetryBaseDelay, cfg.RetryBaseDelay)
}

func TestConfig_SetDefaultKeepsExplicitValues(t *testing.T) {
	src := &Config{
		PoolSize:                  8,
		MaxInProcessPerConnection: 2,
		AcquireRetries:            1,
		RetryBaseDelay:            time.Second,
	}

	cfg := src.SetDefault()
	assert.Equal(t, src, cfg)

	// SetDefault returns a copy.
	cfg.PoolSize = 1
	assert.Equal(t, 8, src.PoolSize)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:   "valid",
			config: (&Config{}).SetDefault(),
		},
		{
			name:    "non-positive pool size",
			config:  &Config{PoolSize: -2, MaxInProcessPerConnection: 1},
			wantErr: true,
		},
		{
			name:    "non-positive concurrency ceiling",
			config:  &Config{PoolSize: 1, MaxInProcessPerConnection: -3},
			wantErr: true,
		},
		{
			name:    "negative retries",
			config:  &Config{PoolSize: 1, MaxInProcessPerConnection: 1, AcquireRetries: -1},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPoolOptions)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	require.NoError(t, os.Setenv("POOL_SIZE", "7"))
	require.NoError(t, os.Setenv("RETRY_BASE_DELAY", "50ms"))
	defer func() {
		_ = os.Unsetenv("POOL_SIZE")
		_ = os.Unsetenv("RETRY_BASE_DELAY")
	}()

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.PoolSize)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, defaultMaxInProcessPerConnection, cfg.MaxInProcessPerConnection)
	assert.Equal(t, defaultAcquireRetries, cfg.AcquireRetries)
}
