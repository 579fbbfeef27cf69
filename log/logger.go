package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger according to config.
func NewLogger(config *Config) (*zerolog.Logger, error) {
	cfg := config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.SetDefault()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, errors.Wrap(err, "parse level")
	}

	logger := zerolog.New(buildLoggerOutput(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &logger, nil
}

func buildLoggerOutput(cfg *Config) io.Writer {
	if !cfg.HumanFriendly {
		return os.Stdout
	}

	return zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    cfg.NoColoredOutput,
		TimeFormat: time.RFC3339,
	}
}
