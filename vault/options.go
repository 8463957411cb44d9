package vault

import (
	"log/slog"
	"os"
	"time"
)

type config struct {
	logger *slog.Logger
	now    func() time.Time
}

func defaultConfig() config {
	return config{
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		now:    time.Now,
	}
}

// Option configures a Store or AuditLog.
type Option func(*config)

// WithLogger sets the structured logger used for diagnostics
// (e.g. fail-soft read corruption).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}
