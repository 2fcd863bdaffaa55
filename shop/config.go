package shop

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Config controls outbound API client behavior.
type Config struct {
	BaseURL   string // e.g. "http://192.168.0.73:8000/api"
	UserAgent string
	Timeout   time.Duration
	Retry     RetryConfig // retry settings for reads (zero uses defaults)

	// MutationInterval and MutationBurst bound how fast mutating calls
	// (cart add/remove, favorite toggle, checkout) may be issued. Rapid
	// repeated taps coalesce into the bucket instead of hammering the
	// backend. Zero interval disables the limiter.
	MutationInterval time.Duration
	MutationBurst    int

	// Logger receives warnings for swallowed read failures.
	// Nil uses slog.Default().
	Logger *slog.Logger
}

// GetRetryConfig returns Retry config or defaults if not set.
func (c Config) GetRetryConfig() RetryConfig {
	if c.Retry.MaxAttempts == 0 {
		return DefaultRetryConfig()
	}
	return c.Retry
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) mutationLimiter() *rate.Limiter {
	if c.MutationInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := c.MutationBurst
	if burst <= 0 {
		burst = 5
	}
	return rate.NewLimiter(rate.Every(c.MutationInterval), burst)
}
