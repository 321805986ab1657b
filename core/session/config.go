package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessiontimeout/core/config"
	"github.com/dmitrymomot/sessiontimeout/core/logger"
)

const (
	// DefaultExpire is the absolute session lifetime used when no expire
	// threshold is configured. It matches the usual session cookie age of two weeks.
	DefaultExpire = 14 * 24 * time.Hour

	// DefaultRefreshGracePeriod is the minimum spacing between two refresh writes
	// of the init timestamp.
	DefaultRefreshGracePeriod = time.Second
)

// Config holds the thresholds the status engine and refresh policy evaluate against.
// Nil thresholds mean "not configured". Zero thresholds are valid and honored exactly.
type Config struct {
	// Expire is the absolute lifetime measured from the init timestamp.
	// Falls back to DefaultExpire when nil.
	Expire *time.Duration `env:"SESSION_EXPIRE"`
	// Idle is the inactivity before a session is reported IDLE. Nil disables the tier.
	Idle *time.Duration `env:"SESSION_IDLE"`
	// Overdue is the inactivity before a session is reported OVERDUE. Nil disables the tier.
	Overdue *time.Duration `env:"SESSION_OVERDUE"`

	// ExpireAfterLastActivity moves the init timestamp forward on activity,
	// turning Expire into an inactivity timeout.
	ExpireAfterLastActivity bool `env:"SESSION_EXPIRE_AFTER_LAST_ACTIVITY" envDefault:"false"`
	// RefreshGracePeriod is the minimum elapsed time before the init timestamp is re-stamped.
	RefreshGracePeriod time.Duration `env:"SESSION_REFRESH_GRACE_PERIOD" envDefault:"1s"`

	// DryRun makes sweeps report expired sessions without deleting them or notifying subscribers.
	DryRun bool `env:"SESSION_SWEEP_DRY_RUN" envDefault:"false"`
}

// DefaultConfig returns a configuration with only the fallbacks applied.
func DefaultConfig() Config {
	return Config{
		RefreshGracePeriod: DefaultRefreshGracePeriod,
	}
}

// Limit returns a pointer to d, for use in Config literals.
func Limit(d time.Duration) *time.Duration {
	return &d
}

// ExpireLimit returns the configured expire threshold or DefaultExpire.
func (c Config) ExpireLimit() time.Duration {
	if c.Expire == nil {
		return DefaultExpire
	}
	return *c.Expire
}

// Normalize returns a copy with negative values clamped. Nil tiers stay nil.
func (c Config) Normalize() Config {
	if c.RefreshGracePeriod < 0 {
		c.RefreshGracePeriod = 0
	}
	c.Expire = clampLimit(c.Expire)
	c.Idle = clampLimit(c.Idle)
	c.Overdue = clampLimit(c.Overdue)
	return c
}

func clampLimit(d *time.Duration) *time.Duration {
	if d == nil || *d >= 0 {
		return d
	}
	return Limit(0)
}

// Option is a functional option for building a Config.
type Option func(*Config)

// NewConfig builds a Config from DefaultConfig and the given options.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.Normalize()
}

// WithExpire sets the absolute session lifetime.
func WithExpire(d time.Duration) Option {
	return func(c *Config) {
		c.Expire = Limit(d)
	}
}

// WithIdle enables the IDLE tier.
func WithIdle(d time.Duration) Option {
	return func(c *Config) {
		c.Idle = Limit(d)
	}
}

// WithOverdue enables the OVERDUE tier.
func WithOverdue(d time.Duration) Option {
	return func(c *Config) {
		c.Overdue = Limit(d)
	}
}

// WithExpireAfterLastActivity toggles sliding expiration.
func WithExpireAfterLastActivity(enabled bool) Option {
	return func(c *Config) {
		c.ExpireAfterLastActivity = enabled
	}
}

// WithRefreshGracePeriod sets the minimum time between refresh writes.
// Set to 0 to refresh on every qualifying interaction.
func WithRefreshGracePeriod(d time.Duration) Option {
	return func(c *Config) {
		c.RefreshGracePeriod = d
	}
}

// WithDryRun toggles report-only sweeps.
func WithDryRun(enabled bool) Option {
	return func(c *Config) {
		c.DryRun = enabled
	}
}

// ConfigSource supplies the configuration for a single evaluation.
// It is called on every operation, so thresholds can change at runtime.
type ConfigSource func() Config

// StaticConfig returns a source that always yields cfg.
func StaticConfig(cfg Config) ConfigSource {
	cfg = cfg.Normalize()
	return func() Config { return cfg }
}

// EnvConfig returns a source that re-reads the SESSION_* environment variables
// on every call. Invalid values are logged and replaced by DefaultConfig.
func EnvConfig(log *slog.Logger) ConfigSource {
	if log == nil {
		log = logger.Nop()
	}
	return func() Config {
		var cfg Config
		if err := config.Parse(&cfg); err != nil {
			log.Warn("invalid session configuration, using defaults",
				logger.Component("session"),
				logger.Error(err))
			return DefaultConfig()
		}
		return cfg.Normalize()
	}
}

// Clock supplies the current time.
type Clock func() time.Time
