package cache

import (
	"time"

	applogger "StockPulse/pkg/logger"
)

// FileOption configures FileStore.
type FileOption func(*FileConfig)

// FileConfig holds file store configuration.
type FileConfig struct {
	Expiry time.Duration
	Now    func() time.Time
	Logger *applogger.Logger
}

// WithFileExpiry sets the entry expiry window.
func WithFileExpiry(expiry time.Duration) FileOption {
	return func(c *FileConfig) {
		c.Expiry = expiry
	}
}

// WithFileClock overrides the wall clock, for tests.
func WithFileClock(now func() time.Time) FileOption {
	return func(c *FileConfig) {
		c.Now = now
	}
}

// WithFileLogger attaches a logger for best-effort failure reporting.
func WithFileLogger(l *applogger.Logger) FileOption {
	return func(c *FileConfig) {
		c.Logger = l
	}
}

// RedisOption configures RedisStore.
type RedisOption func(*RedisConfig)

// RedisConfig holds redis store configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Expiry   time.Duration
	Now      func() time.Time
	Logger   *applogger.Logger
}

// WithRedisAddr sets the redis address.
func WithRedisAddr(addr string) RedisOption {
	return func(c *RedisConfig) {
		c.Addr = addr
	}
}

// WithRedisAuth sets password and database number.
func WithRedisAuth(password string, db int) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
		c.DB = db
	}
}

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}

// WithRedisExpiry sets the entry expiry window.
func WithRedisExpiry(expiry time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.Expiry = expiry
	}
}

// WithRedisClock overrides the wall clock, for tests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(c *RedisConfig) {
		c.Now = now
	}
}

// WithRedisLogger attaches a logger for best-effort failure reporting.
func WithRedisLogger(l *applogger.Logger) RedisOption {
	return func(c *RedisConfig) {
		c.Logger = l
	}
}
