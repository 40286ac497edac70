package redis

import "time"

// Config describes the Redis connection. ConnectionURL is deliberately not
// required: rate limiting and caching are optional features and the service
// must start without them.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // Format "redis://:password@localhost:6379/0". Empty disables Redis-backed features.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // Number of connection attempts before giving up.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`   // Delay between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // Overall deadline for Connect.
	OpTimeout      time.Duration `env:"REDIS_OP_TIMEOUT" envDefault:"500ms"`    // Per-operation deadline for cache and rate-limit calls.
}

// Enabled reports whether a connection URL was provided.
func (c Config) Enabled() bool { return c.ConnectionURL != "" }
