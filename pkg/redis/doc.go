// Package redis provides helpers for connecting to the Redis instance backing
// rate limiting and the usage cache.
//
// The package wraps the go-redis client and adds:
//
//   - `Connect`, which retries the connection using the supplied configuration.
//   - A health-check helper for liveness / readiness probes.
//
// Configuration is described by the `Config` struct whose fields are populated
// from environment variables via github.com/caarlos0/env. The connection URL
// is optional: when absent, the application runs without Redis and the
// features that depend on it degrade to no-ops.
package redis
