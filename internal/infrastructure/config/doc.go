// Package config loads server configuration from environment variables.
//
// Variables:
//   - PORT, HOST: HTTP listener
//   - STORE_DRIVER (sqlite|memory), STORE_PATH: durable store
//   - STORE_BREAKER_FAILURES, STORE_BREAKER_TIMEOUT: store circuit breaker
//   - CATALOG_DIR, CATALOG_BUILTINS: app manifests
//   - LOG_LEVEL, LOG_DEV: logging
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED: API rate limiting
package config
