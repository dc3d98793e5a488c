// Package middleware provides the HTTP middleware stack of the shell API.
//
// CORS wraps gin-contrib/cors. A "*" origin allows any origin and turns
// credentials off. Websocket upgrades are allowed.
//
// RateLimit keeps one token bucket per client IP and drops buckets idle
// for longer than IdleTTL. GlobalRateLimit shares a single bucket.
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
