// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Kernel components take a *Logger and call OrNop on it, so a nil logger is
// always safe to pass in tests.
//
// Example Usage:
//
//	logger := logging.NewDefault().Named("intent")
//	logger.Warn("no app handles intent", zap.String("action", "CREATE"))
package logging
