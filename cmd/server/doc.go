// Package main is the entry point for the shell host server.
//
// The server hosts the app catalog, routes intents between apps, tracks
// app lifecycles and serves the flashcard review and study history APIs.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags override environment variables
//
// Usage:
//
//	# SQLite store, extra manifests from ./apps
//	./server -port 8000 -catalog ./apps -db /var/lib/shell/study.db
//
//	# In-memory store with development logging
//	./server -store memory -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
