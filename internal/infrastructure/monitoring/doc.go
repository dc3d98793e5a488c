/*
Package monitoring provides Prometheus metrics for the host shell.

# Overview

Metrics live on a private registry so several hosts (and tests) can coexist
in one process. The registry is served at /metrics through Handler.

# Metrics

- HTTP request counts and latency (gin middleware, labelled by route template)
- Intent dispatch outcomes (explicit, matched, unresolved)
- Running apps, launches, catalog size, live handlers
- Flashcard ratings and completed study sessions
- Durable store call counts and latency (Timer)
- WebSocket connections and messages

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "update_deck")
	err := store.UpdateDeck(ctx, deck)
	timer.Stop(err)
*/
package monitoring
