// Package ws streams intents to mounted apps over WebSockets.
//
// A client connects to /apps/:id/stream to mount app :id. The first frame
// it receives is "mounted", carrying the intent that launched the app if
// one was pending. Every later intent routed to the app arrives as an
// "intent" frame while the socket stays open.
//
// Message Types (Client → Server):
//   - navigate: route an intent emitted by the app
//   - status: ask whether the app is active
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - mounted, intent, resolution, status, pong, error
//
// Example Usage:
//
//	handler := ws.NewHandler(h, metrics, logger)
//	router.GET("/apps/:id/stream", handler.HandleConnection)
package ws
