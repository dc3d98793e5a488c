package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every HTTP route on router. The websocket stream is
// mounted separately by the server.
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
	router.GET("/metrics/json", h.MetricsJSON)
	router.POST("/logs", h.StreamLogs)

	// Catalog and lifecycle
	apps := router.Group("/apps")
	apps.GET("", h.ListApps)
	apps.GET("/running", h.ListRunning)
	apps.GET("/active", h.ActiveApp)
	apps.POST("/focus/clear", h.ClearFocus)
	apps.POST("/:id/launch", h.LaunchApp)
	apps.POST("/:id/suspend", h.SuspendApp)
	apps.POST("/:id/background", h.BackgroundApp)
	apps.POST("/:id/terminate", h.TerminateApp)
	apps.POST("/:id/focus", h.FocusApp)
	apps.GET("/:id/pending-intent", h.PendingIntent)

	// Intent routing
	router.POST("/intents", h.DispatchIntent)
	router.POST("/intents/resolve", h.ResolveIntent)

	// Flashcards and review sessions
	decks := router.Group("/decks")
	decks.GET("", h.ListDecks)
	decks.POST("", h.CreateDeck)
	decks.GET("/:id", h.GetDeck)
	decks.PUT("/:id", h.UpdateDeck)
	decks.DELETE("/:id", h.DeleteDeck)
	decks.GET("/:id/due", h.DueCards)
	decks.POST("/:id/reviews", h.StartReview)

	reviews := router.Group("/reviews")
	reviews.GET("/:id", h.GetReview)
	reviews.POST("/:id/reveal", h.RevealCard)
	reviews.POST("/:id/rate", h.RateCard)
	reviews.POST("/:id/finish", h.FinishReview)
	reviews.DELETE("/:id", h.EndReview)

	// Study history
	router.GET("/sessions", h.ListSessions)
	router.POST("/sessions", h.CreateSession)
	router.GET("/quiz-results", h.ListQuizResults)
	router.POST("/quiz-results", h.CreateQuizResult)
	router.GET("/analytics/summary", h.AnalyticsSummary)

	// Permissions
	router.GET("/permissions", h.ListPermissions)
	router.GET("/permissions/:token", h.CheckPermission)
	router.POST("/permissions/:token", h.RequestPermission)
	router.DELETE("/permissions/:token", h.RevokePermission)
}
