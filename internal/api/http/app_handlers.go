package http

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
)

// ListApps lists every manifest in the catalog
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apps":  h.host.Catalog.List(),
		"stats": h.host.Catalog.Stats(),
	})
}

// ListRunning lists running apps, optionally filtered by ?state=
func (h *Handlers) ListRunning(c *gin.Context) {
	var filter *types.State
	if raw := c.Query("state"); raw != "" {
		state := types.State(raw)
		if !state.Valid() {
			h.fail(c, hosterr.NewInvalidRequest("unknown state: "+raw))
			return
		}
		filter = &state
	}

	c.JSON(http.StatusOK, gin.H{
		"apps":  h.host.Lifecycle.List(filter),
		"stats": h.host.Lifecycle.Stats(),
	})
}

// ActiveApp returns the focused app, if any
func (h *Handlers) ActiveApp(c *gin.Context) {
	id, ok := h.host.Lifecycle.ActiveAppID()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	body := gin.H{"active": true, "app_id": id}
	if m, ok := h.host.Lifecycle.ActiveApp(); ok {
		body["manifest"] = m
	}
	if running, ok := h.host.Lifecycle.Get(id); ok {
		body["app"] = running
	}
	c.JSON(http.StatusOK, body)
}

// LaunchApp launches an app, optionally carrying an intent
func (h *Handlers) LaunchApp(c *gin.Context) {
	appID := c.Param("id")

	var req types.LaunchRequest
	if c.Request.Body != nil {
		raw, err := c.GetRawData()
		if err != nil {
			h.badRequest(c, err)
			return
		}
		if len(raw) > 0 {
			if err := sonic.Unmarshal(raw, &req); err != nil {
				h.fail(c, hosterr.NewInvalidRequest("invalid launch request: "+err.Error()))
				return
			}
		}
	}

	var in *types.Intent
	if req.Intent != nil {
		parsed, err := req.Intent.Intent()
		if err != nil {
			h.badRequest(c, err)
			return
		}
		in = &parsed
	}

	if !h.host.Lifecycle.Launch(appID, in) {
		h.fail(c, hosterr.NewUnknownApp(appID))
		return
	}

	running, _ := h.host.Lifecycle.Get(appID)
	h.log.Info("app launched",
		zap.String("app_id", appID),
		zap.Bool("with_intent", in != nil))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app":     running,
	})
}

// SuspendApp marks a running app suspended
func (h *Handlers) SuspendApp(c *gin.Context) {
	h.park(c, h.host.Lifecycle.Suspend)
}

// BackgroundApp parks a running app in the background
func (h *Handlers) BackgroundApp(c *gin.Context) {
	h.park(c, h.host.Lifecycle.Background)
}

// TerminateApp removes an app from the running set
func (h *Handlers) TerminateApp(c *gin.Context) {
	h.park(c, h.host.Lifecycle.Terminate)
}

func (h *Handlers) park(c *gin.Context, op func(string) bool) {
	appID := c.Param("id")
	if !h.host.Catalog.Has(appID) {
		h.fail(c, hosterr.NewUnknownApp(appID))
		return
	}
	if !op(appID) {
		h.fail(c, hosterr.NewNotFound("running app", appID))
		return
	}

	body := gin.H{"success": true, "app_id": appID}
	if running, ok := h.host.Lifecycle.Get(appID); ok {
		body["app"] = running
	}
	c.JSON(http.StatusOK, body)
}

// FocusApp moves the active pointer to an app
func (h *Handlers) FocusApp(c *gin.Context) {
	appID := c.Param("id")
	if !h.host.Lifecycle.SetActive(&appID) {
		h.fail(c, hosterr.NewUnknownApp(appID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "app_id": appID})
}

// ClearFocus clears the active pointer
func (h *Handlers) ClearFocus(c *gin.Context) {
	h.host.Lifecycle.SetActive(nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PendingIntent peeks at the intent waiting for an app to mount
func (h *Handlers) PendingIntent(c *gin.Context) {
	appID := c.Param("id")
	if !h.host.Catalog.Has(appID) {
		h.fail(c, hosterr.NewUnknownApp(appID))
		return
	}
	in, ok := h.host.Lifecycle.PendingIntent(appID)
	if !ok {
		h.fail(c, hosterr.NewNotFound("pending intent", appID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"app_id": appID, "intent": in})
}
