package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kwararru/shell/internal/domain/intent"
	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
)

func (h *Handlers) bindIntent(c *gin.Context) (types.Intent, bool) {
	var req types.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return types.Intent{}, false
	}
	in, err := req.Intent()
	if err != nil {
		h.badRequest(c, err)
		return types.Intent{}, false
	}
	return in, true
}

// DispatchIntent routes an intent, launching the resolved app
func (h *Handlers) DispatchIntent(c *gin.Context) {
	in, ok := h.bindIntent(c)
	if !ok {
		return
	}

	res := h.host.Navigate(in)
	if !res.Resolved {
		h.fail(c, hosterr.NewRoutingMiss(string(in.Action), in.Type))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ResolveIntent reports which app would receive an intent without
// delivering it
func (h *Handlers) ResolveIntent(c *gin.Context) {
	in, ok := h.bindIntent(c)
	if !ok {
		return
	}

	candidates := intent.Candidates(h.host.Catalog.List(), in)
	appID, resolved := h.host.Dispatcher.Resolve(in)
	if !resolved {
		h.fail(c, hosterr.NewRoutingMiss(string(in.Action), in.Type), gin.H{"candidates": candidates})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id":     appID,
		"resolved":   true,
		"candidates": candidates,
	})
}
