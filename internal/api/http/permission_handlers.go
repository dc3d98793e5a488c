package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
)

// permissionTarget reads ?app_id= and the :token path parameter
func (h *Handlers) permissionTarget(c *gin.Context, withToken bool) (string, types.Permission, bool) {
	appID := c.Query("app_id")
	if appID == "" {
		h.fail(c, hosterr.NewInvalidRequest("app_id is required"))
		return "", "", false
	}
	if !h.host.Catalog.Has(appID) {
		h.fail(c, hosterr.NewUnknownApp(appID))
		return "", "", false
	}
	if !withToken {
		return appID, "", true
	}

	p := types.Permission(strings.ToUpper(c.Param("token")))
	if !p.Valid() {
		h.fail(c, hosterr.NewInvalidRequest("unknown permission: "+c.Param("token")))
		return "", "", false
	}
	return appID, p, true
}

// ListPermissions lists an app's grants and its recent audit trail
func (h *Handlers) ListPermissions(c *gin.Context) {
	appID, _, ok := h.permissionTarget(c, false)
	if !ok {
		return
	}
	limit, err := queryLimit(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id":  appID,
		"granted": h.host.Permissions.Granted(appID),
		"audit":   h.host.Permissions.Audit(appID, limit),
	})
}

// CheckPermission reports whether an app holds a permission
func (h *Handlers) CheckPermission(c *gin.Context) {
	appID, p, ok := h.permissionTarget(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id":     appID,
		"permission": p,
		"granted":    h.host.Permissions.Check(appID, p),
	})
}

// RequestPermission asks for a permission on behalf of an app
func (h *Handlers) RequestPermission(c *gin.Context) {
	appID, p, ok := h.permissionTarget(c, true)
	if !ok {
		return
	}
	granted, err := h.host.Permissions.Request(c.Request.Context(), appID, p)
	if err != nil {
		h.fail(c, hosterr.NewInternal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id":     appID,
		"permission": p,
		"granted":    granted,
	})
}

// RevokePermission drops a grant
func (h *Handlers) RevokePermission(c *gin.Context) {
	appID, p, ok := h.permissionTarget(c, true)
	if !ok {
		return
	}
	h.host.Permissions.Revoke(appID, p)
	c.JSON(http.StatusOK, gin.H{"success": true, "app_id": appID, "permission": p})
}
