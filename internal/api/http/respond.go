package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/store"
)

// classify maps an error onto a status and error code
func classify(err error) (int, hosterr.ErrorCode) {
	var hErr *hosterr.HostError
	switch {
	case errors.As(err, &hErr):
		return hErr.Status, hErr.Code
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, hosterr.ErrNotFound
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, hosterr.ErrPersistenceFailure
	default:
		return http.StatusInternalServerError, hosterr.ErrInternal
	}
}

// fail writes err as {"error", "code"} plus any extra fields
func (h *Handlers) fail(c *gin.Context, err error, extra ...gin.H) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Warn("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", string(code)),
			zap.Error(err))
	}

	body := gin.H{"error": err.Error(), "code": code}
	for _, fields := range extra {
		for k, v := range fields {
			body[k] = v
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	h.fail(c, hosterr.NewInvalidRequest(err.Error()))
}

// queryLimit reads ?limit=, defaulting to 0 (no limit)
func queryLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, hosterr.NewInvalidRequest("limit must be a non-negative integer")
	}
	return n, nil
}
