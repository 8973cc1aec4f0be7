// README: Usage ledger summary handler.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripgen/internal/modules/usage"
)

const (
	defaultUsageWindow = 24 * time.Hour
	maxUsageWindow     = 90 * 24 * time.Hour
)

type UsageSummarizer interface {
	Summary(ctx context.Context, window time.Duration) (usage.Summary, error)
}

type UsageHandler struct {
	usage UsageSummarizer
}

func NewUsageHandler(svc UsageSummarizer) *UsageHandler {
	return &UsageHandler{usage: svc}
}

// Summary handles GET /api/usage?since=24h.
func (h *UsageHandler) Summary(c *gin.Context) {
	window := defaultUsageWindow
	if raw := c.Query("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 || d > maxUsageWindow {
			writeError(c, http.StatusBadRequest, "invalid since")
			return
		}
		window = d
	}

	sum, err := h.usage.Summary(c.Request.Context(), window)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, sum)
}
