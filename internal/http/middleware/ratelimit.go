// README: Per-client rate limit middleware for the model-backed routes.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgen/internal/metrics"
	"tripgen/internal/modules/ratelimit"
)

// RateLimit rejects requests over budget with 429. Limiter errors let the request
// through.
func RateLimit(limiter ratelimit.Limiter, m *metrics.Metrics, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limiter unavailable", slog.String("error", err.Error()))
			c.Next()
			return
		}
		if !ok {
			m.ObserveRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
