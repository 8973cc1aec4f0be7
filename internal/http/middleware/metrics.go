package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tripgen/internal/metrics"
)

// Metrics counts requests by route template and status.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, strconv.Itoa(c.Writer.Status()))
	}
}
