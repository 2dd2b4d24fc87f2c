package middleware

import (
	"strconv"
	"time"

	"rental-payment-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics records request counts and latency per route.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestLatency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
