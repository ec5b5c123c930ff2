package middleware

import (
	"github.com/gin-gonic/gin"

	"summary-backend/internal/shared/metrics"
)

// Metrics records request count, latency and in-flight gauge per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := metrics.HTTPStart()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
