package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"summary-backend/internal/shared/telemetry"
)

// Logging emits one structured line per completed request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if documentID := c.GetString(DocumentIDKey); documentID != "" {
			fields["document_id"] = documentID
		}
		telemetry.Info("request.complete", fields)
	}
}
