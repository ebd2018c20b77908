// Package middleware holds engine-level Gin middleware.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"skm_agent_backend/platform/logger"
)

// RequestLogger emits one structured log line per request. The SSE stream is
// skipped: it holds the connection open for the client's whole session and
// would log a misleading latency on disconnect.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() == 200 && c.GetHeader("Accept") == "text/event-stream" {
			return
		}
		latency := float64(time.Since(start).Microseconds()) / 1000.0
		log.HTTPRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency, c.ClientIP())
	}
}
