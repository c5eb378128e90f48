package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DRafi2006/FOUND/utils"
)

// Logger logs every request with method, path, status and latency.
func Logger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"clientIP", c.ClientIP(),
		)
	}
}
