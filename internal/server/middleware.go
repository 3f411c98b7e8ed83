package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gmichels/selenium-grid-exporter/internal/logger"
)

// requestLogger logs every handled request. Scrapes are frequent, so
// successful requests log at debug and only errors surface at warn.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		event := log.Debug()
		if status >= 500 {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("uri", c.Request.RequestURI).
			Str("remote_addr", c.ClientIP()).
			Int("status", status).
			Int("response_size", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request handled")
	}
}
