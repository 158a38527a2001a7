package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func isProbePath(path string) bool {
	return path == "/liveness" || path == "/readiness"
}

// ZeroLogMiddleware logs gin requests via zerolog; headers are left out since they carry the bearer token
func ZeroLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {

		if isProbePath(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		var event *zerolog.Event
		switch {
		case statusCode >= 500:
			event = log.Warn()
		case statusCode == 401:
			event = log.Info()
		default:
			event = log.Debug()
		}

		if subject := c.GetString(gin.AuthUserKey); subject != "" {
			event = event.Str("subject", subject)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Int("statusCode", statusCode).
			Dur("latencyMs", latency).
			Str("clientIP", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msgf("[GIN] %3d %13v %-7s %s", statusCode, latency, c.Request.Method, c.Request.URL.Path)
	}
}
