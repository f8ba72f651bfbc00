package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
)

// Logger returns a middleware that logs HTTP requests. Bodies are not logged;
// bookings carry customer contact details.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		l := logger.Ctx(c.Request.Context())
		var event *zerolog.Event
		msg := "Request processed"
		switch {
		case statusCode >= 500:
			event = l.Error()
			msg = "Server error"
		case statusCode >= 400:
			event = l.Warn()
			msg = "Client error"
		default:
			event = l.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Str("ip", c.ClientIP()).
			Int("status", statusCode).
			Dur("duration", latency).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
