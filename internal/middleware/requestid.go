package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = logger.FieldRequestID

	maxRequestIDLen = 128
)

// RequestID reuses a well-formed X-Request-ID from the caller or mints one,
// echoes it back and attaches a logger carrying it to the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)

		l := log.With().Str(logger.FieldRequestID, rid).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Next()
	}
}

// validRequestID accepts short printable ASCII ids so a caller cannot inject
// control characters into log lines.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
