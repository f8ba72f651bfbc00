package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/httputil"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
)

// ErrorHandler renders errors that handlers attached with c.Error instead of
// writing a response themselves.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		l := logger.Ctx(c.Request.Context())
		for _, e := range c.Errors {
			l.Debug().
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Interface("meta", e.Meta).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
