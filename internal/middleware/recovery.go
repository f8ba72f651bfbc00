package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/httputil"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
)

// Recovery turns a handler panic into an INTERNAL envelope. http.ErrAbortHandler
// is re-raised so net/http can drop the connection as the handler asked.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Ctx(c.Request.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Msg("Request panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			httputil.RespondWithError(c, apperrors.NewInternal(fmt.Errorf("panic: %v", rec)))
		}()
		c.Next()
	}
}
