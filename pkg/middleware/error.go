package middleware

import (
	"net/http"

	"license-tracker/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last error attached by a handler with c.Error. Anything
// that is not an errutil.BaseError becomes a 500 with a generic message.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		be := errutil.From(c.Errors.Last().Err)
		status := be.Code.HTTPStatus()

		if status >= http.StatusInternalServerError {
			zap.L().Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(be),
			)
		}

		c.JSON(status, be.JSON())
	}
}
