// Package middleware provides gin middleware shared by the service.
package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kart-io/docqa/pkg/errors"
	"github.com/kart-io/docqa/pkg/response"
)

// Recovery returns a middleware that recovers from panics and converts
// them to JSON error responses using the error code system.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Errorw("panic recovered",
					"error", r,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				resp := response.Err(errors.ErrPanic).WithRequestID(GetRequestID(c))
				c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
			}
		}()
		c.Next()
	}
}
