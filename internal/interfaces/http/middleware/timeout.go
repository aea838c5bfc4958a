// internal/interfaces/http/middleware/timeout.go
package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

// Timeout bounds the request context so downstream calls give up in time.
// Handlers run on the request goroutine; a handler that returns after the
// deadline without writing gets a gateway timeout.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			abortWithError(c, apperror.Network("request timeout", ctx.Err()))
		}
	}
}
