// internal/interfaces/http/middleware/logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestObserver records request latency per route
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Logger returns a gin.HandlerFunc that logs HTTP requests
func Logger(logger logrus.FieldLogger, observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if observer != nil {
			observer.ObserveRequest(c.Request.Method, route, status, latency)
		}

		entry := logger.WithFields(logrus.Fields{
			"request_id":    c.GetString(requestIDKey),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"route":         route,
			"status_code":   status,
			"latency":       latency,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
			"response_size": c.Writer.Size(),
		})

		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			entry = entry.WithField("error", errs.String())
		}

		if status >= 500 {
			entry.Error("HTTP request completed with server error")
		} else if status >= 400 {
			entry.Warn("HTTP request completed with client error")
		} else {
			entry.Info("HTTP request completed successfully")
		}
	}
}
