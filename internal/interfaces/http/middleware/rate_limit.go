// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

// RateLimit implements a fixed one-minute window per client IP using Redis.
// A limit of zero or less disables it.
func RateLimit(redisClient *redis.Client, limit int, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || redisClient == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		current, err := redisClient.Get(ctx, key).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			// Redis down: fail open
			logger.WithError(err).Warn("rate limiter unavailable")
			c.Next()
			return
		}

		if current >= limit {
			c.Header("Retry-After", "60")
			abortWithError(c, apperror.New(apperror.TypeRateLimit, "rate limit exceeded", nil))
			return
		}

		pipe := redisClient.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.WithError(err).Warn("rate limiter counter update failed")
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limit-current-1))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))

		c.Next()
	}
}
