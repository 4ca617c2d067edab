// middleware/rate_limit.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/pkg/logger"
	"github.com/streamhub/accounts/pkg/redisclient"
	"go.uber.org/zap"
)

// RateLimit enforces a fixed-window per-client limit backed by Redis, so the
// window survives restarts and is shared across replicas. Redis trouble
// fails open: a broken limiter must not take the API down with it.
func RateLimit(rdb *redisclient.Client, maxRequest int, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := constants.RateLimitKeyPrefix + ip

		count, err := rdb.IncrementWindow(c.Request.Context(), key, duration)
		if err != nil {
			logger.GetLogger().Warn("Rate limiter unavailable",
				zap.String("client_ip", ip),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > int64(maxRequest) {
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int64("current_requests", count),
				zap.Int("max_requests", maxRequest),
				zap.Duration("duration", duration),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(duration.Seconds())))
			c.JSON(http.StatusTooManyRequests, constants.BuildErrorResponse(
				http.StatusTooManyRequests, "Rate limit exceeded", nil, "", false))
			c.Abort()
			return
		}

		remaining := int64(maxRequest) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequest))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		c.Next()
	}
}
