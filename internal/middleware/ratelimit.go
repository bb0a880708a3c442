package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/steemgate/core/internal/pkg/response"
)

const (
	rateLimitMax    = 20
	rateLimitWindow = time.Second
)

// RateLimit returns a middleware that enforces a per-IP fixed-window limit
// backed by Redis. A limiter failure never blocks the request.
func RateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().Unix()
		key := fmt.Sprintf("sg:rate_limit:%s:%d", ip, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}

		if count > rateLimitMax {
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, "too many requests, slow down")
			return
		}

		c.Next()
	}
}
