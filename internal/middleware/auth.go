package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/steemgate/core/internal/pkg/response"
	"go.uber.org/zap"
)

// APIKeyHeader carries the posting credential on guarded routes.
const APIKeyHeader = "X-API-Key"

// APIKey returns a middleware that requires the X-API-Key header to match the
// configured posting credential. A server without a credential rejects every
// guarded request with 500, mirroring the health check's key_configured flag.
func APIKey(key string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			response.InternalErrorMsg(c, "Server not configured — STEEM_POSTING_KEY missing")
			return
		}

		provided := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			log.Warn("unauthorized request",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			response.Unauthorized(c, "Unauthorized — invalid API key")
			return
		}

		c.Next()
	}
}
