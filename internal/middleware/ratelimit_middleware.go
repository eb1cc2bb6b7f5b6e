package middleware

import (
	"net/http"
	"strconv"

	"travelwise/internal/ratelimit"
	"travelwise/internal/transport/httpdto"
	"travelwise/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware limits requests per client IP. It is attached to the auth
// route group only.
func RateLimitMiddleware(limiter ratelimit.Limiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			l.Errorf("rate limit check failed: %v", err)
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("rate limit error", httpdto.CodeInternal))
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", httpdto.CodeRateLimited))
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *ratelimit.Result) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
