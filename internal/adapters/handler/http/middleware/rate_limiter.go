package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit describes one fixed-window budget. Scope keeps budgets apart in
// Redis, so "api" and "auth" can be applied to the same client.
type RateLimit struct {
	Scope  string
	Limit  int
	Window time.Duration
}

func (l RateLimit) key(clientIP string) string {
	return "rate_limit:" + l.Scope + ":" + clientIP
}

// RejectionObserver is told about every request the limiter turns away.
type RejectionObserver interface {
	Rejected(scope string)
}

// RateLimiter counts requests per client IP. The window starts on the first
// request and is never extended by later ones. Redis errors fail open.
func RateLimiter(rdb *redis.Client, limit RateLimit, observer RejectionObserver, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := limit.key(c.ClientIP())

		var incr *redis.IntCmd
		var ttl *redis.DurationCmd
		_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, limit.Window)
			ttl = pipe.PTTL(ctx, key)
			return nil
		})
		if err != nil {
			logger.Warn("Rate limiter skipped", zap.String("scope", limit.Scope), zap.Error(err))
			c.Next()
			return
		}

		count := incr.Val()
		remaining := ttl.Val()
		if remaining <= 0 {
			remaining = limit.Window
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit.Limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(remaining).Unix(), 10))

		if count > int64(limit.Limit) {
			if observer != nil {
				observer.Rejected(limit.Scope)
			}
			retryIn := int(remaining.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryIn))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests. Slow down!",
			})
			return
		}

		c.Next()
	}
}
