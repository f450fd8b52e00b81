package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

const rateLimitWindow = time.Minute

type RateLimitMiddleware struct {
	redis  *redis.Client
	config *config.Config
	logger *logger.Logger
}

func NewRateLimitMiddleware(redis *redis.Client, config *config.Config, logger *logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redis:  redis,
		config: config,
		logger: logger,
	}
}

// TenantRateLimit implements per-tenant rate limiting. It must run after
// TenantContext.
func (m *RateLimitMiddleware) TenantRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := tenancy.FromContext(c.Request.Context())
		if err != nil {
			m.logger.Error("Tenant rate limit without tenant context", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Tenant context missing"})
			return
		}

		key := fmt.Sprintf("rate_limit:tenant:%s", tenant.Identifier)
		m.enforce(c, key, m.tenantLimit(), "Rate limit exceeded")
	}
}

// GlobalRateLimit implements global rate limiting based on IP
func (m *RateLimitMiddleware) GlobalRateLimit(limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:global:%s", c.ClientIP())
		m.enforce(c, key, limit, "Global rate limit exceeded")
	}
}

func (m *RateLimitMiddleware) enforce(c *gin.Context, key string, limit int, message string) {
	ctx := c.Request.Context()
	reset := strconv.FormatInt(time.Now().Add(rateLimitWindow).Unix(), 10)

	current, err := m.redis.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		// Fail open on Redis errors.
		m.logger.Error("Redis error in rate limiting", err)
		c.Next()
		return
	}

	if current >= limit {
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", "0")
		c.Header("X-RateLimit-Reset", reset)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": message,
			"limit": limit,
		})
		return
	}

	pipe := m.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		m.logger.Error("Redis pipeline error in rate limiting", err)
	}

	remaining := limit - (current + 1)
	if remaining < 0 {
		remaining = 0
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", reset)
	c.Next()
}

func (m *RateLimitMiddleware) tenantLimit() int {
	if m.config.DefaultRateLimit > 0 {
		return m.config.DefaultRateLimit
	}
	return 1000
}
