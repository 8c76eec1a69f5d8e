package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/filevault/pkg/configs"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiters 按 key 维护令牌桶，闲置超过 ttl 的条目在下一次访问时被清掉.
type keyedLimiters struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newKeyedLimiters(cfg configs.RateLimitConfig) *keyedLimiters {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = configs.DefaultRateLimitIdleTTL
	}

	return &keyedLimiters{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (k *keyedLimiters) allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= k.ttl {
		for id, e := range k.entries {
			if now.Sub(e.lastSeen) >= k.ttl {
				delete(k.entries, id)
			}
		}

		k.lastSweep = now
	}

	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}

	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

func (k *keyedLimiters) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.entries)
}

// RateLimitMiddleware 返回一个基于配置的限流中间件.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if keyMode == "global" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				abortRateLimited(c)
				return
			}

			c.Next()
		}
	}

	limiters := newKeyedLimiters(cfg)

	return func(c *gin.Context) {
		if !limiters.allow(rateLimitKey(c, keyMode)) {
			abortRateLimited(c)
			return
		}

		c.Next()
	}
}

// rateLimitKey 限流在认证之前执行，user 模式直接读身份头.
func rateLimitKey(c *gin.Context, mode string) string {
	var key string

	switch {
	case strings.HasPrefix(mode, "header:"):
		key = c.GetHeader(strings.TrimPrefix(mode, "header:"))
	case mode == "user", mode == "":
		key = strings.ToLower(IdentityFromHeaders(c, false).Email)
		if key != "" {
			key = "user:" + key
		}
	}

	if key == "" {
		key = clientIP(c)
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

func abortRateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		gin.H{"error": "rate limit exceeded, please try again later", "code": "RATE_LIMITED"})
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return host
}
