/**
 * 中间件:限流器中间件
 * @description: 基于 golang.org/x/time/rate 的按键令牌桶限流
 * @func:
 *   - GinRateLimitMiddleware 全局限流器[根据客户端IP进行限流，参数来自 security.rate_limit]
 *   - GinAuthRateLimitMiddleware 认证接口限流器[登录、注册、刷新令牌，按 IP+路径限流，限制更严格]
 */
package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(key string) bool
	Reset(key string)
}

// KeyedLimiter 按键隔离的令牌桶限流器，长时间未使用的键会被清理
type KeyedLimiter struct {
	limiters map[string]*limiterEntry
	mutex    sync.Mutex
	rate     rate.Limit
	burst    int
	idle     time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter 创建限流器
// rps: 每秒生成的令牌数；burst: 桶容量；idle: 键的空闲清理时间
func NewKeyedLimiter(rps float64, burst int, idle time.Duration) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	l := &KeyedLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(rps),
		burst:    burst,
		idle:     idle,
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow 检查是否允许请求
func (l *KeyedLimiter) Allow(key string) bool {
	now := time.Now()
	l.mutex.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mutex.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Reset 重置指定key的限流状态
func (l *KeyedLimiter) Reset(key string) {
	l.mutex.Lock()
	delete(l.limiters, key)
	l.mutex.Unlock()
}

// Stop 停止清理协程
func (l *KeyedLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			l.evictIdle(now)
		}
	}
}

func (l *KeyedLimiter) evictIdle(now time.Time) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idle {
			delete(l.limiters, key)
		}
	}
}

// GinRateLimitMiddleware 默认限流中间件
// 使用配置文件中的限流策略
func (m *MiddlewareManager) GinRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := &m.securityConfig.RateLimit
		if !cfg.Enabled || slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		m.rateLimiterOnce.Do(func() {
			m.rateLimiter = NewKeyedLimiter(cfg.RequestsPerSecond, cfg.BurstSize, 15*time.Minute)
		})

		clientIP := utils.GetClientIP(c)
		if !m.rateLimiter.Allow(clientIP) {
			rejectRateLimited(c, "rate_limit_exceeded", clientIP)
			return
		}

		c.Next()
	}
}

// GinAuthRateLimitMiddleware 认证接口限流中间件
// 针对登录、注册等认证接口的严格限流：每秒2个请求，突发5个
func (m *MiddlewareManager) GinAuthRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.securityConfig.RateLimit.Enabled {
			c.Next()
			return
		}

		m.authLimiterOnce.Do(func() {
			m.authLimiter = NewKeyedLimiter(2, 5, 10*time.Minute)
		})

		clientIP := utils.GetClientIP(c)
		// 使用IP+路径作为限流key
		key := fmt.Sprintf("%s:%s", clientIP, c.Request.URL.Path)
		if !m.authLimiter.Allow(key) {
			rejectRateLimited(c, "auth_rate_limit_exceeded", clientIP)
			return
		}

		c.Next()
	}
}

func rejectRateLimited(c *gin.Context, operation, clientIP string) {
	logger.WithFields(map[string]interface{}{
		"path":       c.Request.URL.Path,
		"operation":  operation,
		"option":     "block_request",
		"func_name":  "middleware.ratelimit",
		"client_ip":  clientIP,
		"request_id": utils.GetRequestID(c),
	}).Warn("Rate limit exceeded for client")

	c.JSON(http.StatusTooManyRequests, system.APIResponse{
		Code:       http.StatusTooManyRequests,
		Status:     "failed",
		ResultCode: system.CodeOperationDenied,
		Message:    "too many requests, please try again later",
	})
	c.Abort()
}
