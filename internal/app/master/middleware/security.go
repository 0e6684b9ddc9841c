/**
 * 中间件:安全中间件
 * @description: 定义安全中间件
 * @func:
 *   - GinCORSMiddleware CORS跨域资源共享中间件[gin-contrib/cors，参数来自 security.cors]
 *   - GinSecurityHeadersMiddleware 安全头部中间件[unrolled/secure，参数来自 security.headers]
 *   - GinRequestIDMiddleware 请求ID中间件,为每个请求添加唯一的请求ID,方便日志跟踪和调试
 *   - GinRecoveryMiddleware panic恢复中间件,返回统一的500响应并记录错误日志
 */
package middleware

import (
	"fmt"
	"net/http"

	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unrolled/secure"
)

// GinCORSMiddleware CORS跨域资源共享中间件
// 未启用时返回空中间件
func (m *MiddlewareManager) GinCORSMiddleware() gin.HandlerFunc {
	cfg := m.securityConfig.CORS
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	corsConfig := cors.Config{
		AllowAllOrigins:  cfg.AllowAllOrigins,
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	// 两种来源配置互斥，未配置任何来源时放开全部
	if corsConfig.AllowAllOrigins || len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(corsConfig.AllowHeaders) == 0 {
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	}

	return cors.New(corsConfig)
}

// GinSecurityHeadersMiddleware 安全头中间件
// 添加各种安全相关的HTTP头部，HSTS 仅在 HTTPS 请求且非开发环境下发送
func (m *MiddlewareManager) GinSecurityHeadersMiddleware() gin.HandlerFunc {
	headers := m.securityConfig.Headers
	referrerPolicy := headers.ReferrerPolicy
	if referrerPolicy == "" {
		referrerPolicy = "strict-origin-when-cross-origin"
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             headers.FrameDeny,
		ContentTypeNosniff:    headers.ContentTypeNosniff,
		BrowserXssFilter:      headers.BrowserXSSFilter,
		ReferrerPolicy:        referrerPolicy,
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none'",
		STSSeconds:            headers.STSSeconds,
		STSIncludeSubdomains:  headers.STSSeconds > 0,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         m.isDevelopment,
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		// 重定向响应不再改写头部
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}

// GinRequestIDMiddleware 请求ID中间件
// 为每个请求生成唯一ID，便于日志追踪和问题排查；已携带 X-Request-ID 时沿用
func (m *MiddlewareManager) GinRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		c.Set(utils.GinKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// GinRecoveryMiddleware panic恢复中间件
func (m *MiddlewareManager) GinRecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.LogError(fmt.Errorf("panic recovered: %v", recovered), utils.GetRequestID(c), utils.GetCurrentUserID(c),
			utils.GetClientIP(c), c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"operation": "panic_recovery",
			})
		c.AbortWithStatusJSON(http.StatusInternalServerError, system.APIResponse{
			Code:       http.StatusInternalServerError,
			Status:     "failed",
			ResultCode: system.CodeInternalError,
			Message:    "internal server error",
		})
	})
}
