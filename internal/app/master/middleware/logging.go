/**
 * 中间件:日志相关中间件
 * @description: 定义日志中间件
 * @func:
 *   - GinLoggingMiddleware Gin日志中间件[同时把客户端IP和请求ID存储到Gin上下文和标准上下文,供后续使用]
 */
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GinLoggingMiddleware Gin日志中间件
// 记录所有HTTP请求的访问日志，4xx/5xx 额外记录错误日志
// 使用方式: router.Use(middlewareManager.GinLoggingMiddleware())，需在请求ID中间件之后
func (m *MiddlewareManager) GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		clientIP := utils.GetClientIP(c)
		XRequestID := utils.GetRequestID(c)

		// 存储到Gin上下文
		c.Set("client_ip", clientIP)
		// 存储到标准上下文，service 层只使用标准上下文
		c.Request = c.Request.WithContext(utils.WithRequestInfo(c.Request.Context(), clientIP, XRequestID))

		c.Next()

		userID := utils.GetCurrentUserID(c)
		logger.LogAccessRequest(c, start, XRequestID, userID)

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}

		errorMsg := c.Errors.String()
		if errorMsg == "" {
			errorMsg = http.StatusText(statusCode)
		}
		logger.LogError(fmt.Errorf("HTTP %d: %s", statusCode, errorMsg), XRequestID, userID, clientIP, c.Request.URL.Path, c.Request.Method, map[string]interface{}{
			"operation":   "http_request",
			"status_code": statusCode,
			"username":    utils.GetCurrentUsername(c),
			"user_agent":  c.GetHeader("User-Agent"),
			"duration":    time.Since(start).Milliseconds(),
		})
	}
}
