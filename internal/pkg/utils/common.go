/*
 * @description: 通用的工具包，gin 上下文与标准上下文之间的取值约定
 */

package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ContextKey 类型用于标准上下文键的定义，避免使用裸字符串造成键冲突
type ContextKey string

const (
	// ContextKeyClientIP 标准上下文中存储客户端IP的统一键
	ContextKeyClientIP ContextKey = "client_ip"
	// ContextKeyRequestID 标准上下文中存储请求ID的统一键
	ContextKeyRequestID ContextKey = "request_id"
)

// gin 上下文键，由 JWT 中间件和请求ID中间件写入
const (
	GinKeyUserID    = "user_id"
	GinKeyUsername  = "username"
	GinKeyRoles     = "roles"
	GinKeyRequestID = "request_id"
	GinKeyClaims    = "claims"
)

// GetCurrentUserID 从 Gin 上下文中提取当前用户ID，不存在时返回0
// 来源：GinJWTAuthMiddleware() 写入
func GetCurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(GinKeyUserID); ok {
		if id, ok2 := v.(uint); ok2 {
			return id
		}
	}
	return 0
}

// GetCurrentUsername 从 Gin 上下文中提取当前用户名
func GetCurrentUsername(c *gin.Context) string {
	return c.GetString(GinKeyUsername)
}

// GetCurrentRoles 从 Gin 上下文中提取当前用户的角色编码
func GetCurrentRoles(c *gin.Context) []string {
	return c.GetStringSlice(GinKeyRoles)
}

// GetRequestID 从 Gin 上下文中提取请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(GinKeyRequestID)
}

// WithRequestInfo 把客户端IP和请求ID写入标准上下文，供 service 层以下读取
func WithRequestInfo(ctx context.Context, clientIP, requestID string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetClientIPFromContext 从标准上下文读取客户端IP，不存在时返回空字符串
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// GetRequestIDFromContext 从标准上下文读取请求ID
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
