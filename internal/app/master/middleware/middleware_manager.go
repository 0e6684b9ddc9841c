package middleware

import (
	"sync"

	"rbacmaster/internal/config"
	"rbacmaster/internal/service/auth"
)

// MiddlewareManager 中间件管理器
// 负责管理所有Gin框架的中间件，提供统一的中间件接口
type MiddlewareManager struct {
	sessionService  *auth.SessionService   // 会话服务，用于JWT令牌验证
	rbacService     *auth.RBACService      // RBAC服务，用于角色和账户状态验证
	securityConfig  *config.SecurityConfig // 安全配置，用于中间件配置
	isDevelopment   bool                   // 开发环境不强制 HSTS
	rateLimiter     RateLimiter
	rateLimiterOnce sync.Once
	authLimiter     RateLimiter
	authLimiterOnce sync.Once
}

// NewMiddlewareManager 创建中间件管理器
// 参数:
//   - sessionService: 会话服务实例
//   - rbacService: RBAC服务实例
//   - securityConfig: 安全配置实例
//   - isDevelopment: 是否开发环境
//
// 返回: 中间件管理器实例
func NewMiddlewareManager(sessionService *auth.SessionService, rbacService *auth.RBACService, securityConfig *config.SecurityConfig, isDevelopment bool) *MiddlewareManager {
	return &MiddlewareManager{
		sessionService: sessionService,
		rbacService:    rbacService,
		securityConfig: securityConfig,
		isDevelopment:  isDevelopment,
	}
}

// Close 停止限流器的后台清理协程
func (m *MiddlewareManager) Close() {
	for _, l := range []RateLimiter{m.rateLimiter, m.authLimiter} {
		if stopper, ok := l.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}
}
