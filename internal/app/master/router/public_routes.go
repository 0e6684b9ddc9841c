/**
 * 路由:公共路由
 * @author: sun977
 * @date: 2025.10.10
 * @description: 登录、注册、刷新令牌，不需要认证，单独限流
 * @func:
 */
package router

import (
	"github.com/gin-gonic/gin"
)

// setupPublicRoutes 设置公共路由（不需要认证）
func (r *Router) setupPublicRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.Use(r.middlewareManager.GinAuthRateLimitMiddleware())
	{
		auth.POST("/login", r.authModule.LoginHandler.GinLogin)
		auth.POST("/refresh", r.authModule.RefreshHandler.GinRefreshToken)
		// 注册功能开关
		if r.config.App.Features.UserRegistration {
			auth.POST("/register", r.authModule.RegisterHandler.GinRegister)
		}
	}
}
