/**
 * 路由:用户路由
 * @author: sun977
 * @date: 2025.10.10
 * @description: 登录用户可访问的路由：登出、查询自己的菜单树
 * @func:
 */
package router

import (
	"github.com/gin-gonic/gin"
)

// setupUserRoutes 设置用户认证路由（需要 JWT 认证且账号启用）
func (r *Router) setupUserRoutes(api *gin.RouterGroup) {
	authed := api.Group("")
	authed.Use(r.middlewareManager.GinJWTAuthMiddleware())
	authed.Use(r.middlewareManager.GinUserActiveMiddleware())
	{
		authed.POST("/auth/logout", r.authModule.LogoutHandler.GinLogout)
		authed.GET("/menu/my-menus", r.rbacModule.MenuHandler.GetMyMenus)
	}
}
