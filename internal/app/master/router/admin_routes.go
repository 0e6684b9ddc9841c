/**
 * 路由:管理员路由
 * @author: sun977
 * @date: 2025.10.10
 * @description: 需要 SuperAdmin 或 Admin 角色的路由
 * @func:
 */
package router

import (
	"rbacmaster/internal/model"

	"github.com/gin-gonic/gin"
)

// setupAdminRoutes 设置管理员路由
func (r *Router) setupAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/menu")
	admin.Use(r.middlewareManager.GinJWTAuthMiddleware())
	admin.Use(r.middlewareManager.GinUserActiveMiddleware())
	admin.Use(r.middlewareManager.GinRequireAnyRole(model.RoleCodeSuperAdmin, model.RoleCodeAdmin))
	{
		admin.GET("/:userId/menus", r.rbacModule.MenuHandler.GetUserMenus)
	}

	users := api.Group("/users")
	users.Use(r.middlewareManager.GinJWTAuthMiddleware())
	users.Use(r.middlewareManager.GinUserActiveMiddleware())
	users.Use(r.middlewareManager.GinRequireAnyRole(model.RoleCodeSuperAdmin, model.RoleCodeAdmin))
	{
		users.POST("/:userId/roles", r.authModule.AssignRoleHandler.GinAssignRole)
	}
}
