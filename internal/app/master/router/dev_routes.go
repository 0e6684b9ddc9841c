/**
 * 路由:种子数据路由
 * @description: 初始化、清空、重置演示数据，仅 app.features.dev_endpoints 开启时注册
 * @func:
 */
package router

import (
	"rbacmaster/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// setupDevRoutes 设置种子数据管理路由
func (r *Router) setupDevRoutes(api *gin.RouterGroup) {
	if !r.config.App.Features.DevEndpoints {
		return
	}
	logger.WithFields(map[string]interface{}{
		"path":      "router.setupDevRoutes",
		"operation": "register_routes",
		"option":    "routes.dev.enabled",
		"func_name": "router.setupDevRoutes",
	}).Warn("开发辅助接口已开启，请勿在生产环境使用")

	dev := api.Group("/dev")
	{
		dev.POST("/initial", r.rbacModule.DevHandler.Initialize)
		dev.POST("/clean", r.rbacModule.DevHandler.Clean)
		dev.POST("/reset", r.rbacModule.DevHandler.Reset)
	}
}
