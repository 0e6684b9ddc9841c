/**
 * 路由:健康检查路由
 * @author: sun977
 * @date: 2025.10.10
 * @description: 包含健康检查路由与连通性测试路由
 * @func:
 */

package router

import (
	"net/http"

	"rbacmaster/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// setupHealthRoutes 设置健康检查路由
func (r *Router) setupHealthRoutes(api *gin.RouterGroup) {
	// 健康检查
	api.GET("/health", r.healthCheck)
	// 就绪检查(数据库、Redis)
	api.GET("/ready", r.healthHandler.Ready)
	// 存活检查
	api.GET("/live", r.livenessCheck)

	test := api.Group("/test")
	{
		test.GET("/ping", r.healthHandler.Ping)
		test.GET("/db-connection", r.healthHandler.DBConnection)
	}
}

// 健康检查处理器
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   r.config.App.Version,
		"timestamp": logger.NowFormatted(),
	})
}

// livenessCheck 存活检查处理器
func (r *Router) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": logger.NowFormatted(),
	})
}
