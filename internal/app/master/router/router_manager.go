/**
 * 路由:路由管理器
 * @author: sun977
 * @date: 2025.10.10
 * @description: 路由管理器，包含Router结构体、NewRouter函数和SetupRoutes主函数
 * @func:
 */
package router

import (
	"io"

	"rbacmaster/internal/app/master/middleware"
	"rbacmaster/internal/app/master/setup"
	"rbacmaster/internal/config"
	systemHandler "rbacmaster/internal/handler/system"
	"rbacmaster/internal/pkg/utils"

	// 统一使用项目封装的日志模块，便于采集规范字段与统一输出
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/service/menu"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Router 路由管理器
type Router struct {
	config            *config.Config
	engine            *gin.Engine
	middlewareManager *middleware.MiddlewareManager
	authModule        *setup.AuthModule
	rbacModule        *setup.RBACModule
	healthHandler     *systemHandler.HealthHandler
}

// NewRouter 创建路由管理器实例
// redisClient 为 nil 时令牌存储与菜单缓存使用进程内实现
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Router {
	// 绑定校验规则与字段名
	utils.RegisterValidators()

	// 模块构建
	authModule := setup.BuildAuthModule(db, redisClient, cfg)
	rbacModule := setup.BuildRBACModule(db, redisClient, cfg)
	// 角色分配后清除该用户菜单缓存
	authModule.UserService.SetMenuCacheInvalidator(rbacModule.MenuService)

	// 初始化中间件管理器
	middlewareManager := middleware.NewMiddlewareManager(
		authModule.SessionService,
		authModule.RBACService,
		&cfg.Security,
		cfg.App.IsDevelopment(),
	)

	// 创建Gin引擎
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	return &Router{
		config:            cfg,
		engine:            engine,
		middlewareManager: middlewareManager,
		authModule:        authModule,
		rbacModule:        rbacModule,
		healthHandler:     systemHandler.NewHealthHandler(db, redisClient),
	}
}

// SetupRoutes 设置全局中间件和路由
// 在这里配置调用各个路由模块
func (r *Router) SetupRoutes() {
	// 1) 全局中间件注册
	r.registerGlobalMiddleware()

	// 2) 路由注册
	r.registerRoutes()
}

// GetEngine 获取Gin引擎实例
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// MenuService 返回菜单服务(配置热更新时清空菜单缓存)
func (r *Router) MenuService() *menu.Service {
	return r.rbacModule.MenuService
}

// Close 释放限流器与内存令牌存储的后台协程
func (r *Router) Close() error {
	r.middlewareManager.Close()
	if closer, ok := r.authModule.TokenStore.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// registerGlobalMiddleware 注册全局中间件
// 顺序：Recovery -> RequestID -> CORS -> 安全响应头 -> 访问日志 -> 限流
func (r *Router) registerGlobalMiddleware() {
	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerGlobalMiddleware",
		"operation": "register_global_middleware",
		"option":    "middlewareManager.attach",
		"func_name": "router.registerGlobalMiddleware",
	}).Info("开始注册全局中间件")

	r.engine.Use(r.middlewareManager.GinRecoveryMiddleware())
	r.engine.Use(r.middlewareManager.GinRequestIDMiddleware())
	r.engine.Use(r.middlewareManager.GinCORSMiddleware())
	r.engine.Use(r.middlewareManager.GinSecurityHeadersMiddleware())
	r.engine.Use(r.middlewareManager.GinLoggingMiddleware())
	r.engine.Use(r.middlewareManager.GinRateLimitMiddleware())

	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerGlobalMiddleware",
		"operation": "register_global_middleware",
		"option":    "middlewareManager.attach.done",
		"func_name": "router.registerGlobalMiddleware",
	}).Info("全局中间件注册完成")
}

// registerRoutes 注册路由
func (r *Router) registerRoutes() {
	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerRoutes",
		"operation": "register_routes",
		"option":    "routes.attach.begin",
		"func_name": "router.registerRoutes",
	}).Info("开始注册路由")

	api := r.engine.Group("/api")

	// 公共路由（不需要认证）
	r.setupPublicRoutes(api)
	// 用户认证路由（需要 JWT 认证）
	r.setupUserRoutes(api)
	// 管理员路由（需要管理员权限）
	r.setupAdminRoutes(api)
	// 种子数据管理路由（功能开关控制）
	r.setupDevRoutes(api)
	// 健康检查路由
	r.setupHealthRoutes(api)

	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerRoutes",
		"operation": "register_routes",
		"option":    "routes.attach.done",
		"func_name": "router.registerRoutes",
	}).Info("路由注册完成")
}
