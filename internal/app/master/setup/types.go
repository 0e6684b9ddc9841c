/**
 * 初始化
 * @description: 包含master程序初始化相关的类型定义
 * @func: 各模块把 Handler 与 Service 一起暴露，Service 供中间件和其他模块复用
 */
package setup

import (
	authHandler "rbacmaster/internal/handler/auth"
	systemHandler "rbacmaster/internal/handler/system"
	authService "rbacmaster/internal/service/auth"
	"rbacmaster/internal/service/menu"
	"rbacmaster/internal/service/seed"
)

// AuthModule 是认证模块的聚合输出
// 字段说明：
// - LoginHandler/LogoutHandler/RefreshHandler/RegisterHandler：认证相关的路由处理器
// - AssignRoleHandler：管理员为用户追加角色
// - SessionService/UserService/RBACService：对外暴露给中间件使用的服务实例
// - TokenStore：刷新令牌与撤销记录存储(Redis 或内存)
type AuthModule struct {
	// Handlers（认证相关处理器）
	LoginHandler    *authHandler.LoginHandler
	LogoutHandler   *authHandler.LogoutHandler
	RefreshHandler  *authHandler.RefreshHandler
	RegisterHandler *authHandler.RegisterHandler

	AssignRoleHandler *authHandler.AssignRoleHandler

	// Services（对外暴露以供 router_manager 及其他模块使用）
	SessionService *authService.SessionService
	UserService    *authService.UserService
	RBACService    *authService.RBACService
	TokenStore     authService.TokenStore
}

// RBACModule 是菜单权限模块的聚合输出
// 字段说明：
// - MenuHandler：菜单树查询路由处理器
// - DevHandler：种子数据管理路由处理器(仅 dev_endpoints 开启时注册)
// - MenuService：菜单服务，配置热更新时用于清空菜单缓存
// - SeedService：种子数据服务，cmd/migrate 复用
type RBACModule struct {
	// Handlers
	MenuHandler *systemHandler.MenuHandler
	DevHandler  *systemHandler.DevHandler

	// Services
	MenuService *menu.Service
	SeedService *seed.SeedService
}
