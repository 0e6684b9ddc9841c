package setup

import (
	"rbacmaster/internal/config"
	systemHandler "rbacmaster/internal/handler/system"
	authPkg "rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/pkg/logger"
	memoryRepo "rbacmaster/internal/repo/memory"
	systemRepo "rbacmaster/internal/repo/mysql/system"
	redisRepo "rbacmaster/internal/repo/redis"
	"rbacmaster/internal/service/menu"
	"rbacmaster/internal/service/seed"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// BuildRBACModule 构建菜单权限模块
// 责任边界：
// - 初始化角色、菜单仓库与菜单服务(可选菜单树缓存)
// - 初始化种子数据服务，数据变更后清空菜单缓存
// - 初始化菜单与开发辅助处理器
func BuildRBACModule(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *RBACModule {
	logger.WithFields(map[string]interface{}{
		"path":      "internal.app.master.setup.rbac.BuildRBACModule",
		"operation": "setup",
		"option":    "setup.rbac.begin",
		"func_name": "setup.rbac.BuildRBACModule",
	}).Info("开始构建菜单权限模块")

	// 1) 初始化仓库
	roleRepo := systemRepo.NewRoleRepository(db)
	menuRepo := systemRepo.NewMenuRepository(db)

	// 2) 初始化服务
	menuService := menu.NewService(roleRepo, menuRepo, menuRepo, menu.Options{
		Cache:    BuildMenuCache(redisClient, cfg.Menu.Cache),
		CacheTTL: cfg.Menu.Cache.TTL,
		Logger:   logger.L(),
	})
	passwordManager := authPkg.NewPasswordManager(cfg.Security.Password.BcryptCost)
	seedService := seed.NewSeedService(db, passwordManager, menuService)

	// 3) 聚合输出
	module := &RBACModule{
		MenuHandler: systemHandler.NewMenuHandler(menuService),
		DevHandler:  systemHandler.NewDevHandler(seedService),
		MenuService: menuService,
		SeedService: seedService,
	}

	logger.WithFields(map[string]interface{}{
		"path":      "internal.app.master.setup.rbac.BuildRBACModule",
		"operation": "setup",
		"option":    "setup.rbac.done",
		"func_name": "setup.rbac.BuildRBACModule",
	}).Info("菜单权限模块构建完成")

	return module
}

// BuildMenuCache 根据配置选择菜单树缓存，未启用时返回 nil
// store 为 redis 但 Redis 未启用时回退到内存缓存
func BuildMenuCache(redisClient *redis.Client, cfg config.MenuCacheConfig) menu.MenuTreeCache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Store == "redis" && redisClient != nil {
		return redisRepo.NewMenuCacheRepository(redisClient, cfg.Prefix)
	}
	if cfg.Store == "redis" {
		logger.WithFields(map[string]interface{}{
			"path":      "internal.app.master.setup.rbac.BuildMenuCache",
			"operation": "setup",
			"option":    "setup.rbac.cache.fallback_memory",
			"func_name": "setup.rbac.BuildMenuCache",
		}).Warn("Redis 未启用，菜单缓存使用内存实现")
	}
	return memoryRepo.NewMenuCacheRepository(cfg.Size, cfg.TTL)
}
