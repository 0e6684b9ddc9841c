package setup

import (
	"time"

	"rbacmaster/internal/config"
	authHandler "rbacmaster/internal/handler/auth"
	authPkg "rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/pkg/logger"
	memoryRepo "rbacmaster/internal/repo/memory"
	systemRepo "rbacmaster/internal/repo/mysql/system"
	redisRepo "rbacmaster/internal/repo/redis"
	authService "rbacmaster/internal/service/auth"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// tokenCleanupInterval 内存令牌存储的过期清理间隔
const tokenCleanupInterval = 5 * time.Minute

// BuildAuthModule 构建认证模块（Auth）
// 责任边界：
// - 初始化认证相关的工具、仓库与服务（JWTManager、PasswordManager、TokenStore、UserService、SessionService、RBACService）
// - 初始化认证相关的处理器（Login/Logout/Refresh/Register）
//
// 参数说明：
// - db：数据库连接（gorm.DB），用于构建系统用户仓库
// - redisClient：Redis 客户端；为 nil 时令牌存储使用进程内实现
// - cfg：全局配置；用于初始化 JWT 与密码参数
func BuildAuthModule(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *AuthModule {
	logger.WithFields(map[string]interface{}{
		"path":      "internal.app.master.setup.auth.BuildAuthModule",
		"operation": "setup",
		"option":    "setup.auth.begin",
		"func_name": "setup.auth.BuildAuthModule",
	}).Info("开始构建认证模块")

	// 1) 初始化工具：JWTManager 与 PasswordManager
	jwtCfg := cfg.Security.JWT
	jwtManager := authPkg.NewJWTManager(jwtCfg.Secret, jwtCfg.Issuer, jwtCfg.Audience, jwtCfg.AccessTokenExpire, jwtCfg.RefreshTokenExpire)
	passwordManager := authPkg.NewPasswordManager(cfg.Security.Password.BcryptCost)

	// 2) 初始化令牌存储：启用 Redis 时使用 Redis，否则使用内存
	var tokenStore authService.TokenStore
	storeName := "memory"
	if redisClient != nil {
		tokenStore = redisRepo.NewSessionRepository(redisClient)
		storeName = "redis"
	} else {
		tokenStore = memoryRepo.NewSessionRepository(tokenCleanupInterval)
	}
	logger.WithFields(map[string]interface{}{
		"path":      "internal.app.master.setup.auth.BuildAuthModule",
		"operation": "setup",
		"option":    "setup.auth.repo.session." + storeName,
		"func_name": "setup.auth.BuildAuthModule",
	}).Info("令牌存储初始化完成")

	// 3) 初始化系统用户仓库与服务
	userRepo := systemRepo.NewUserRepository(db)
	userService := authService.NewUserService(userRepo, passwordManager)
	rbacService := authService.NewRBACService(userRepo)
	sessionService := authService.NewSessionService(userRepo, passwordManager, jwtManager, tokenStore)

	// 4) 初始化处理器（认证相关）
	module := &AuthModule{
		LoginHandler:      authHandler.NewLoginHandler(sessionService),
		LogoutHandler:     authHandler.NewLogoutHandler(sessionService),
		RefreshHandler:    authHandler.NewRefreshHandler(sessionService),
		RegisterHandler:   authHandler.NewRegisterHandler(userService),
		AssignRoleHandler: authHandler.NewAssignRoleHandler(userService),
		SessionService:    sessionService,
		UserService:       userService,
		RBACService:       rbacService,
		TokenStore:        tokenStore,
	}

	logger.WithFields(map[string]interface{}{
		"path":      "internal.app.master.setup.auth.BuildAuthModule",
		"operation": "setup",
		"option":    "setup.auth.done",
		"func_name": "setup.auth.BuildAuthModule",
	}).Info("认证模块构建完成")

	return module
}
