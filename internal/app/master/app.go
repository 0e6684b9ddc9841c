package master

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rbacmaster/internal/app/master/router"
	"rbacmaster/internal/config"
	"rbacmaster/internal/pkg/database"
	"rbacmaster/internal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App 应用程序结构体
type App struct {
	config      *config.Config
	logManager  *logger.LoggerManager
	db          *gorm.DB
	redisClient *redis.Client
	router      *router.Router
	watcher     *config.ConfigWatcher
	server      *http.Server
}

// NewApp 创建新的应用程序实例
// 依次完成：加载配置 -> 初始化日志 -> 连接数据库并迁移 -> 连接Redis(可选) -> 构建路由
func NewApp(configPath, env string) (*App, error) {
	cfg, err := config.LoadConfig(configPath, env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logManager, err := logger.InitLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.LogSystemEvent("database", "connect", err.Error(), logrus.ErrorLevel, map[string]interface{}{
			"driver": cfg.Database.Driver,
		})
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Database.Redis.Enabled {
		redisClient, err = database.NewRedisConnection(&cfg.Database.Redis)
		if err != nil {
			_ = database.Close(db)
			logger.LogSystemEvent("redis", "connect", err.Error(), logrus.ErrorLevel, nil)
			return nil, err
		}
	}

	r := router.NewRouter(db, redisClient, cfg)
	r.SetupRoutes()

	app := &App{
		config:      cfg,
		logManager:  logManager,
		db:          db,
		redisClient: redisClient,
		router:      r,
		server: &http.Server{
			Addr:           cfg.Server.GetAddress(),
			Handler:        r.GetEngine(),
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}

	// 配置热更新失败不影响启动
	if err := app.startWatcher(configPath, env); err != nil {
		logger.LogSystemEvent("config", "watch", err.Error(), logrus.WarnLevel, nil)
	}

	logger.LogSystemEvent("app", "init", "应用初始化完成", logrus.InfoLevel, map[string]interface{}{
		"environment": cfg.App.Environment,
		"driver":      cfg.Database.Driver,
		"redis":       redisClient != nil,
	})
	return app, nil
}

// startWatcher 监听配置文件：日志级别变化时更新日志，菜单缓存配置变化时清空菜单缓存
func (a *App) startWatcher(configPath, env string) error {
	watcher, err := config.NewConfigWatcher(configPath, env, a.config, logger.L())
	if err != nil {
		return err
	}

	watcher.AddCallback(func(oldConfig, newConfig *config.Config) error {
		if !config.LogLevelChanged(oldConfig, newConfig) {
			return nil
		}
		return a.logManager.UpdateConfig(newConfig.Log)
	})
	watcher.AddCallback(func(oldConfig, newConfig *config.Config) error {
		if !config.MenuCacheChanged(oldConfig, newConfig) {
			return nil
		}
		// 缓存实例在启动时确定，这里只保证不读到旧配置下写入的数据
		return a.router.MenuService().InvalidateAll(context.Background())
	})

	if err := watcher.Start(); err != nil {
		return err
	}
	a.watcher = watcher
	return nil
}

// GetConfig 获取配置
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *router.Router {
	return a.router
}

// Start 启动HTTP服务，阻塞直到服务关闭
func (a *App) Start() error {
	logger.LogSystemEvent("server", "start", "HTTP服务启动", logrus.InfoLevel, map[string]interface{}{
		"address": a.server.Addr,
		"mode":    a.config.Server.Mode,
	})
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭：先停止接收请求，再释放后台协程与连接
func (a *App) Stop(ctx context.Context) error {
	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown server: %w", err))
	}
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop config watcher: %w", err))
		}
	}
	if err := a.router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close router: %w", err))
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := database.Close(a.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	logger.LogSystemEvent("app", "stop", "应用已停止", logrus.InfoLevel, nil)
	if err := a.logManager.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
