package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "RBAC"

// LoadConfig 加载配置文件
// configPath: 配置文件目录，为空时使用默认路径
// env: 环境标识，支持 development, test, production
func LoadConfig(configPath, env string) (*Config, error) {
	if env == "" {
		env = getEnvFromEnvironment()
	}
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// 根据环境选择配置文件
	configFile := getConfigFileName(configPath, env)
	v.SetConfigFile(configFile)

	// 环境变量覆盖: RBAC_SERVER_PORT -> server.port
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvironmentVariables(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// MustLoadConfig 加载配置，如果失败则panic
func MustLoadConfig(configPath, env string) *Config {
	config, err := LoadConfig(configPath, env)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return config
}

// getEnvFromEnvironment 从环境变量获取环境标识
func getEnvFromEnvironment() string {
	env := os.Getenv("RBAC_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development" // 默认开发环境
	}
	return env
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	if configPath := os.Getenv("RBAC_CONFIG_PATH"); configPath != "" {
		return configPath
	}
	return "configs"
}

// getConfigFileName 根据环境获取配置文件名
func getConfigFileName(configPath, env string) string {
	var configFile string

	switch env {
	case "production", "prod":
		configFile = filepath.Join(configPath, "config.prod.yaml")
	case "test", "testing":
		configFile = filepath.Join(configPath, "config.test.yaml")
	default:
		configFile = filepath.Join(configPath, "config.yaml")
	}

	// 文件不存在时回退到默认配置文件
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(defaultConfig); err == nil {
			return defaultConfig
		}
	}

	return configFile
}

// setDefaults 设置缺省值，配置文件中未出现的字段使用这些值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.sqlite.path", "rbac.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("security.jwt.issuer", "rbacmaster")
	v.SetDefault("security.jwt.audience", "rbacmaster-web")
	v.SetDefault("security.jwt.access_token_expire", 2*time.Hour)
	v.SetDefault("security.jwt.refresh_token_expire", 7*24*time.Hour)
	v.SetDefault("security.password.bcrypt_cost", 12)

	v.SetDefault("menu.cache.store", "redis")
	v.SetDefault("menu.cache.ttl", 10*time.Minute)
	v.SetDefault("menu.cache.prefix", "rbac:menu")
	v.SetDefault("menu.cache.size", 1024)
}

// bindEnvironmentVariables 绑定环境变量
func bindEnvironmentVariables(v *viper.Viper) {
	// 数据库配置
	v.BindEnv("database.driver", "RBAC_DB_DRIVER")
	v.BindEnv("database.mysql.host", "RBAC_MYSQL_HOST")
	v.BindEnv("database.mysql.port", "RBAC_MYSQL_PORT")
	v.BindEnv("database.mysql.username", "RBAC_MYSQL_USERNAME")
	v.BindEnv("database.mysql.password", "RBAC_MYSQL_PASSWORD")
	v.BindEnv("database.mysql.database", "RBAC_MYSQL_DATABASE")

	v.BindEnv("database.postgres.host", "RBAC_POSTGRES_HOST")
	v.BindEnv("database.postgres.port", "RBAC_POSTGRES_PORT")
	v.BindEnv("database.postgres.username", "RBAC_POSTGRES_USERNAME")
	v.BindEnv("database.postgres.password", "RBAC_POSTGRES_PASSWORD")
	v.BindEnv("database.postgres.database", "RBAC_POSTGRES_DATABASE")

	v.BindEnv("database.sqlite.path", "RBAC_SQLITE_PATH")

	v.BindEnv("database.redis.host", "RBAC_REDIS_HOST")
	v.BindEnv("database.redis.port", "RBAC_REDIS_PORT")
	v.BindEnv("database.redis.password", "RBAC_REDIS_PASSWORD")
	v.BindEnv("database.redis.database", "RBAC_REDIS_DATABASE")

	// JWT配置
	v.BindEnv("security.jwt.secret", "RBAC_JWT_SECRET")
	v.BindEnv("security.jwt.issuer", "RBAC_JWT_ISSUER")
	v.BindEnv("security.jwt.audience", "RBAC_JWT_AUDIENCE")
	v.BindEnv("security.jwt.access_token_expire", "RBAC_JWT_ACCESS_TOKEN_EXPIRE")

	// 服务器配置
	v.BindEnv("server.host", "RBAC_SERVER_HOST")
	v.BindEnv("server.port", "RBAC_SERVER_PORT")
	v.BindEnv("server.mode", "RBAC_SERVER_MODE")

	// 应用配置
	v.BindEnv("app.environment", "RBAC_APP_ENVIRONMENT")
	v.BindEnv("app.debug", "RBAC_APP_DEBUG")
	v.BindEnv("app.features.dev_endpoints", "RBAC_APP_DEV_ENDPOINTS")
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if !slices.Contains([]string{"debug", "release", "test"}, config.Server.Mode) {
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	// 数据库配置
	switch config.Database.Driver {
	case "mysql":
		if config.Database.MySQL.Host == "" {
			return fmt.Errorf("mysql host is required")
		}
		if config.Database.MySQL.Database == "" {
			return fmt.Errorf("mysql database name is required")
		}
	case "postgres":
		if config.Database.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if config.Database.Postgres.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
	case "sqlite":
		if config.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("invalid database driver: %s", config.Database.Driver)
	}

	if config.Database.Redis.Enabled && config.Database.Redis.Host == "" {
		return fmt.Errorf("redis host is required when redis is enabled")
	}

	// JWT配置
	if config.Security.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if len(config.Security.JWT.Secret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 characters long")
	}
	if config.Security.JWT.AccessTokenExpire <= 0 {
		return fmt.Errorf("jwt access_token_expire must be positive")
	}

	// 日志配置
	if !slices.Contains([]string{"debug", "info", "warn", "error", "fatal", "panic"}, config.Log.Level) {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if !slices.Contains([]string{"json", "text"}, config.Log.Format) {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}
	if !slices.Contains([]string{"stdout", "stderr", "file"}, config.Log.Output) {
		return fmt.Errorf("invalid log output: %s", config.Log.Output)
	}
	if config.Log.Output == "file" && config.Log.FilePath == "" {
		return fmt.Errorf("log file path is required when output is file")
	}

	// 菜单缓存配置
	if config.Menu.Cache.Enabled {
		if !slices.Contains([]string{"redis", "memory"}, config.Menu.Cache.Store) {
			return fmt.Errorf("invalid menu cache store: %s", config.Menu.Cache.Store)
		}
		if config.Menu.Cache.Store == "redis" && !config.Database.Redis.Enabled {
			return fmt.Errorf("menu cache store redis requires database.redis.enabled")
		}
		if config.Menu.Cache.TTL <= 0 {
			return fmt.Errorf("menu cache ttl must be positive")
		}
	}

	return nil
}
