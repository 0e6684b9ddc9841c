package config

import (
	"fmt"
	"time"
)

// Config 应用配置结构体 [这里的字段和配置文件中一级字段保持一致，否则会没有值]
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`     // 服务器配置
	Database DatabaseConfig `yaml:"database" mapstructure:"database"` // 数据库配置
	Log      LogConfig      `yaml:"log" mapstructure:"log"`           // 日志配置
	Security SecurityConfig `yaml:"security" mapstructure:"security"` // 安全配置
	Menu     MenuConfig     `yaml:"menu" mapstructure:"menu"`         // 菜单配置
	App      AppConfig      `yaml:"app" mapstructure:"app"`           // 应用配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string        `yaml:"host" mapstructure:"host"`                         // 服务器主机地址
	Port           int           `yaml:"port" mapstructure:"port"`                         // 服务器端口
	Mode           string        `yaml:"mode" mapstructure:"mode"`                         // 运行模式: debug, release, test
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`         // 读取超时时间
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`       // 写入超时时间
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`         // 空闲超时时间
	MaxHeaderBytes int           `yaml:"max_header_bytes" mapstructure:"max_header_bytes"` // 最大请求头字节数
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string         `yaml:"driver" mapstructure:"driver"`     // 数据库驱动: mysql, postgres, sqlite
	MySQL    MySQLConfig    `yaml:"mysql" mapstructure:"mysql"`       // MySQL配置
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"` // PostgreSQL配置
	SQLite   SQLiteConfig   `yaml:"sqlite" mapstructure:"sqlite"`     // SQLite配置
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`       // Redis配置
}

// PoolConfig 连接池配置(各关系型数据库共用)
type PoolConfig struct {
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`         // 最大空闲连接数
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`         // 最大打开连接数
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`   // 连接最大生存时间
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"` // 连接最大空闲时间
}

// MySQLConfig MySQL数据库配置
type MySQLConfig struct {
	Host       string `yaml:"host" mapstructure:"host"`             // 数据库主机
	Port       int    `yaml:"port" mapstructure:"port"`             // 数据库端口
	Username   string `yaml:"username" mapstructure:"username"`     // 用户名
	Password   string `yaml:"password" mapstructure:"password"`     // 密码
	Database   string `yaml:"database" mapstructure:"database"`     // 数据库名
	Charset    string `yaml:"charset" mapstructure:"charset"`       // 字符集
	ParseTime  bool   `yaml:"parse_time" mapstructure:"parse_time"` // 是否解析时间
	Loc        string `yaml:"loc" mapstructure:"loc"`               // 时区
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`   // 日志级别
	PoolConfig `yaml:",inline" mapstructure:",squash"`
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	Host       string `yaml:"host" mapstructure:"host"`           // 数据库主机
	Port       int    `yaml:"port" mapstructure:"port"`           // 数据库端口
	Username   string `yaml:"username" mapstructure:"username"`   // 用户名
	Password   string `yaml:"password" mapstructure:"password"`   // 密码
	Database   string `yaml:"database" mapstructure:"database"`   // 数据库名
	SSLMode    string `yaml:"ssl_mode" mapstructure:"ssl_mode"`   // SSL模式
	TimeZone   string `yaml:"time_zone" mapstructure:"time_zone"` // 时区
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"` // 日志级别
	PoolConfig `yaml:",inline" mapstructure:",squash"`
}

// SQLiteConfig SQLite配置(本地开发与测试)
type SQLiteConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`           // 数据库文件路径, ":memory:" 为内存库
	LogLevel string `yaml:"log_level" mapstructure:"log_level"` // 日志级别
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`               // 是否启用Redis
	Host         string        `yaml:"host" mapstructure:"host"`                     // Redis主机
	Port         int           `yaml:"port" mapstructure:"port"`                     // Redis端口
	Password     string        `yaml:"password" mapstructure:"password"`             // Redis密码
	Database     int           `yaml:"database" mapstructure:"database"`             // Redis数据库索引
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`           // 连接池大小
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"` // 最小空闲连接数
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`     // 连接超时
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`     // 读取超时
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`   // 写入超时
	PoolTimeout  time.Duration `yaml:"pool_timeout" mapstructure:"pool_timeout"`     // 连接池超时
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`     // 空闲超时
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式: json, text
	Output     string `yaml:"output" mapstructure:"output"`           // 输出方式: stdout, stderr, file
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 保留的日志文件数量
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩日志文件
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt" mapstructure:"jwt"`               // JWT配置
	Password  PasswordConfig  `yaml:"password" mapstructure:"password"`     // 密码配置
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`             // CORS配置
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"` // 限流配置
	Headers   HeadersConfig   `yaml:"headers" mapstructure:"headers"`       // 安全响应头配置
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret             string        `yaml:"secret" mapstructure:"secret"`                             // JWT密钥
	Issuer             string        `yaml:"issuer" mapstructure:"issuer"`                             // 签发者
	Audience           string        `yaml:"audience" mapstructure:"audience"`                         // 受众
	AccessTokenExpire  time.Duration `yaml:"access_token_expire" mapstructure:"access_token_expire"`   // 访问令牌过期时间
	RefreshTokenExpire time.Duration `yaml:"refresh_token_expire" mapstructure:"refresh_token_expire"` // 刷新令牌过期时间
}

// PasswordConfig 密码哈希配置
type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"` // bcrypt 计算成本
}

// CORSConfig CORS配置
type CORSConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled"`                     // 是否启用CORS
	AllowAllOrigins  bool          `yaml:"allow_all_origins" mapstructure:"allow_all_origins"` // 是否允许所有源
	AllowOrigins     []string      `yaml:"allow_origins" mapstructure:"allow_origins"`         // 允许的源
	AllowMethods     []string      `yaml:"allow_methods" mapstructure:"allow_methods"`         // 允许的方法
	AllowHeaders     []string      `yaml:"allow_headers" mapstructure:"allow_headers"`         // 允许的请求头
	ExposeHeaders    []string      `yaml:"expose_headers" mapstructure:"expose_headers"`       // 暴露的响应头
	AllowCredentials bool          `yaml:"allow_credentials" mapstructure:"allow_credentials"` // 是否允许凭证
	MaxAge           time.Duration `yaml:"max_age" mapstructure:"max_age"`                     // 预检请求缓存时间
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool     `yaml:"enabled" mapstructure:"enabled"`                         // 是否启用限流
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 每秒请求数限制
	BurstSize         int      `yaml:"burst_size" mapstructure:"burst_size"`                   // 突发请求数
	SkipPaths         []string `yaml:"skip_paths" mapstructure:"skip_paths"`                   // 跳过限流的路径
}

// HeadersConfig 安全响应头配置
type HeadersConfig struct {
	FrameDeny          bool   `yaml:"frame_deny" mapstructure:"frame_deny"`                     // X-Frame-Options: DENY
	ContentTypeNosniff bool   `yaml:"content_type_nosniff" mapstructure:"content_type_nosniff"` // X-Content-Type-Options: nosniff
	BrowserXSSFilter   bool   `yaml:"browser_xss_filter" mapstructure:"browser_xss_filter"`     // X-XSS-Protection
	STSSeconds         int64  `yaml:"sts_seconds" mapstructure:"sts_seconds"`                   // HSTS 有效期
	ReferrerPolicy     string `yaml:"referrer_policy" mapstructure:"referrer_policy"`           // Referrer-Policy
}

// MenuConfig 菜单配置
type MenuConfig struct {
	Cache MenuCacheConfig `yaml:"cache" mapstructure:"cache"` // 菜单树缓存配置
}

// MenuCacheConfig 菜单树缓存配置
type MenuCacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"` // 是否启用缓存
	Store   string        `yaml:"store" mapstructure:"store"`     // 存储方式: redis, memory
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`         // 缓存有效期
	Prefix  string        `yaml:"prefix" mapstructure:"prefix"`   // Redis键前缀
	Size    int           `yaml:"size" mapstructure:"size"`       // 内存缓存最大条目数
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string         `yaml:"name" mapstructure:"name"`               // 应用名称
	Version     string         `yaml:"version" mapstructure:"version"`         // 应用版本
	Environment string         `yaml:"environment" mapstructure:"environment"` // 运行环境
	Debug       bool           `yaml:"debug" mapstructure:"debug"`             // 是否调试模式
	Features    FeaturesConfig `yaml:"features" mapstructure:"features"`       // 功能开关配置
}

// FeaturesConfig 功能开关配置
type FeaturesConfig struct {
	UserRegistration bool `yaml:"user_registration" mapstructure:"user_registration"` // 用户注册功能
	DevEndpoints     bool `yaml:"dev_endpoints" mapstructure:"dev_endpoints"`         // 开发辅助接口(种子数据初始化/清空/重置)
}

// GetAddress 获取服务器完整地址
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment 判断是否为开发环境
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction 判断是否为生产环境
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// GetMySQLDSN 获取MySQL数据源名称
func (m *MySQLConfig) GetMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		m.Username, m.Password, m.Host, m.Port, m.Database, m.Charset, m.ParseTime, m.Loc)
}

// GetPostgresDSN 获取PostgreSQL数据源名称
func (p *PostgresConfig) GetPostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		p.Host, p.Port, p.Username, p.Password, p.Database, p.SSLMode, p.TimeZone)
}

// GetRedisAddress 获取Redis地址
func (r *RedisConfig) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
