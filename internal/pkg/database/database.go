/**
 * 数据库连接
 * @description: 按配置选择 MySQL / PostgreSQL / SQLite，统一的 GORM 日志级别与连接池设置
 * @func: Open, AutoMigrate, Close
 */
package database

import (
	"fmt"

	"rbacmaster/internal/config"
	"rbacmaster/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 支持的驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open 根据 database.driver 打开数据库连接
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case DriverMySQL:
		return NewMySQLConnection(&cfg.MySQL)
	case DriverPostgres:
		return NewPostgresConnection(&cfg.Postgres)
	case DriverSQLite:
		return NewSQLiteConnection(&cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// AutoMigrate 迁移 RBAC 表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Menu{},
		&model.UserRole{},
		&model.RoleMenu{},
	); err != nil {
		return fmt.Errorf("failed to migrate rbac tables: %w", err)
	}
	return nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newGormConfig 配置GORM日志级别
func newGormConfig(level string) *gorm.Config {
	var logLevel logger.LogLevel
	switch level {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	case "info":
		logLevel = logger.Info
	default:
		logLevel = logger.Warn
	}
	return &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}
}

// configurePool 配置连接池并测试连接
func configurePool(db *gorm.DB, pool config.PoolConfig) error {
	// 获取底层的sql.DB对象来配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	return sqlDB.Ping()
}
