package database

import (
	"fmt"

	"rbacmaster/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMySQLConnection 创建MySQL数据库连接
func NewMySQLConnection(cfg *config.MySQLConfig) (*gorm.DB, error) {
	// 打开数据库连接
	db, err := gorm.Open(mysql.Open(cfg.GetMySQLDSN()), newGormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	if err := configurePool(db, cfg.PoolConfig); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	return db, nil
}
