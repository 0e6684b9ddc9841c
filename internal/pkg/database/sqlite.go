package database

import (
	"fmt"

	"rbacmaster/internal/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteConnection 创建SQLite数据库连接(本地开发与测试)
// SQLite 只允许单写连接，内存库必须固定为一个连接，否则每个连接看到的是不同的库
func NewSQLiteConnection(cfg *config.SQLiteConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), newGormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	if err := configurePool(db, config.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite: %w", err)
	}
	return db, nil
}
