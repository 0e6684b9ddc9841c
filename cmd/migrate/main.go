/*
*
  - 数据库迁移工具
  - @author: Sun977
  - @date: 2025.10.15
  - @description: 数据库模型迁移和演示数据初始化工具
  - @usage: go run main.go -env=test -action=seed
    -action string
    执行动作: migrate, seed, clean, reset (default "migrate")
    -config string
    配置文件目录
    -drop
    迁移前是否先删除表（危险操作）
    -env string
    环境标识 (development, test, production) (default "test")

示例:
main.exe -env=test -action=seed     # 测试环境迁移并填充演示数据
main.exe -env=prod -action=migrate  # 生产环境仅迁移表结构
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"rbacmaster/internal/config"
	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/pkg/database"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/service/seed"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 迁移动作
const (
	ActionMigrate = "migrate"
	ActionSeed    = "seed"
	ActionClean   = "clean"
	ActionReset   = "reset"
)

// actionTimeout 单次动作超时时间
const actionTimeout = 2 * time.Minute

// MigrateOptions 迁移选项配置
type MigrateOptions struct {
	ConfigPath  string // 配置文件目录
	Environment string // 环境标识
	Action      string // 执行动作
	DropFirst   bool   // 是否先删除表（危险操作）
}

func main() {
	// 解析命令行参数
	opts := parseFlags()

	// 加载配置
	cfg, err := config.LoadConfig(opts.ConfigPath, opts.Environment)
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 初始化日志管理器
	logManager, err := logger.InitLogger(cfg.Log)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer logManager.Close()

	entry := logManager.GetLogger().WithFields(logrus.Fields{
		"path":        "cmd/migrate/main.go",
		"operation":   "database_migration",
		"func_name":   "main",
		"environment": opts.Environment,
		"action":      opts.Action,
		"driver":      cfg.Database.Driver,
	})
	entry.WithField("option", "migrate.start").Info("开始执行数据库动作")

	// 初始化数据库连接
	db, err := database.Open(&cfg.Database)
	if err != nil {
		entry.WithField("option", "database.Open").WithError(err).Error("数据库连接失败")
		os.Exit(1)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	summary, err := run(ctx, db, cfg, opts)
	if err != nil {
		entry.WithField("option", "migrate.run").WithError(err).Error("数据库动作执行失败")
		os.Exit(1)
	}

	entry.WithFields(logrus.Fields{
		"option":  "migrate.complete",
		"summary": summary,
	}).Info("数据库动作执行完成")
}

// parseFlags 解析命令行参数
func parseFlags() *MigrateOptions {
	opts := &MigrateOptions{}

	flag.StringVar(&opts.ConfigPath, "config", "", "配置文件目录")
	flag.StringVar(&opts.Environment, "env", "test", "环境标识 (development, test, production)")
	flag.StringVar(&opts.Action, "action", ActionMigrate, "执行动作: migrate, seed, clean, reset")
	flag.BoolVar(&opts.DropFirst, "drop", false, "迁移前是否先删除表（危险操作）")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "RBAC Master 数据库迁移工具\n\n")
		fmt.Fprintf(os.Stderr, "用法: %s [选项]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "选项:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n示例:\n")
		fmt.Fprintf(os.Stderr, "  %s -env=test -action=seed     # 测试环境迁移并填充演示数据\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -env=prod -action=migrate  # 生产环境仅迁移表结构\n", os.Args[0])
	}

	flag.Parse()
	return opts
}

// run 执行迁移动作；seed/clean/reset 前都会先迁移表结构
func run(ctx context.Context, db *gorm.DB, cfg *config.Config, opts *MigrateOptions) (interface{}, error) {
	switch opts.Action {
	case ActionMigrate, ActionSeed, ActionClean, ActionReset:
	default:
		return nil, fmt.Errorf("unknown action %q", opts.Action)
	}

	if opts.DropFirst {
		if err := dropTables(db); err != nil {
			return nil, fmt.Errorf("删除表失败: %w", err)
		}
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	if opts.Action == ActionMigrate {
		return nil, nil
	}

	seeder := seed.NewSeedService(db, auth.NewPasswordManager(cfg.Security.Password.BcryptCost), nil)
	var result system.Result[seed.Summary]
	switch opts.Action {
	case ActionSeed:
		result = seeder.Initialize(ctx)
	case ActionClean:
		result = seeder.Clean(ctx)
	case ActionReset:
		result = seeder.Reset(ctx)
	}
	if !result.IsSuccess() {
		return nil, result
	}
	return result.Data, nil
}

// dropTables 删除所有表，关联表先删除
func dropTables(db *gorm.DB) error {
	logger.WithFields(logrus.Fields{
		"path":      "cmd/migrate/main.go",
		"operation": "drop_tables",
		"option":    "dropTables",
		"func_name": "dropTables",
	}).Warn("开始删除数据库表")

	tables := []interface{}{
		&model.UserRole{},
		&model.RoleMenu{},
		&model.User{},
		&model.Role{},
		&model.Menu{},
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop %T: %w", table, err)
		}
	}
	return nil
}
