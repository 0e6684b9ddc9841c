/**
 * 种子数据服务
 * @description: 开发与测试环境的 RBAC 演示数据：角色、三级菜单、用户及授权关系
 * @func: SeedService.Initialize, SeedService.Clean, SeedService.Reset
 */
package seed

import (
	"context"
	"fmt"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 结果提示信息
const (
	MsgInitialized = "种子数据初始化完成"
	MsgSkipped     = "数据已存在，跳过初始化"
	MsgCleaned     = "数据清空完成"
	MsgReset       = "数据重置完成"
)

// CacheInvalidator 数据变更后清除菜单缓存
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Summary 种子数据统计
type Summary struct {
	Roles     int  `json:"roles"`
	Menus     int  `json:"menus"`
	Users     int  `json:"users"`
	UserRoles int  `json:"user_roles"`
	RoleMenus int  `json:"role_menus"`
	Skipped   bool `json:"skipped"` // 已有用户数据，未执行初始化
}

// SeedService 种子数据服务
type SeedService struct {
	db              *gorm.DB
	passwordManager *auth.PasswordManager
	cache           CacheInvalidator
}

// NewSeedService 创建种子数据服务，cache 可为 nil
func NewSeedService(db *gorm.DB, passwordManager *auth.PasswordManager, cache CacheInvalidator) *SeedService {
	return &SeedService{db: db, passwordManager: passwordManager, cache: cache}
}

// Initialize 写入种子数据，已存在任何用户时跳过
func (s *SeedService) Initialize(ctx context.Context) system.Result[Summary] {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return system.FailureWithError[Summary](system.CodeDatabaseError, "种子数据初始化失败", err)
	}
	if count > 0 {
		return system.Success(Summary{Skipped: true}, MsgSkipped)
	}

	hash, err := s.passwordManager.HashPassword(DefaultPassword)
	if err != nil {
		return system.FailureWithError[Summary](system.CodeInternalError, "种子数据初始化失败", err)
	}

	var summary Summary
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		summary, err = seedAll(tx, hash)
		return err
	})
	if err != nil {
		logger.LogSystemEvent("seed", "initialize", err.Error(), logrus.ErrorLevel, nil)
		return system.FailureWithError[Summary](system.CodeDatabaseError, "种子数据初始化失败", err)
	}

	s.invalidate(ctx)
	logger.LogSystemEvent("seed", "initialize", MsgInitialized, logrus.InfoLevel, map[string]interface{}{
		"roles": summary.Roles,
		"menus": summary.Menus,
		"users": summary.Users,
	})
	return system.Success(summary, MsgInitialized)
}

// Clean 按依赖顺序清空 RBAC 数据
func (s *SeedService) Clean(ctx context.Context) system.Result[Summary] {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cleanAll(tx)
	})
	if err != nil {
		logger.LogSystemEvent("seed", "clean", err.Error(), logrus.ErrorLevel, nil)
		return system.FailureWithError[Summary](system.CodeDatabaseError, "数据清空失败", err)
	}

	s.invalidate(ctx)
	logger.LogSystemEvent("seed", "clean", MsgCleaned, logrus.WarnLevel, nil)
	return system.Success(Summary{}, MsgCleaned)
}

// Reset 清空后重新初始化
func (s *SeedService) Reset(ctx context.Context) system.Result[Summary] {
	if cleaned := s.Clean(ctx); !cleaned.IsSuccess() {
		return system.FailureWithError[Summary](cleaned.Code, "数据重置失败", cleaned.Err)
	}
	initialized := s.Initialize(ctx)
	if !initialized.IsSuccess() {
		return system.FailureWithError[Summary](initialized.Code, "数据重置失败", initialized.Err)
	}
	return system.Success(initialized.Data, MsgReset)
}

func (s *SeedService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		logger.LogSystemEvent("seed", "invalidate_menu_cache", err.Error(), logrus.WarnLevel, nil)
	}
}

func cleanAll(tx *gorm.DB) error {
	for _, m := range []interface{}{&model.RoleMenu{}, &model.UserRole{}, &model.Menu{}, &model.User{}, &model.Role{}} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("failed to clean %T: %w", m, err)
		}
	}
	return nil
}

func seedAll(tx *gorm.DB, passwordHash string) (Summary, error) {
	var summary Summary

	roleIDs := make(map[string]uint, len(roleSeeds))
	for _, rs := range roleSeeds {
		role := model.Role{RoleName: rs.Name, RoleCode: rs.Code, Description: rs.Description, IsSystem: rs.IsSystem}
		if err := tx.Create(&role).Error; err != nil {
			return summary, fmt.Errorf("failed to create role %s: %w", rs.Code, err)
		}
		roleIDs[rs.Code] = role.ID
	}
	summary.Roles = len(roleIDs)

	menuIDs := make(map[string]uint, len(menuSeeds))
	for _, ms := range menuSeeds {
		menu := model.Menu{
			ParentID:  model.RootParentID,
			MenuName:  ms.Name,
			MenuCode:  ms.Code,
			RoutePath: ms.Route,
			Icon:      ms.Icon,
			SortOrder: ms.Sort,
			IsVisible: true,
		}
		if ms.Parent != "" {
			parentID, ok := menuIDs[ms.Parent]
			if !ok {
				return summary, fmt.Errorf("menu %s: parent %s not created yet", ms.Code, ms.Parent)
			}
			menu.ParentID = parentID
		}
		if err := tx.Create(&menu).Error; err != nil {
			return summary, fmt.Errorf("failed to create menu %s: %w", ms.Code, err)
		}
		menuIDs[ms.Code] = menu.ID
	}
	summary.Menus = len(menuIDs)

	for _, us := range userSeeds {
		user := model.User{
			Username:     us.Username,
			PasswordHash: passwordHash,
			RealName:     us.RealName,
			Email:        us.Email,
			Phone:        us.Phone,
			LoginType:    model.LoginTypeLocal,
			IsActive:     us.Active,
		}
		if err := tx.Create(&user).Error; err != nil {
			return summary, fmt.Errorf("failed to create user %s: %w", us.Username, err)
		}
		if err := tx.Create(&model.UserRole{UserID: user.ID, RoleID: roleIDs[us.Role]}).Error; err != nil {
			return summary, fmt.Errorf("failed to assign role %s to %s: %w", us.Role, us.Username, err)
		}
		summary.Users++
		summary.UserRoles++
	}

	grants := grantCodes()
	for _, rs := range roleSeeds {
		codes := grants[rs.Code]
		rows := make([]model.RoleMenu, 0, len(codes))
		for _, code := range codes {
			rows = append(rows, model.RoleMenu{RoleID: roleIDs[rs.Code], MenuID: menuIDs[code]})
		}
		if len(rows) == 0 {
			continue
		}
		if err := tx.Create(&rows).Error; err != nil {
			return summary, fmt.Errorf("failed to grant menus to %s: %w", rs.Code, err)
		}
		summary.RoleMenus += len(rows)
	}

	return summary, nil
}
