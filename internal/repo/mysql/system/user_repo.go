/**
 * 用户仓库层:用户数据访问
 * @description: 用户及用户角色关联的数据访问
 * @func:单纯数据访问,不应该包含业务逻辑
 */
package system

import (
	"context"
	"errors"
	"fmt"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户仓库结构体
// 负责处理用户相关的数据访问，不包含业务逻辑
type UserRepository struct {
	db *gorm.DB // 数据库连接
}

// NewUserRepository 创建用户仓库实例
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser 创建用户（纯数据访问）
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateUserWithRole 在同一事务中创建用户并分配角色
// 角色不存在时返回 system.ErrRoleNotFound，用户不会被创建
func (r *UserRepository) CreateUserWithRole(ctx context.Context, user *model.User, roleCode string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role model.Role
		if err := tx.Where("role_code = ?", roleCode).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", system.ErrRoleNotFound, roleCode)
			}
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserRole{UserID: user.ID, RoleID: role.ID}).Error
	})
}

// GetUserByID 根据ID获取用户，不存在时返回 nil, nil
func (r *UserRepository) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // 返回 nil 而不是错误，让业务层处理
		}
		logger.LogError(err, "", id, "", "user_get", "GET", map[string]interface{}{
			"operation": "get_user_by_id",
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 根据用户名获取用户，不存在时返回 nil, nil
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.firstUser(ctx, "get_user_by_username", r.db.WithContext(ctx).Where("username = ?", username), username)
}

// GetActiveUserByUsername 根据用户名获取已启用的用户，不存在或已禁用时返回 nil, nil
func (r *UserRepository) GetActiveUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.firstUser(ctx, "get_active_user_by_username",
		r.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true), username)
}

func (r *UserRepository) firstUser(ctx context.Context, operation string, query *gorm.DB, username string) (*model.User, error) {
	var user model.User
	err := query.First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.LogError(err, "", 0, "", "user_get", "GET", map[string]interface{}{
			"operation": operation,
			"username":  username,
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return &user, nil
}

// UsernameExists 检查用户名是否已被占用
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AssignRoleByCode 按角色编码为用户追加角色，已存在的关联忽略
// 用户不存在返回 system.ErrUserNotFound，角色不存在返回 system.ErrRoleNotFound
func (r *UserRepository) AssignRoleByCode(ctx context.Context, userID uint, roleCode string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return system.ErrUserNotFound
			}
			return err
		}
		var role model.Role
		if err := tx.Where("role_code = ?", roleCode).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", system.ErrRoleNotFound, roleCode)
			}
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.UserRole{UserID: userID, RoleID: role.ID}).Error
	})
}

// GetUserRoleCodes 获取用户拥有的角色编码，按角色ID排序
func (r *UserRepository) GetUserRoleCodes(ctx context.Context, userID uint) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Table("user_roles AS ur").
		Joins("INNER JOIN roles r ON r.id = ur.role_id").
		Where("ur.user_id = ?", userID).
		Order("r.id").
		Pluck("r.role_code", &codes).Error
	if err != nil {
		logger.LogError(err, "", userID, "", "user_roles", "GET", map[string]interface{}{
			"operation": "get_user_role_codes",
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return codes, nil
}

// IsUserActive 检查用户是否存在且已启用
func (r *UserRepository) IsUserActive(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetUserActive 启用或禁用用户
func (r *UserRepository) SetUserActive(ctx context.Context, userID uint, active bool) error {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return system.ErrUserNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).Model(&user).Update("is_active", active).Error
}
