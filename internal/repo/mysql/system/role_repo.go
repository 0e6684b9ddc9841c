/**
 * 角色仓库层:角色数据访问
 * @description: 角色查询与用户角色成员关系查询
 */
package system

import (
	"context"
	"errors"

	"rbacmaster/internal/model"
	"rbacmaster/internal/pkg/logger"

	"gorm.io/gorm"
)

// RoleRepository 角色仓库结构体
type RoleRepository struct {
	db *gorm.DB // 数据库连接
}

// NewRoleRepository 创建角色仓库实例
func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// MembershipsOf 查询用户的全部角色成员关系(user_roles INNER JOIN roles)
// 用户不存在或没有角色时返回空切片
func (r *RoleRepository) MembershipsOf(ctx context.Context, userID uint) ([]model.RoleMembership, error) {
	var memberships []model.RoleMembership
	err := r.db.WithContext(ctx).
		Table("user_roles AS ur").
		Select("ur.role_id AS role_id, r.is_system AS is_system").
		Joins("INNER JOIN roles r ON r.id = ur.role_id").
		Where("ur.user_id = ?", userID).
		Order("ur.role_id").
		Scan(&memberships).Error
	if err != nil {
		logger.LogError(err, "", userID, "", "user_roles", "GET", map[string]interface{}{
			"operation": "memberships_of",
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return memberships, nil
}

// GetRoleByCode 根据角色编码获取角色，不存在时返回 nil, nil
func (r *RoleRepository) GetRoleByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("role_code = ?", code).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// ListRoles 获取全部角色，按ID排序
func (r *RoleRepository) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Order("id").Find(&roles).Error
	return roles, err
}
