/**
 * 菜单仓库层:菜单数据访问
 * @description: 菜单查询与角色菜单授权查询
 */
package system

import (
	"context"
	"errors"

	"rbacmaster/internal/model"
	"rbacmaster/internal/pkg/logger"

	"gorm.io/gorm"
)

// MenuRepository 菜单仓库结构体
type MenuRepository struct {
	db *gorm.DB // 数据库连接
}

// NewMenuRepository 创建菜单仓库实例
func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// MenuGrantsOf 查询用户通过角色获得授权的菜单ID(去重，升序)
// user_roles INNER JOIN role_menus ON role_id
func (r *MenuRepository) MenuGrantsOf(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("user_roles AS ur").
		Joins("INNER JOIN role_menus rm ON rm.role_id = ur.role_id").
		Where("ur.user_id = ?", userID).
		Distinct().
		Order("rm.menu_id").
		Pluck("rm.menu_id", &ids).Error
	if err != nil {
		logger.LogError(err, "", userID, "", "role_menus", "GET", map[string]interface{}{
			"operation": "menu_grants_of",
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return ids, nil
}

// ListVisibleMenus 查询可见菜单，按 sort_order, id 升序
// ids 为 nil 时不限制范围；ids 为空切片时直接返回空结果
func (r *MenuRepository) ListVisibleMenus(ctx context.Context, ids []uint) ([]model.Menu, error) {
	if ids != nil && len(ids) == 0 {
		return []model.Menu{}, nil
	}

	query := r.db.WithContext(ctx).Where("is_visible = ?", true)
	if ids != nil {
		query = query.Where("id IN ?", ids)
	}

	var menus []model.Menu
	if err := query.Order("sort_order ASC").Order("id ASC").Find(&menus).Error; err != nil {
		logger.LogError(err, "", 0, "", "menus", "GET", map[string]interface{}{
			"operation": "list_visible_menus",
			"id_count":  len(ids),
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return menus, nil
}

// GetMenuByID 根据ID获取菜单，不存在时返回 nil, nil
func (r *MenuRepository) GetMenuByID(ctx context.Context, id uint) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.WithContext(ctx).First(&menu, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &menu, nil
}

// ListMenuIDs 获取全部菜单ID
func (r *MenuRepository) ListMenuIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Menu{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
