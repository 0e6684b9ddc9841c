/**
 * 菜单服务:权限解析
 * @description: 判断用户是否持有系统角色，以及非系统角色用户被授权的菜单集合
 * @func: Resolver.IsSuperAdmin, Resolver.AllowedMenuIDs
 */
package menu

import (
	"context"
	"slices"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
)

// MembershipLookup 用户角色成员关系查询
type MembershipLookup interface {
	MembershipsOf(ctx context.Context, userID uint) ([]model.RoleMembership, error)
}

// GrantLookup 用户菜单授权查询，返回去重后的菜单ID
type GrantLookup interface {
	MenuGrantsOf(ctx context.Context, userID uint) ([]uint, error)
}

// MenuLister 可见菜单查询，ids 为 nil 表示不限制范围
type MenuLister interface {
	ListVisibleMenus(ctx context.Context, ids []uint) ([]model.Menu, error)
}

// MenuIDSet 菜单ID集合
type MenuIDSet map[uint]struct{}

// NewMenuIDSet 由菜单ID构造集合
func NewMenuIDSet(ids ...uint) MenuIDSet {
	set := make(MenuIDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains 是否包含菜单ID
func (s MenuIDSet) Contains(id uint) bool {
	_, ok := s[id]
	return ok
}

// IDs 升序返回集合中的菜单ID
func (s MenuIDSet) IDs() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Resolver 角色与菜单授权解析器
type Resolver struct {
	memberships MembershipLookup
	grants      GrantLookup
}

// NewResolver 创建解析器
func NewResolver(memberships MembershipLookup, grants GrantLookup) *Resolver {
	return &Resolver{memberships: memberships, grants: grants}
}

// IsSuperAdmin 用户任一角色为系统角色即为超级管理员
// 用户不存在或没有角色时返回 false
func (r *Resolver) IsSuperAdmin(ctx context.Context, userID uint) (bool, error) {
	memberships, err := r.memberships.MembershipsOf(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.IsSystem {
			return true, nil
		}
	}
	return false, nil
}

// AllowedMenuIDs 用户通过角色获得的菜单ID集合
// 集合为空时返回 system.ErrNoMenusGranted
func (r *Resolver) AllowedMenuIDs(ctx context.Context, userID uint) (MenuIDSet, error) {
	ids, err := r.grants.MenuGrantsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, system.ErrNoMenusGranted
	}
	return NewMenuIDSet(ids...), nil
}
