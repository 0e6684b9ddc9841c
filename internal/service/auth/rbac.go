package auth

import (
	"context"
	"errors"
	"fmt"
)

// RoleLookup 用户角色与状态查询
type RoleLookup interface {
	GetUserRoleCodes(ctx context.Context, userID uint) ([]string, error)
	IsUserActive(ctx context.Context, userID uint) (bool, error)
}

// RBACService 基于角色的访问控制服务
type RBACService struct {
	roles RoleLookup
}

// NewRBACService 创建RBAC服务实例
func NewRBACService(roles RoleLookup) *RBACService {
	return &RBACService{roles: roles}
}

// CheckRole 检查用户是否具有特定角色
func (s *RBACService) CheckRole(ctx context.Context, userID uint, roleCode string) (bool, error) {
	if roleCode == "" {
		return false, errors.New("role code cannot be empty")
	}
	return s.CheckAnyRole(ctx, userID, []string{roleCode})
}

// CheckAnyRole 检查用户是否具有任意一个指定角色
func (s *RBACService) CheckAnyRole(ctx context.Context, userID uint, roleCodes []string) (bool, error) {
	if userID == 0 {
		return false, errors.New("invalid user ID")
	}

	if len(roleCodes) == 0 {
		return false, errors.New("role codes cannot be empty")
	}

	// 获取用户角色
	userRoles, err := s.roles.GetUserRoleCodes(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user roles: %w", err)
	}

	// 创建角色映射以提高查找效率
	roleMap := make(map[string]bool, len(roleCodes))
	for _, code := range roleCodes {
		roleMap[code] = true
	}

	for _, code := range userRoles {
		if roleMap[code] {
			return true, nil
		}
	}

	return false, nil
}

// IsUserActive 检查用户是否存在且已启用
func (s *RBACService) IsUserActive(ctx context.Context, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.roles.IsUserActive(ctx, userID)
}
