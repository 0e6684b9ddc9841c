/*
 * @description: 用户服务
 * @func:
 * 1.用户注册(默认角色 User)
 * 2.为用户追加角色，成功后清除该用户的菜单树缓存
 */
package auth

import (
	"context"
	"errors"
	"strings"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/pkg/logger"
)

// UserStore 用户数据访问
type UserStore interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUserWithRole(ctx context.Context, user *model.User, roleCode string) error
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetActiveUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserRoleCodes(ctx context.Context, userID uint) ([]string, error)
	IsUserActive(ctx context.Context, userID uint) (bool, error)
	AssignRoleByCode(ctx context.Context, userID uint, roleCode string) error
}

// MenuCacheInvalidator 用户角色变更后清除其菜单树缓存
type MenuCacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID uint) error
}

// UserService 用户服务
type UserService struct {
	users           UserStore
	passwordManager *auth.PasswordManager
	defaultRoleCode string
	menuCache       MenuCacheInvalidator
}

// NewUserService 创建用户服务实例，注册用户分配 model.DefaultRoleCode
func NewUserService(users UserStore, passwordManager *auth.PasswordManager) *UserService {
	return &UserService{
		users:           users,
		passwordManager: passwordManager,
		defaultRoleCode: model.DefaultRoleCode,
	}
}

// SetMenuCacheInvalidator 设置菜单缓存失效器，nil 表示不处理
func (s *UserService) SetMenuCacheInvalidator(menuCache MenuCacheInvalidator) {
	s.menuCache = menuCache
}

// Register 注册本地账号
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) system.Result[*model.RegisterResponse] {
	if req == nil {
		return system.Failure[*model.RegisterResponse](system.CodeValidationError, "注册请求不能为空")
	}
	username := strings.TrimSpace(req.Username)

	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return system.FailureWithError[*model.RegisterResponse](system.CodeDatabaseError, "注册失败", err)
	}
	if exists {
		logger.LogBusinessOperation("user_register", 0, username, "", "", "failed", system.ErrUsernameAlreadyExists.Error(), nil)
		return system.FailureWithError[*model.RegisterResponse](system.CodeAlreadyExists, system.ErrUsernameAlreadyExists.Error(), system.ErrUsernameAlreadyExists)
	}

	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return system.FailureWithError[*model.RegisterResponse](system.CodeInternalError, "注册失败", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		RealName:     req.RealName,
		Email:        req.Email,
		LoginType:    model.LoginTypeLocal,
		IsActive:     true,
	}
	if err := s.users.CreateUserWithRole(ctx, user, s.defaultRoleCode); err != nil {
		if errors.Is(err, system.ErrRoleNotFound) {
			logger.LogError(err, "", 0, "", "user_register", "POST", map[string]interface{}{
				"operation": "register",
				"role_code": s.defaultRoleCode,
				"timestamp": logger.NowFormatted(),
			})
			return system.FailureWithError[*model.RegisterResponse](system.CodeRoleNotFound, "默认角色不存在", err)
		}
		return system.FailureWithError[*model.RegisterResponse](system.CodeDatabaseError, "注册失败", err)
	}

	logger.LogBusinessOperation("user_register", user.ID, user.Username, "", "", "success", "注册成功", map[string]interface{}{
		"role_code": s.defaultRoleCode,
		"timestamp": logger.NowFormatted(),
	})
	return system.Success(&model.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		RoleCode: s.defaultRoleCode,
	}, "注册成功")
}

// AssignRole 为用户追加角色，返回分配后的角色编码
// 用户或角色不存在返回对应业务码；缓存清除失败只记录日志
func (s *UserService) AssignRole(ctx context.Context, userID uint, roleCode string) system.Result[*model.AssignRoleResponse] {
	roleCode = strings.TrimSpace(roleCode)
	if userID == 0 || roleCode == "" {
		return system.Failure[*model.AssignRoleResponse](system.CodeValidationError, "用户ID和角色编码不能为空")
	}

	if err := s.users.AssignRoleByCode(ctx, userID, roleCode); err != nil {
		switch {
		case errors.Is(err, system.ErrUserNotFound):
			return system.FailureWithError[*model.AssignRoleResponse](system.CodeUserNotFound, system.ErrUserNotFound.Error(), err)
		case errors.Is(err, system.ErrRoleNotFound):
			return system.FailureWithError[*model.AssignRoleResponse](system.CodeRoleNotFound, system.ErrRoleNotFound.Error(), err)
		}
		return system.FailureWithError[*model.AssignRoleResponse](system.CodeDatabaseError, "分配角色失败", err)
	}

	if s.menuCache != nil {
		if err := s.menuCache.InvalidateUser(ctx, userID); err != nil {
			logger.LogError(err, "", userID, "", "user_assign_role", "POST", map[string]interface{}{
				"operation": "invalidate_menu_cache",
				"role_code": roleCode,
				"timestamp": logger.NowFormatted(),
			})
		}
	}

	roles, err := s.users.GetUserRoleCodes(ctx, userID)
	if err != nil {
		return system.FailureWithError[*model.AssignRoleResponse](system.CodeDatabaseError, "分配角色失败", err)
	}

	logger.LogBusinessOperation("user_assign_role", userID, "", "", "", "success", "分配角色成功", map[string]interface{}{
		"role_code": roleCode,
		"timestamp": logger.NowFormatted(),
	})
	return system.Success(&model.AssignRoleResponse{UserID: userID, Roles: roles}, "分配角色成功")
}
