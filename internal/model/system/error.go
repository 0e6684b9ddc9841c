/**
 * 模型:错误定义
 * @description: 系统错误常量和错误类型定义
 * @func: 各种错误常量和ValidationError结构体
 */
package system

import "errors"

// 用户相关错误
var (
	// 业务逻辑错误
	ErrUserNotFound          = errors.New("用户不存在")
	ErrUsernameAlreadyExists = errors.New("用户名已存在")
	ErrRoleNotFound          = errors.New("角色不存在")

	// 认证错误
	ErrInvalidCredentials = errors.New("密码错误")
	ErrUserDisabled       = errors.New("用户不存在或已禁用")
	ErrTokenExpired       = errors.New("令牌已过期")
	ErrTokenInvalid       = errors.New("令牌无效")
	ErrTokenRevoked       = errors.New("令牌已注销")
	ErrRefreshInvalid     = errors.New("刷新令牌无效或已过期")

	// 权限错误
	ErrPermissionDenied = errors.New("权限不足")
	ErrUnauthorized     = errors.New("未授权访问")
)

// 菜单相关错误
var (
	// ErrNoMenusGranted 非系统角色用户没有任何菜单授权
	ErrNoMenusGranted = errors.New("未获取任何菜单")
	// ErrMenuCycle 菜单父子关系存在环
	ErrMenuCycle = errors.New("菜单层级存在循环引用")
	// ErrMenuNotFound 菜单不存在
	ErrMenuNotFound = errors.New("菜单不存在")
)

// ValidationError 验证错误结构体
type ValidationError struct {
	Field   string `json:"field"`   // 字段名
	Message string `json:"message"` // 错误消息
}

// NewValidationError 创建验证错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
