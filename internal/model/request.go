/**
 * 模型:请求模型
 * @description: API请求数据模型，binding 标签由 gin 的 validator 引擎校验
 */
package model

// LoginRequest 登录请求结构
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"` // 用户名，必填
	Password string `json:"password" binding:"required,max=72"` // 密码，必填
}

// RegisterRequest 用户注册请求结构
type RegisterRequest struct {
	Username string `json:"username" binding:"required,username"`     // 用户名，3-50位字母数字下划线中划线
	Password string `json:"password" binding:"required,min=3,max=72"` // 密码，bcrypt 最多72字节
	RealName string `json:"real_name" binding:"omitempty,max=50"`     // 真实姓名，可选
	Email    string `json:"email" binding:"omitempty,email,max=100"`  // 邮箱地址，可选
}

// RefreshTokenRequest 刷新令牌请求结构
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required,max=128"` // 刷新令牌
}

// LogoutRequest 注销请求结构
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"omitempty,max=128"` // 一并作废的刷新令牌，可选
}

// AssignRoleRequest 为用户追加角色请求结构
type AssignRoleRequest struct {
	RoleCode string `json:"role_code" binding:"required,max=50"` // 角色编码
}
