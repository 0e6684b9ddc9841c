/**
 * 模型:响应模型
 * @description: 认证相关业务响应数据
 */
package model

// LoginResponse 登录响应结构
type LoginResponse struct {
	Token        string   `json:"token"`         // 访问令牌
	RefreshToken string   `json:"refresh_token"` // 刷新令牌
	ExpiresIn    int64    `json:"expires_in"`    // 访问令牌有效期（秒）
	TokenType    string   `json:"token_type"`    // 令牌类型 Bearer
	UserID       uint     `json:"user_id"`       // 用户ID
	Username     string   `json:"username"`      // 用户名
	Roles        []string `json:"roles"`         // 角色编码列表
}

// RegisterResponse 用户注册响应结构
type RegisterResponse struct {
	UserID   uint   `json:"user_id"`   // 新用户ID
	Username string `json:"username"`  // 用户名
	RoleCode string `json:"role_code"` // 分配的默认角色
}

// AssignRoleResponse 角色分配响应结构
type AssignRoleResponse struct {
	UserID uint     `json:"user_id"` // 用户ID
	Roles  []string `json:"roles"`   // 分配后的角色编码列表
}
