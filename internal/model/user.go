/**
 * 模型:用户模型
 * @description: 用户数据模型，包含用户基本信息、登录方式和启用状态
 * @func: User 结构体及相关方法
 */
package model

import (
	basemodel "rbacmaster/internal/model/basemodel"
)

// LoginType 登录方式，数据库中以字符串存储
type LoginType string

const (
	LoginTypeLocal  LoginType = "local"  // 本地账号密码
	LoginTypeWeChat LoginType = "wechat" // 微信登录
	LoginTypeGitHub LoginType = "github" // GitHub 登录
)

// User 用户模型
type User struct {
	basemodel.AuditModel
	Username     string    `json:"username" gorm:"uniqueIndex:uk_username;not null;size:50"` // 用户名，唯一
	PasswordHash string    `json:"-" gorm:"not null;size:200"`                               // bcrypt 密码哈希，不在JSON中返回
	RealName     string    `json:"real_name" gorm:"size:50"`                                 // 真实姓名
	Email        string    `json:"email" gorm:"index:idx_email;size:100"`                    // 邮箱地址
	Phone        string    `json:"phone" gorm:"size:20"`                                     // 手机号码
	LoginType    LoginType `json:"login_type" gorm:"size:20;not null"`                       // 登录方式
	ExternalID   string    `json:"external_id,omitempty" gorm:"size:200"`                    // 第三方登录的外部账号ID
	IsActive     bool      `json:"is_active" gorm:"not null"`                                // 是否启用
}

// TableName 指定用户表名
func (User) TableName() string {
	return "users"
}

// UserRole 用户角色关联表
type UserRole struct {
	UserID uint `json:"user_id" gorm:"primaryKey;autoIncrement:false"`                   // 用户ID，联合主键
	RoleID uint `json:"role_id" gorm:"primaryKey;autoIncrement:false;index:idx_role_id"` // 角色ID，联合主键
}

// TableName 指定用户角色关联表名
func (UserRole) TableName() string {
	return "user_roles"
}
