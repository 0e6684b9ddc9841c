/**
 * 模型:角色模型
 * @description: 角色数据模型，IsSystem 标记不受菜单授权限制的系统角色
 * @func: Role 结构体及相关方法
 */
package model

import (
	basemodel "rbacmaster/internal/model/basemodel"
)

// 内置角色编码
const (
	RoleCodeSuperAdmin = "SuperAdmin"
	RoleCodeAdmin      = "Admin"
	RoleCodeManager    = "Manager"
	RoleCodeUser       = "User"
	RoleCodeGuest      = "Guest"
)

// DefaultRoleCode 注册用户默认分配的角色
const DefaultRoleCode = RoleCodeUser

// Role 角色模型
type Role struct {
	basemodel.AuditModel
	RoleName    string `json:"role_name" gorm:"not null;size:50"`                          // 角色名称
	RoleCode    string `json:"role_code" gorm:"uniqueIndex:uk_role_code;not null;size:50"` // 角色编码，唯一
	Description string `json:"description" gorm:"size:200"`                                // 角色描述
	IsSystem    bool   `json:"is_system" gorm:"not null"`                                  // 系统角色，拥有全部菜单
}

// TableName 指定角色表名
func (Role) TableName() string {
	return "roles"
}

// RoleMembership 用户的一条角色成员关系(user_roles JOIN roles)
type RoleMembership struct {
	RoleID   uint `json:"role_id"`
	IsSystem bool `json:"is_system"`
}
