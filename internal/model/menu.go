/**
 * 模型:菜单模型
 * @description: 菜单数据模型，ParentID 为 0 表示根菜单；子菜单关系只在组装菜单树时于内存中生成
 * @func: Menu、RoleMenu、MenuNode
 */
package model

import (
	basemodel "rbacmaster/internal/model/basemodel"
)

// RootParentID 根菜单的父ID
const RootParentID uint = 0

// Menu 菜单模型
type Menu struct {
	basemodel.AuditModel
	ParentID  uint   `json:"parent_id" gorm:"not null;default:0;index:idx_parent_id"`    // 父菜单ID，0 为根
	MenuName  string `json:"menu_name" gorm:"not null;size:50"`                          // 菜单名称
	MenuCode  string `json:"menu_code" gorm:"uniqueIndex:uk_menu_code;not null;size:50"` // 菜单编码，唯一
	RoutePath string `json:"route_path" gorm:"size:200"`                                 // 前端路由
	Icon      string `json:"icon" gorm:"size:50"`                                        // 图标
	SortOrder int    `json:"sort_order" gorm:"not null;default:0"`                       // 同级排序，升序
	IsVisible bool   `json:"is_visible" gorm:"not null"`                                 // 是否可见
}

// TableName 指定菜单表名
func (Menu) TableName() string {
	return "menus"
}

// RoleMenu 角色菜单授权关联表
type RoleMenu struct {
	RoleID uint `json:"role_id" gorm:"primaryKey;autoIncrement:false"` // 角色ID，联合主键
	MenuID uint `json:"menu_id" gorm:"primaryKey;autoIncrement:false"` // 菜单ID，联合主键
}

// TableName 指定角色菜单关联表名
func (RoleMenu) TableName() string {
	return "role_menus"
}

// MenuNode 返回给前端的菜单树节点
// 叶子节点 Children 为 nil，序列化时省略
type MenuNode struct {
	ID        uint        `json:"id"`
	MenuName  string      `json:"menu_name"`
	MenuCode  string      `json:"menu_code"`
	RoutePath string      `json:"route_path,omitempty"`
	Icon      string      `json:"icon,omitempty"`
	SortOrder int         `json:"sort_order"`
	Children  []*MenuNode `json:"children,omitempty"`
}

// IsLeaf 是否叶子节点
func (n *MenuNode) IsLeaf() bool {
	return len(n.Children) == 0
}
