package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 提供统一的基础字段：ID、CreatedAt、UpdatedAt。
// 约定与特性：
//  1. ID 为主键，且自增。
//  2. CreatedAt/UpdatedAt 由 GORM 自动维护时间戳。
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement;comment:主键ID"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;comment:创建时间"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;comment:更新时间"`
}

// AuditModel 在 BaseModel 基础上增加乐观并发版本号
// Version 由 BeforeUpdate 钩子在每次更新时递增
type AuditModel struct {
	BaseModel
	Version int `json:"version" gorm:"not null;default:0;comment:版本号"`
}

// BeforeUpdate GORM 更新钩子，递增版本号
func (m *AuditModel) BeforeUpdate(tx *gorm.DB) error {
	m.Version++
	tx.Statement.SetColumn("Version", m.Version)
	return nil
}
