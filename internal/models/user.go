package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（角色目录：客户/审核员/社区经理/管理员）
type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`              // 主键
	Email        string `gorm:"uniqueIndex;not null" json:"email"` // 邮箱
	PasswordHash string `gorm:"not null" json:"-"`                 // 密码哈希（不返回给前端）
	DisplayName  string `gorm:"default:''" json:"display_name"`    // 昵称
	Status       string `gorm:"default:'active'" json:"status"`    // 账号状态

	// 角色标记，一个账号可以同时具备多个角色
	IsClient           bool `gorm:"default:false;index" json:"is_client"`
	IsModerator        bool `gorm:"default:false;index" json:"is_moderator"`
	IsCommunityManager bool `gorm:"default:false;index" json:"is_community_manager"`
	IsAdministrator    bool `gorm:"default:false" json:"is_administrator"`

	// 客户绑定的审核员（最多一个）
	ModeratorID *uint `gorm:"index" json:"moderator_id,omitempty"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// HasAnyRole 判断账号是否具备任意角色
func (u *User) HasAnyRole() bool {
	if u == nil {
		return false
	}
	return u.IsClient || u.IsModerator || u.IsCommunityManager || u.IsAdministrator
}
