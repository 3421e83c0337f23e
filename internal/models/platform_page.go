package models

import (
	"time"

	"gorm.io/gorm"
)

// PlatformPage 平台页面表（帖子的具体投放账号）
type PlatformPage struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	ClientID       uint       `gorm:"index;not null" json:"client_id"`       // 所属客户
	Platform       string     `gorm:"index;not null" json:"platform"`        // facebook/instagram/linkedin
	Name           string     `gorm:"not null" json:"name"`                  // 页面名称
	ExternalID     string     `gorm:"index;not null" json:"external_id"`     // 平台侧页面 ID
	AccessToken    string     `gorm:"type:text" json:"-"`                    // 访问令牌（不返回给前端）
	TokenExpiresAt *time.Time `json:"token_expires_at"`                      // 令牌过期时间
	IsActive       bool       `gorm:"default:true;index" json:"is_active"`   // 是否可用

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (PlatformPage) TableName() string {
	return "platform_pages"
}

// TokenValid 判断令牌是否存在且未过期
func (p *PlatformPage) TokenValid(now time.Time) bool {
	if p == nil || p.AccessToken == "" {
		return false
	}
	if p.TokenExpiresAt != nil && !p.TokenExpiresAt.After(now) {
		return false
	}
	return true
}
