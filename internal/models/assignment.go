package models

import "time"

// ModeratorAssignment 审核员与社区经理的分配关系
type ModeratorAssignment struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ModeratorID uint      `gorm:"index:idx_moderator_manager,unique;not null" json:"moderator_id"`
	ManagerID   uint      `gorm:"index:idx_moderator_manager,unique;not null" json:"manager_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 指定表名
func (ModeratorAssignment) TableName() string {
	return "moderator_assignments"
}

// ClientAssignment 客户与社区经理的分配关系
// 客户的社区经理必须是其审核员名下的社区经理的子集
type ClientAssignment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ClientID  uint      `gorm:"index:idx_client_manager,unique;not null" json:"client_id"`
	ManagerID uint      `gorm:"index:idx_client_manager,unique;not null" json:"manager_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (ClientAssignment) TableName() string {
	return "client_assignments"
}
