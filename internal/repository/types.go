package repository

import "time"

// PostListFilter 查询帖子列表的过滤条件
type PostListFilter struct {
	Page          int
	PageSize      int
	Status        string
	ClientID      uint
	CreatorID     uint
	ClientIDs     []uint
	Platform      string
	Search        string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	OrderBy       string
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Role     string
	Status   string
	Search   string
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	OnlyUnread bool
}

// PlatformPageListFilter 查询平台页面列表的过滤条件
type PlatformPageListFilter struct {
	Page       int
	PageSize   int
	ClientID   uint
	Platform   string
	OnlyActive bool
}
