package models

import (
	"time"

	"github.com/postdeck-next/internal/constants"

	"gorm.io/gorm"
)

// Post 帖子表（内容调度与审批的核心实体）
type Post struct {
	ID          uint        `gorm:"primarykey" json:"id"`                  // 主键
	Title       string      `gorm:"not null" json:"title"`                 // 标题
	Body        string      `gorm:"type:text" json:"body"`                 // 正文
	Media       StringArray `gorm:"type:json" json:"media"`                // 媒体引用列表
	Platforms   StringArray `gorm:"type:json" json:"platforms"`            // 目标平台列表
	PageID      *uint       `gorm:"index" json:"page_id,omitempty"`        // 绑定的平台页面
	CreatorID   uint        `gorm:"index;not null" json:"creator_id"`      // 创建者
	ClientID    uint        `gorm:"index;not null" json:"client_id"`       // 所属客户
	LastEditor  *uint       `gorm:"column:last_edited_by" json:"last_edited_by,omitempty"` // 最近编辑者
	ScheduledFor *time.Time `gorm:"index" json:"scheduled_for"`            // 计划发布时间
	Status      string      `gorm:"index;not null;default:'draft'" json:"status"` // 工作流状态

	// 审批三态布尔，nil 表示尚未审核
	IsClientApproved     *bool `json:"is_client_approved"`
	IsModeratorValidated *bool `json:"is_moderator_validated"`

	// 审批时间戳，每对中最多只有一个非空
	ClientApprovedAt     *time.Time `json:"client_approved_at"`
	ClientRejectedAt     *time.Time `json:"client_rejected_at"`
	ModeratorValidatedAt *time.Time `json:"moderator_validated_at"`
	ModeratorRejectedAt  *time.Time `json:"moderator_rejected_at"`
	PublishedAt          *time.Time `gorm:"index" json:"published_at"`

	// 审核反馈
	Feedback   string     `gorm:"type:text" json:"feedback"`
	FeedbackBy *uint      `json:"feedback_by,omitempty"`
	FeedbackAt *time.Time `json:"feedback_at"`

	// 发布结果
	PlatformPostID string `json:"platform_post_id,omitempty"` // 平台侧帖子 ID
	PublishError   string `gorm:"type:text" json:"publish_error,omitempty"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Page *PlatformPage `gorm:"foreignKey:PageID" json:"page,omitempty"`
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// ReviewState 单个审核维度的状态
type ReviewState int

const (
	ReviewUnreviewed ReviewState = iota
	ReviewApproved
	ReviewRejected
)

// Review 审核结果的归一视图
// 由时间戳对派生，保证审批/拒绝互斥不可能被观察到违例
type Review struct {
	State ReviewState
	At    *time.Time
}

// ClientReview 返回客户审核维度的归一状态
func (p *Post) ClientReview() Review {
	return deriveReview(p.ClientApprovedAt, p.ClientRejectedAt)
}

// ModeratorReview 返回审核员审核维度的归一状态
func (p *Post) ModeratorReview() Review {
	return deriveReview(p.ModeratorValidatedAt, p.ModeratorRejectedAt)
}

func deriveReview(approvedAt, rejectedAt *time.Time) Review {
	if approvedAt != nil {
		return Review{State: ReviewApproved, At: approvedAt}
	}
	if rejectedAt != nil {
		return Review{State: ReviewRejected, At: rejectedAt}
	}
	return Review{State: ReviewUnreviewed}
}

// ApproveByClient 记录客户批准
// 只修改内存字段，持久化由调用方负责；重复调用只刷新时间戳，不破坏互斥
func (p *Post) ApproveByClient(actorID uint, now time.Time) {
	approved := true
	p.ClientApprovedAt = &now
	p.ClientRejectedAt = nil
	p.IsClientApproved = &approved
	p.LastEditor = &actorID
}

// RejectByClient 记录客户拒绝
func (p *Post) RejectByClient(actorID uint, now time.Time) {
	approved := false
	p.ClientRejectedAt = &now
	p.ClientApprovedAt = nil
	p.IsClientApproved = &approved
	p.LastEditor = &actorID
}

// ValidateByModerator 记录审核员批准
func (p *Post) ValidateByModerator(actorID uint, now time.Time) {
	validated := true
	p.ModeratorValidatedAt = &now
	p.ModeratorRejectedAt = nil
	p.IsModeratorValidated = &validated
	p.LastEditor = &actorID
}

// RejectByModerator 记录审核员拒绝
func (p *Post) RejectByModerator(actorID uint, now time.Time) {
	validated := false
	p.ModeratorRejectedAt = &now
	p.ModeratorValidatedAt = nil
	p.IsModeratorValidated = &validated
	p.LastEditor = &actorID
}

// MarkPublished 记录发布完成时间，状态由工作流引擎另行设置。
// 发布由调度器执行，不记编辑人。
func (p *Post) MarkPublished(now time.Time) {
	p.PublishedAt = &now
}

// ResetForResubmission 清空全部审批字段并回到待审核状态
func (p *Post) ResetForResubmission(actorID uint) {
	p.ClientApprovedAt = nil
	p.ClientRejectedAt = nil
	p.ModeratorValidatedAt = nil
	p.ModeratorRejectedAt = nil
	p.IsClientApproved = nil
	p.IsModeratorValidated = nil
	p.PublishedAt = nil
	p.Status = constants.PostStatusPending
	p.LastEditor = &actorID
}
