package constants

// 帖子工作流状态常量
const (
	PostStatusDraft     = "draft"
	PostStatusPending   = "pending"
	PostStatusRejected  = "rejected"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

// 工作流事件常量
const (
	WorkflowEventCreate         = "create"
	WorkflowEventSubmit         = "submit"
	WorkflowEventApprove        = "approve"
	WorkflowEventReject         = "reject"
	WorkflowEventResubmit       = "resubmit"
	WorkflowEventCancelApproval = "cancel_approval"
	WorkflowEventToDraft        = "to_draft"
	WorkflowEventClaim          = "claim"
	WorkflowEventPublish        = "publish"
	WorkflowEventPublishFail    = "publish_fail"
)

// 审核方常量
const (
	ReviewerClient    = "client"
	ReviewerModerator = "moderator"
)

// 角色常量
const (
	RoleAdministrator    = "administrator"
	RoleModerator        = "moderator"
	RoleCommunityManager = "community_manager"
	RoleClient           = "client"
)

// 社交平台常量
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
)

// 通知类型常量
const (
	NotificationTypeApproval  = "approval"
	NotificationTypeRejection = "rejection"
	NotificationTypePending   = "pending"
	NotificationTypePublish   = "publish"
	NotificationTypeFailure   = "failure"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 拒绝时缺省反馈占位文本
const DefaultRejectionFeedback = "no feedback provided"

// 异步任务名称常量
const (
	TaskPostPublish = "post:publish"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)
