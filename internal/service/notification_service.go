package service

import (
	"fmt"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/repository"
)

// Notifier 工作流事件通知出口。
// 通知是尽力而为的：失败只记日志，绝不回滚已完成的状态迁移。
type Notifier interface {
	Notify(userID uint, notifyType, title, message string)
}

// NotificationService 落库通知实现
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService 创建通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// Notify 写入一条站内通知
func (s *NotificationService) Notify(userID uint, notifyType, title, message string) {
	if userID == 0 {
		return
	}
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifyType,
		Title:   title,
		Message: message,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		logger.Warnw("notification_create_failed",
			"user_id", userID,
			"type", notifyType,
			"error", err.Error())
	}
}

// List 用户通知列表
func (s *NotificationService) List(userID uint, page, pageSize int, onlyUnread bool) ([]models.Notification, int64, error) {
	return s.notificationRepo.ListByUser(repository.NotificationListFilter{
		UserID:     userID,
		Page:       page,
		PageSize:   pageSize,
		OnlyUnread: onlyUnread,
	})
}

// CountUnread 未读通知数量
func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

// MarkRead 标记通知已读，ids 为空时标记全部。
func (s *NotificationService) MarkRead(userID uint, ids []uint) error {
	if len(ids) == 0 {
		return s.notificationRepo.MarkAllRead(userID)
	}
	return s.notificationRepo.MarkRead(userID, ids)
}

// notifyPostEvent 针对单个收件人发送帖子相关通知
func notifyPostEvent(notifier Notifier, userID uint, notifyType string, post *models.Post, message string) {
	if notifier == nil || post == nil {
		return
	}
	title := post.Title
	if title == "" {
		title = fmt.Sprintf("post #%d", post.ID)
	}
	notifier.Notify(userID, notifyType, title, message)
}

// reviewNotifyType 审批结果对应的通知类型
func reviewNotifyType(approved bool) string {
	if approved {
		return constants.NotificationTypeApproval
	}
	return constants.NotificationTypeRejection
}
