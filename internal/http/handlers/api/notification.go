package api

import (
	"github.com/postdeck-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListNotifications 当前用户的通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var query struct {
		Page       int  `form:"page"`
		PageSize   int  `form:"page_size"`
		OnlyUnread bool `form:"only_unread"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query")
		return
	}
	page, pageSize := normalizePagination(query.Page, query.PageSize)

	items, total, err := h.NotificationService.List(userID, page, pageSize, query.OnlyUnread)
	if err != nil {
		response.Error(c, response.CodeInternal, "list notifications failed")
		return
	}
	response.SuccessWithPage(c, items, buildPagination(page, pageSize, total))
}

// UnreadCount 未读通知数量
func (h *Handler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	count, err := h.NotificationService.CountUnread(userID)
	if err != nil {
		response.Error(c, response.CodeInternal, "count notifications failed")
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationsRead 标记通知已读，ids 为空表示全部标记。
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	if err := h.NotificationService.MarkRead(userID, req.IDs); err != nil {
		response.Error(c, response.CodeInternal, "mark notifications failed")
		return
	}
	response.Success(c, nil)
}
