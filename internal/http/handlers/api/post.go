package api

import (
	"time"

	"github.com/postdeck-next/internal/http/response"
	"github.com/postdeck-next/internal/repository"
	"github.com/postdeck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePostRequest 创建帖子请求
type CreatePostRequest struct {
	ClientID     uint       `json:"client_id" binding:"required"`
	Title        string     `json:"title"`
	Body         string     `json:"body" binding:"required"`
	Media        []string   `json:"media"`
	Platforms    []string   `json:"platforms" binding:"required"`
	PageID       *uint      `json:"page_id"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	Status       string     `json:"status"` // draft 或 pending
}

// UpdatePostRequest 更新帖子请求
type UpdatePostRequest struct {
	Title        *string    `json:"title"`
	Body         *string    `json:"body"`
	Media        []string   `json:"media"`
	Platforms    []string   `json:"platforms"`
	PageID       *uint      `json:"page_id"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// CreatePost 创建帖子
func (h *Handler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid post payload")
		return
	}

	post, transition, err := h.WorkflowService.CreatePost(userID, service.CreatePostInput{
		ClientID:     req.ClientID,
		Title:        req.Title,
		Body:         req.Body,
		Media:        req.Media,
		Platforms:    req.Platforms,
		PageID:       req.PageID,
		ScheduledFor: req.ScheduledFor,
		StatusHint:   req.Status,
	})
	if err != nil {
		respondWithMappedError(c, err, workflowErrorRules, response.CodeInternal, "create post failed")
		return
	}
	response.Success(c, gin.H{"post": post, "transition": transition})
}

// GetPost 帖子详情
func (h *Handler) GetPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := h.WorkflowService.GetPost(userID, postID)
	if err != nil {
		respondWithMappedError(c, err, workflowErrorRules, response.CodeInternal, "fetch post failed")
		return
	}
	response.Success(c, post)
}

// ListPosts 帖子列表，按角色裁剪可见范围。
func (h *Handler) ListPosts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var query struct {
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
		Status   string `form:"status"`
		Platform string `form:"platform"`
		Search   string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query")
		return
	}
	page, pageSize := normalizePagination(query.Page, query.PageSize)

	posts, total, err := h.WorkflowService.ListPosts(userID, repository.PostListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   query.Status,
		Platform: query.Platform,
		Search:   query.Search,
	})
	if err != nil {
		respondWithMappedError(c, err, workflowErrorRules, response.CodeInternal, "list posts failed")
		return
	}
	response.SuccessWithPage(c, posts, buildPagination(page, pageSize, total))
}

// UpdatePost 编辑帖子内容
func (h *Handler) UpdatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid post payload")
		return
	}

	post, err := h.WorkflowService.UpdatePost(userID, postID, service.UpdatePostInput{
		Title:        req.Title,
		Body:         req.Body,
		Media:        req.Media,
		Platforms:    req.Platforms,
		PageID:       req.PageID,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		respondWithMappedError(c, err, workflowErrorRules, response.CodeInternal, "update post failed")
		return
	}
	response.Success(c, post)
}

// DeletePost 删除帖子
func (h *Handler) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.WorkflowService.DeletePost(userID, postID); err != nil {
		respondWithMappedError(c, err, workflowErrorRules, response.CodeInternal, "delete post failed")
		return
	}
	response.Success(c, nil)
}
