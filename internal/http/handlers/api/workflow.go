package api

import (
	"github.com/postdeck-next/internal/http/response"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ReviewRequest 审核请求体，feedback 在拒绝时可选。
type ReviewRequest struct {
	Feedback string `json:"feedback"`
}

type transitionFunc func(actorID, postID uint) (*models.Post, *service.Transition, error)

// runTransition 统一执行状态流转并输出 {post, transition}。
func (h *Handler) runTransition(c *gin.Context, fn transitionFunc, failMsg string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, transition, err := fn(userID, postID)
	if err != nil {
		respondWithMappedError(c, err, workflowErrorRules, response.CodeInternal, failMsg)
		return
	}
	response.Success(c, gin.H{"post": post, "transition": transition})
}

// SubmitPost 草稿提交审核
func (h *Handler) SubmitPost(c *gin.Context) {
	h.runTransition(c, h.WorkflowService.SubmitPost, "submit post failed")
}

// ApprovePost 审核通过
func (h *Handler) ApprovePost(c *gin.Context) {
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)
	h.runTransition(c, func(actorID, postID uint) (*models.Post, *service.Transition, error) {
		return h.WorkflowService.ApprovePost(actorID, postID, req.Feedback)
	}, "approve post failed")
}

// RejectPost 审核拒绝
func (h *Handler) RejectPost(c *gin.Context) {
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)
	h.runTransition(c, func(actorID, postID uint) (*models.Post, *service.Transition, error) {
		return h.WorkflowService.RejectPost(actorID, postID, req.Feedback)
	}, "reject post failed")
}

// ResubmitPost 重新提交审核
func (h *Handler) ResubmitPost(c *gin.Context) {
	h.runTransition(c, h.WorkflowService.ResubmitPost, "resubmit post failed")
}

// CancelApproval 撤回已排期帖子回到待审
func (h *Handler) CancelApproval(c *gin.Context) {
	h.runTransition(c, h.WorkflowService.CancelApproval, "cancel approval failed")
}

// ToDraft 已排期帖子退回草稿
func (h *Handler) ToDraft(c *gin.Context) {
	h.runTransition(c, h.WorkflowService.ToDraft, "move to draft failed")
}
