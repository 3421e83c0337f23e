package api

import (
	"time"

	"github.com/postdeck-next/internal/http/response"
	"github.com/postdeck-next/internal/repository"
	"github.com/postdeck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Email              string `json:"email" binding:"required,email"`
	Password           string `json:"password" binding:"required,min=6"`
	DisplayName        string `json:"display_name"`
	IsClient           bool   `json:"is_client"`
	IsModerator        bool   `json:"is_moderator"`
	IsCommunityManager bool   `json:"is_community_manager"`
	IsAdministrator    bool   `json:"is_administrator"`
	ModeratorID        *uint  `json:"moderator_id"`
}

// CreateUser 创建用户（管理端）
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid user payload")
		return
	}
	user, err := h.UserService.CreateUser(service.CreateUserInput{
		Email:              req.Email,
		Password:           req.Password,
		DisplayName:        req.DisplayName,
		IsClient:           req.IsClient,
		IsModerator:        req.IsModerator,
		IsCommunityManager: req.IsCommunityManager,
		IsAdministrator:    req.IsAdministrator,
		ModeratorID:        req.ModeratorID,
	})
	if err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "create user failed")
		return
	}
	response.Success(c, user)
}

// GetUser 用户详情
func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.UserService.GetUser(userID)
	if err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "fetch user failed")
		return
	}
	response.Success(c, user)
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	var query struct {
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
		Role     string `form:"role"`
		Status   string `form:"status"`
		Search   string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query")
		return
	}
	page, pageSize := normalizePagination(query.Page, query.PageSize)

	users, total, err := h.UserService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Role:     query.Role,
		Status:   query.Status,
		Search:   query.Search,
	})
	if err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "list users failed")
		return
	}
	response.SuccessWithPage(c, users, buildPagination(page, pageSize, total))
}

// UpdateUserStatus 启用或停用账号
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	if err := h.UserService.UpdateStatus(userID, req.Status); err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "update user status failed")
		return
	}
	response.Success(c, nil)
}

// DeleteUser 删除用户
func (h *Handler) DeleteUser(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.UserService.DeleteUser(actorID, userID); err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "delete user failed")
		return
	}
	response.Success(c, nil)
}

// AssignmentRequest 关系绑定请求
type AssignmentRequest struct {
	ClientID    uint `json:"client_id"`
	ModeratorID uint `json:"moderator_id"`
	ManagerID   uint `json:"manager_id"`
}

// BindClientModerator 绑定客户与其审核人
func (h *Handler) BindClientModerator(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClientID == 0 || req.ModeratorID == 0 {
		response.BadRequest(c, "client_id and moderator_id required")
		return
	}
	if err := h.UserService.BindClientModerator(req.ClientID, req.ModeratorID); err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "bind moderator failed")
		return
	}
	response.Success(c, nil)
}

// AssignModerator 把审核人分配给运营经理
func (h *Handler) AssignModerator(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ModeratorID == 0 || req.ManagerID == 0 {
		response.BadRequest(c, "moderator_id and manager_id required")
		return
	}
	if err := h.UserService.AssignModerator(req.ModeratorID, req.ManagerID); err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "assign moderator failed")
		return
	}
	response.Success(c, nil)
}

// UnassignModerator 解除审核人与运营经理的关系
func (h *Handler) UnassignModerator(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ModeratorID == 0 || req.ManagerID == 0 {
		response.BadRequest(c, "moderator_id and manager_id required")
		return
	}
	if err := h.UserService.UnassignModerator(req.ModeratorID, req.ManagerID); err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "unassign moderator failed")
		return
	}
	response.Success(c, nil)
}

// AssignClient 把客户分配给运营经理
func (h *Handler) AssignClient(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClientID == 0 || req.ManagerID == 0 {
		response.BadRequest(c, "client_id and manager_id required")
		return
	}
	if err := h.UserService.AssignClient(req.ClientID, req.ManagerID); err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "assign client failed")
		return
	}
	response.Success(c, nil)
}

// UnassignClient 解除客户与运营经理的关系
func (h *Handler) UnassignClient(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClientID == 0 || req.ManagerID == 0 {
		response.BadRequest(c, "client_id and manager_id required")
		return
	}
	if err := h.UserService.UnassignClient(req.ClientID, req.ManagerID); err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "unassign client failed")
		return
	}
	response.Success(c, nil)
}

// ListAllPosts 管理端全量帖子列表
func (h *Handler) ListAllPosts(c *gin.Context) {
	var query struct {
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
		Status   string `form:"status"`
		ClientID uint   `form:"client_id"`
		Platform string `form:"platform"`
		Search   string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query")
		return
	}
	page, pageSize := normalizePagination(query.Page, query.PageSize)

	posts, total, err := h.PostRepo.List(repository.PostListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   query.Status,
		ClientID: query.ClientID,
		Platform: query.Platform,
		Search:   query.Search,
	})
	if err != nil {
		response.Error(c, response.CodeInternal, "list posts failed")
		return
	}
	response.SuccessWithPage(c, posts, buildPagination(page, pageSize, total))
}

// TriggerSweep 手动触发一轮发布扫描
func (h *Handler) TriggerSweep(c *gin.Context) {
	result, err := h.DispatchService.RunSweep(time.Now())
	if err != nil {
		response.Error(c, response.CodeInternal, "sweep failed")
		return
	}
	response.Success(c, result)
}
