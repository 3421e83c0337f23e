package api

import (
	"github.com/postdeck-next/internal/http/response"
	"github.com/postdeck-next/internal/repository"
	"github.com/postdeck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePageRequest 接入平台页面请求
type CreatePageRequest struct {
	ClientID    uint   `json:"client_id" binding:"required"`
	Platform    string `json:"platform" binding:"required"`
	Name        string `json:"name"`
	ExternalID  string `json:"external_id" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

// CreatePage 接入平台页面（管理端）
func (h *Handler) CreatePage(c *gin.Context) {
	var req CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid page payload")
		return
	}
	page, err := h.PageService.CreatePage(service.CreatePageInput{
		ClientID:    req.ClientID,
		Platform:    req.Platform,
		Name:        req.Name,
		ExternalID:  req.ExternalID,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		respondWithMappedError(c, err, pageErrorRules, response.CodeInternal, "create page failed")
		return
	}
	response.Success(c, page)
}

// ListPages 页面列表，客户只能看到自己的页面。
func (h *Handler) ListPages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var query struct {
		Page       int    `form:"page"`
		PageSize   int    `form:"page_size"`
		ClientID   uint   `form:"client_id"`
		Platform   string `form:"platform"`
		OnlyActive bool   `form:"only_active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query")
		return
	}
	page, pageSize := normalizePagination(query.Page, query.PageSize)

	actor, err := h.UserRepo.GetByID(userID)
	if err != nil || actor == nil {
		response.Unauthorized(c, "account not found")
		return
	}
	clientID := query.ClientID
	if actor.IsClient && !actor.IsAdministrator {
		clientID = actor.ID
	}

	pages, total, err := h.PageService.ListPages(repository.PlatformPageListFilter{
		Page:       page,
		PageSize:   pageSize,
		ClientID:   clientID,
		Platform:   query.Platform,
		OnlyActive: query.OnlyActive,
	})
	if err != nil {
		respondWithMappedError(c, err, pageErrorRules, response.CodeInternal, "list pages failed")
		return
	}
	response.SuccessWithPage(c, pages, buildPagination(page, pageSize, total))
}

// DeactivatePage 停用页面，停用后不再参与兜底选择。
func (h *Handler) DeactivatePage(c *gin.Context) {
	pageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PageService.Deactivate(pageID); err != nil {
		respondWithMappedError(c, err, pageErrorRules, response.CodeInternal, "deactivate page failed")
		return
	}
	response.Success(c, nil)
}

// DeletePage 删除页面
func (h *Handler) DeletePage(c *gin.Context) {
	pageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PageService.DeletePage(pageID); err != nil {
		respondWithMappedError(c, err, pageErrorRules, response.CodeInternal, "delete page failed")
		return
	}
	response.Success(c, nil)
}
