package service

import (
	"fmt"
	"strings"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/repository"
)

// PageService 平台页面服务
type PageService struct {
	pageRepo repository.PlatformPageRepository
	userRepo repository.UserRepository
}

// NewPageService 创建平台页面服务
func NewPageService(pageRepo repository.PlatformPageRepository, userRepo repository.UserRepository) *PageService {
	return &PageService{pageRepo: pageRepo, userRepo: userRepo}
}

// CreatePageInput 接入页面输入
type CreatePageInput struct {
	ClientID    uint
	Platform    string
	Name        string
	ExternalID  string
	AccessToken string
}

// CreatePage 为客户接入一个平台页面
func (s *PageService) CreatePage(input CreatePageInput) (*models.PlatformPage, error) {
	platformName := strings.ToLower(strings.TrimSpace(input.Platform))
	switch platformName {
	case constants.PlatformFacebook, constants.PlatformInstagram, constants.PlatformLinkedIn:
	default:
		return nil, fmt.Errorf("%w: unknown platform %q", ErrPostInvalid, input.Platform)
	}
	if input.ExternalID == "" || input.AccessToken == "" {
		return nil, fmt.Errorf("%w: external id and access token required", ErrPostInvalid)
	}
	client, err := s.userRepo.GetByID(input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || !client.IsClient {
		return nil, ErrUserNotFound
	}

	page := &models.PlatformPage{
		ClientID:    input.ClientID,
		Platform:    platformName,
		Name:        input.Name,
		ExternalID:  input.ExternalID,
		AccessToken: input.AccessToken,
		IsActive:    true,
	}
	if err := s.pageRepo.Create(page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetPage 按 ID 取页面
func (s *PageService) GetPage(id uint) (*models.PlatformPage, error) {
	page, err := s.pageRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageNotFound
	}
	return page, nil
}

// ListPages 页面列表
func (s *PageService) ListPages(filter repository.PlatformPageListFilter) ([]models.PlatformPage, int64, error) {
	return s.pageRepo.List(filter)
}

// Deactivate 停用页面，调度兜底解析不再选中它。
func (s *PageService) Deactivate(id uint) error {
	page, err := s.GetPage(id)
	if err != nil {
		return err
	}
	page.IsActive = false
	return s.pageRepo.Update(page)
}

// DeletePage 删除页面
func (s *PageService) DeletePage(id uint) error {
	return s.pageRepo.Delete(id)
}
