package repository

import (
	"errors"

	"github.com/postdeck-next/internal/models"

	"gorm.io/gorm"
)

// PlatformPageRepository 平台页面数据访问接口
type PlatformPageRepository interface {
	GetByID(id uint) (*models.PlatformPage, error)
	FindFallback(clientID uint, platform string) (*models.PlatformPage, error)
	List(filter PlatformPageListFilter) ([]models.PlatformPage, int64, error)
	Create(page *models.PlatformPage) error
	Update(page *models.PlatformPage) error
	Delete(id uint) error
}

// GormPlatformPageRepository GORM 实现
type GormPlatformPageRepository struct {
	db *gorm.DB
}

// NewPlatformPageRepository 创建平台页面仓库
func NewPlatformPageRepository(db *gorm.DB) *GormPlatformPageRepository {
	return &GormPlatformPageRepository{db: db}
}

// GetByID 根据 ID 获取页面
func (r *GormPlatformPageRepository) GetByID(id uint) (*models.PlatformPage, error) {
	var page models.PlatformPage
	if err := r.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

// FindFallback 在帖子未绑定页面时，取该客户在目标平台上最早启用的页面兜底。
func (r *GormPlatformPageRepository) FindFallback(clientID uint, platform string) (*models.PlatformPage, error) {
	var page models.PlatformPage
	err := r.db.Where("client_id = ? AND platform = ? AND is_active = ?", clientID, platform, true).
		Order("created_at ASC").
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

// List 页面列表
func (r *GormPlatformPageRepository) List(filter PlatformPageListFilter) ([]models.PlatformPage, int64, error) {
	var pages []models.PlatformPage
	query := r.db.Model(&models.PlatformPage{})

	if filter.ClientID != 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at ASC").Find(&pages).Error; err != nil {
		return nil, 0, err
	}
	return pages, total, nil
}

// Create 创建页面
func (r *GormPlatformPageRepository) Create(page *models.PlatformPage) error {
	return r.db.Create(page).Error
}

// Update 更新页面
func (r *GormPlatformPageRepository) Update(page *models.PlatformPage) error {
	return r.db.Save(page).Error
}

// Delete 删除页面
func (r *GormPlatformPageRepository) Delete(id uint) error {
	return r.db.Delete(&models.PlatformPage{}, id).Error
}
