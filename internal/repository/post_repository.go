package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/models"

	"gorm.io/gorm"
)

// PostRepository 帖子数据访问接口
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	List(filter PostListFilter) ([]models.Post, int64, error)
	ListDue(now time.Time, limit int) ([]models.Post, error)
	Update(post *models.Post) error
	UpdateFields(id uint, updates map[string]interface{}) error
	UpdateStatusIf(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error)
	ClaimScheduled(id uint) (bool, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormPostRepository
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建帖子仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPostRepository) WithTx(tx *gorm.DB) *GormPostRepository {
	if tx == nil {
		return r
	}
	return &GormPostRepository{db: tx}
}

// Create 创建帖子
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetByID 根据 ID 获取帖子
func (r *GormPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Page").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// List 帖子列表
func (r *GormPostRepository) List(filter PostListFilter) ([]models.Post, int64, error) {
	var posts []models.Post
	query := r.db.Model(&models.Post{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if len(filter.ClientIDs) > 0 {
		query = query.Where("client_id IN ?", filter.ClientIDs)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.Platform != "" {
		query = query.Where("platforms LIKE ?", "%\""+filter.Platform+"\"%")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR body LIKE ?", like, like)
	}
	if filter.ScheduledFrom != nil {
		query = query.Where("scheduled_for >= ?", *filter.ScheduledFrom)
	}
	if filter.ScheduledTo != nil {
		query = query.Where("scheduled_for <= ?", *filter.ScheduledTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}

	if err := query.Order(orderBy).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListDue 查询到期待发布的帖子（已排期且发布时间不晚于 now）
func (r *GormPostRepository) ListDue(now time.Time, limit int) ([]models.Post, error) {
	var posts []models.Post
	query := r.db.Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?", constants.PostStatusScheduled, now).
		Order("scheduled_for ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Update 更新帖子
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// UpdateFields 按字段更新帖子
func (r *GormPostRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Post{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateStatusIf 条件状态迁移，只有当前状态匹配 fromStatus 时才会生效。
// 返回是否真的更新到了这一行，用于并发迁移的先到先得判定。
func (r *GormPostRepository) UpdateStatusIf(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	result := r.db.Model(&models.Post{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClaimScheduled 抢占一条已排期帖子，抢到的调用方负责后续发布。
func (r *GormPostRepository) ClaimScheduled(id uint) (bool, error) {
	return r.UpdateStatusIf(id, constants.PostStatusScheduled, constants.PostStatusPending, nil)
}

// Delete 删除帖子
func (r *GormPostRepository) Delete(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}
