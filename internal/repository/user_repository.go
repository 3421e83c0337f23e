package repository

import (
	"errors"
	"strings"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	ListByIDs(ids []uint) ([]models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	Delete(id uint) error
	List(filter UserListFilter) ([]models.User, int64, error)
	ListClientsByModerator(moderatorID uint) ([]models.User, error)
	ModeratorManagedBy(moderatorID, managerID uint) (bool, error)
	ClientManagedBy(clientID, managerID uint) (bool, error)
	ListClientIDsByManager(managerID uint) ([]uint, error)
	AssignModeratorToManager(moderatorID, managerID uint) error
	AssignClientToManager(clientID, managerID uint) error
	UnassignModeratorFromManager(moderatorID, managerID uint) error
	UnassignClientFromManager(clientID, managerID uint) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListByIDs 批量获取用户
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete 删除用户
func (r *GormUserRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List 用户列表
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	var users []models.User
	query := r.db.Model(&models.User{})

	switch filter.Role {
	case constants.RoleClient:
		query = query.Where("is_client = ?", true)
	case constants.RoleModerator:
		query = query.Where("is_moderator = ?", true)
	case constants.RoleCommunityManager:
		query = query.Where("is_community_manager = ?", true)
	case constants.RoleAdministrator:
		query = query.Where("is_administrator = ?", true)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR display_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListClientsByModerator 获取某审核员名下的全部客户
func (r *GormUserRepository) ListClientsByModerator(moderatorID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("is_client = ? AND moderator_id = ?", true, moderatorID).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ModeratorManagedBy 判断审核员是否隶属于某运营
func (r *GormUserRepository) ModeratorManagedBy(moderatorID, managerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ModeratorAssignment{}).
		Where("moderator_id = ? AND manager_id = ?", moderatorID, managerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ClientManagedBy 判断客户是否隶属于某运营
func (r *GormUserRepository) ClientManagedBy(clientID, managerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ClientAssignment{}).
		Where("client_id = ? AND manager_id = ?", clientID, managerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListClientIDsByManager 获取某运营名下的全部客户 ID
func (r *GormUserRepository) ListClientIDsByManager(managerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.ClientAssignment{}).
		Where("manager_id = ?", managerID).
		Pluck("client_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AssignModeratorToManager 建立审核员与运营的隶属关系
func (r *GormUserRepository) AssignModeratorToManager(moderatorID, managerID uint) error {
	assignment := models.ModeratorAssignment{ModeratorID: moderatorID, ManagerID: managerID}
	return r.db.Where(&assignment).FirstOrCreate(&assignment).Error
}

// AssignClientToManager 建立客户与运营的隶属关系
func (r *GormUserRepository) AssignClientToManager(clientID, managerID uint) error {
	assignment := models.ClientAssignment{ClientID: clientID, ManagerID: managerID}
	return r.db.Where(&assignment).FirstOrCreate(&assignment).Error
}

// UnassignModeratorFromManager 解除审核员与运营的隶属关系
func (r *GormUserRepository) UnassignModeratorFromManager(moderatorID, managerID uint) error {
	return r.db.Where("moderator_id = ? AND manager_id = ?", moderatorID, managerID).
		Delete(&models.ModeratorAssignment{}).Error
}

// UnassignClientFromManager 解除客户与运营的隶属关系
func (r *GormUserRepository) UnassignClientFromManager(clientID, managerID uint) error {
	return r.db.Where("client_id = ? AND manager_id = ?", clientID, managerID).
		Delete(&models.ClientAssignment{}).Error
}
