package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/postdeck-next/internal/authz"
	"github.com/postdeck-next/internal/cache"
	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/repository"
)

// UserService 角色目录服务：账号与分配关系的管理入口。
// 账号的角色布尔变化会同步到 casbin 的角色绑定。
type UserService struct {
	userRepo     repository.UserRepository
	authService  *AuthService
	authzService *authz.Service
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository, authService *AuthService, authzService *authz.Service) *UserService {
	return &UserService{
		userRepo:     userRepo,
		authService:  authService,
		authzService: authzService,
	}
}

// CreateUserInput 创建用户输入
type CreateUserInput struct {
	Email              string
	Password           string
	DisplayName        string
	IsClient           bool
	IsModerator        bool
	IsCommunityManager bool
	IsAdministrator    bool
	ModeratorID        *uint
}

// CreateUser 创建用户账号
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrPostInvalid)
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:              email,
		PasswordHash:       hash,
		DisplayName:        input.DisplayName,
		Status:             constants.UserStatusActive,
		IsClient:           input.IsClient,
		IsModerator:        input.IsModerator,
		IsCommunityManager: input.IsCommunityManager,
		IsAdministrator:    input.IsAdministrator,
		ModeratorID:        input.ModeratorID,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	if err := s.syncRoleBindings(user); err != nil {
		return nil, err
	}
	logger.Infow("user_created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// syncRoleBindings 把账号上的角色布尔同步成 casbin 的 g 规则，
// 后台 RBAC 靠这些绑定放行非管理员员工。
func (s *UserService) syncRoleBindings(user *models.User) error {
	if s.authzService == nil {
		return nil
	}
	if err := s.authzService.SyncUserRoles(user.ID, user.IsAdministrator, user.IsModerator, user.IsCommunityManager); err != nil {
		logger.Errorw("user_role_sync_failed", "user_id", user.ID, "error", err.Error())
		return err
	}
	return nil
}

// GetUser 按 ID 取用户
func (s *UserService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers 用户列表
func (s *UserService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// UpdateStatus 启用或停用账号，并同步失效鉴权缓存。
func (s *UserService) UpdateStatus(userID uint, status string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	user.Status = status
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), userID)
	return nil
}

// DeleteUser 删除账号。具备特权角色的账号不允许删除自己。
func (s *UserService) DeleteUser(actorID, userID uint) error {
	if actorID == userID {
		actor, err := s.GetUser(actorID)
		if err != nil {
			return err
		}
		if actor.IsAdministrator || actor.IsModerator || actor.IsCommunityManager {
			return ErrSelfDeleteForbidden
		}
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}
	if s.authzService != nil {
		if err := s.authzService.SetUserRoles(userID, nil); err != nil {
			logger.Warnw("user_role_unbind_failed", "user_id", userID, "error", err.Error())
		}
	}
	_ = cache.DelUserAuthState(context.Background(), userID)
	logger.Infow("user_deleted", "user_id", userID, "actor_id", actorID)
	return nil
}

// BindClientModerator 给客户绑定审核员，一个客户最多绑定一个。
func (s *UserService) BindClientModerator(clientID, moderatorID uint) error {
	client, err := s.GetUser(clientID)
	if err != nil {
		return err
	}
	if !client.IsClient {
		return fmt.Errorf("%w: user %d is not a client", ErrActorForbidden, clientID)
	}
	moderator, err := s.GetUser(moderatorID)
	if err != nil {
		return err
	}
	if !moderator.IsModerator {
		return fmt.Errorf("%w: user %d is not a moderator", ErrActorForbidden, moderatorID)
	}
	client.ModeratorID = &moderator.ID
	return s.userRepo.Update(client)
}

// AssignModerator 建立审核员与运营的多对多隶属关系
func (s *UserService) AssignModerator(moderatorID, managerID uint) error {
	moderator, err := s.GetUser(moderatorID)
	if err != nil {
		return err
	}
	if !moderator.IsModerator {
		return fmt.Errorf("%w: user %d is not a moderator", ErrActorForbidden, moderatorID)
	}
	manager, err := s.GetUser(managerID)
	if err != nil {
		return err
	}
	if !manager.IsCommunityManager {
		return fmt.Errorf("%w: user %d is not a community manager", ErrActorForbidden, managerID)
	}
	return s.userRepo.AssignModeratorToManager(moderatorID, managerID)
}

// AssignClient 把客户分配给运营。
// 运营只能接手其隶属审核员名下的客户，保证客户分配图是审核员分配图的子集。
func (s *UserService) AssignClient(clientID, managerID uint) error {
	client, err := s.GetUser(clientID)
	if err != nil {
		return err
	}
	if !client.IsClient {
		return fmt.Errorf("%w: user %d is not a client", ErrActorForbidden, clientID)
	}
	manager, err := s.GetUser(managerID)
	if err != nil {
		return err
	}
	if !manager.IsCommunityManager {
		return fmt.Errorf("%w: user %d is not a community manager", ErrActorForbidden, managerID)
	}
	if client.ModeratorID == nil {
		return fmt.Errorf("%w: client has no moderator", ErrNotAssigned)
	}
	linked, err := s.userRepo.ModeratorManagedBy(*client.ModeratorID, managerID)
	if err != nil {
		return err
	}
	if !linked {
		return fmt.Errorf("%w: manager is not linked to the client's moderator", ErrNotAssigned)
	}
	return s.userRepo.AssignClientToManager(clientID, managerID)
}

// UnassignModerator 解除审核员与运营的隶属关系
func (s *UserService) UnassignModerator(moderatorID, managerID uint) error {
	return s.userRepo.UnassignModeratorFromManager(moderatorID, managerID)
}

// UnassignClient 解除客户与运营的分配关系
func (s *UserService) UnassignClient(clientID, managerID uint) error {
	return s.userRepo.UnassignClientFromManager(clientID, managerID)
}
