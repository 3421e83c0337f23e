package service

import (
	"fmt"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/repository"
)

// AuthorizeService 工作流授权服务。
// 所有迁移操作都经由 Authorize 一个入口判定，避免布尔角色判断散落在各调用点。
type AuthorizeService struct {
	userRepo repository.UserRepository
}

// NewAuthorizeService 创建授权服务
func NewAuthorizeService(userRepo repository.UserRepository) *AuthorizeService {
	return &AuthorizeService{userRepo: userRepo}
}

// Authorize 判定 actor 是否可以对帖子执行指定事件，不允许时返回哨兵错误。
func (s *AuthorizeService) Authorize(actor *models.User, post *models.Post, event string) error {
	if actor == nil {
		return ErrActorNotFound
	}
	if actor.IsAdministrator {
		return nil
	}
	if post == nil {
		return ErrPostNotFound
	}

	switch event {
	case constants.WorkflowEventApprove, constants.WorkflowEventReject:
		return s.authorizeReview(actor, post)
	case constants.WorkflowEventSubmit, constants.WorkflowEventResubmit,
		constants.WorkflowEventCancelApproval, constants.WorkflowEventToDraft:
		return s.requireAssigned(actor, post)
	default:
		return fmt.Errorf("%w: event %s", ErrActorForbidden, event)
	}
}

// AuthorizeCreate 判定 actor 是否可以为指定客户创建帖子。
func (s *AuthorizeService) AuthorizeCreate(actor *models.User, clientID uint) error {
	if actor == nil {
		return ErrActorNotFound
	}
	if actor.IsAdministrator {
		return nil
	}
	if actor.IsClient && actor.ID == clientID {
		return nil
	}
	assigned, err := s.assignedToClient(actor, clientID)
	if err != nil {
		return err
	}
	if !assigned {
		return ErrNotAssigned
	}
	return nil
}

// AuthorizeDelete 判定 actor 是否可以删除帖子。
func (s *AuthorizeService) AuthorizeDelete(actor *models.User, post *models.Post) error {
	if actor == nil {
		return ErrActorNotFound
	}
	if actor.IsAdministrator {
		return nil
	}
	return s.requireAssigned(actor, post)
}

// authorizeReview 审批与驳回：绑定客户本人，或对该客户有管辖权的审核员。
func (s *AuthorizeService) authorizeReview(actor *models.User, post *models.Post) error {
	if actor.IsClient {
		if actor.ID == post.ClientID {
			return nil
		}
		return ErrNotAssigned
	}
	if actor.IsModerator {
		assigned, err := s.moderatorOversees(actor, post)
		if err != nil {
			return err
		}
		if assigned {
			return nil
		}
		return ErrNotAssigned
	}
	return fmt.Errorf("%w: review requires client or moderator", ErrActorForbidden)
}

func (s *AuthorizeService) requireAssigned(actor *models.User, post *models.Post) error {
	assigned, err := s.AssignedToPost(actor, post)
	if err != nil {
		return err
	}
	if !assigned {
		return ErrNotAssigned
	}
	return nil
}

// AssignedToPost 判定 actor 与帖子是否存在隶属关系：
// 创建者本人、绑定客户本人、客户的审核员、分配到该客户的运营，
// 以及对创建帖子的运营有管辖权的审核员。
func (s *AuthorizeService) AssignedToPost(actor *models.User, post *models.Post) (bool, error) {
	if actor == nil || post == nil {
		return false, nil
	}
	if actor.ID == post.CreatorID {
		return true, nil
	}
	if actor.IsClient {
		return actor.ID == post.ClientID, nil
	}
	assigned, err := s.assignedToClient(actor, post.ClientID)
	if err != nil || assigned {
		return assigned, err
	}
	if actor.IsModerator {
		return s.overseesCreator(actor, post.CreatorID)
	}
	return false, nil
}

// assignedToClient 判定审核员或运营与客户是否有分配关系。
func (s *AuthorizeService) assignedToClient(actor *models.User, clientID uint) (bool, error) {
	if actor.IsModerator {
		client, err := s.userRepo.GetByID(clientID)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrPostFetchFailed, err)
		}
		if client != nil && client.ModeratorID != nil && *client.ModeratorID == actor.ID {
			return true, nil
		}
	}
	if actor.IsCommunityManager {
		managed, err := s.userRepo.ClientManagedBy(clientID, actor.ID)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrPostFetchFailed, err)
		}
		if managed {
			return true, nil
		}
	}
	return false, nil
}

// moderatorOversees 审核员对帖子的管辖权：管客户，或管创建帖子的运营。
func (s *AuthorizeService) moderatorOversees(actor *models.User, post *models.Post) (bool, error) {
	assigned, err := s.assignedToClient(actor, post.ClientID)
	if err != nil || assigned {
		return assigned, err
	}
	return s.overseesCreator(actor, post.CreatorID)
}

// overseesCreator 帖子由运营创建时，其隶属的审核员继承编辑与审批权。
func (s *AuthorizeService) overseesCreator(actor *models.User, creatorID uint) (bool, error) {
	creator, err := s.userRepo.GetByID(creatorID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPostFetchFailed, err)
	}
	if creator == nil || !creator.IsCommunityManager {
		return false, nil
	}
	managed, err := s.userRepo.ModeratorManagedBy(actor.ID, creator.ID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPostFetchFailed, err)
	}
	return managed, nil
}
