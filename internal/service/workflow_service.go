package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/repository"
)

// Transition 一次状态迁移的显式结果，调用方据此决定后续动作。
type Transition struct {
	From  string
	To    string
	Event string
}

// WorkflowService 帖子工作流引擎。
// 所有状态迁移都走条件更新，先到先得，输掉并发竞争的一方拿到 ErrStatusConflict。
type WorkflowService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	pageRepo  repository.PlatformPageRepository
	authorize *AuthorizeService
	notifier  Notifier
}

// NewWorkflowService 创建工作流服务
func NewWorkflowService(postRepo repository.PostRepository, userRepo repository.UserRepository, pageRepo repository.PlatformPageRepository, authorize *AuthorizeService, notifier Notifier) *WorkflowService {
	return &WorkflowService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		pageRepo:  pageRepo,
		authorize: authorize,
		notifier:  notifier,
	}
}

// CreatePostInput 创建帖子输入
type CreatePostInput struct {
	ClientID     uint
	Title        string
	Body         string
	Media        []string
	Platforms    []string
	PageID       *uint
	ScheduledFor *time.Time
	StatusHint   string // draft 或 pending，默认 pending
}

// UpdatePostInput 更新帖子输入，nil 字段不修改。
type UpdatePostInput struct {
	Title        *string
	Body         *string
	Media        []string
	Platforms    []string
	PageID       *uint
	ScheduledFor *time.Time
}

// CreatePost 为客户创建帖子，状态落在 draft 或 pending。
func (s *WorkflowService) CreatePost(actorID uint, input CreatePostInput) (*models.Post, *Transition, error) {
	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize.AuthorizeCreate(actor, input.ClientID); err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(input.Body) == "" {
		return nil, nil, fmt.Errorf("%w: body required", ErrPostInvalid)
	}
	if len(input.Platforms) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one target platform required", ErrPlatformsMissing)
	}

	status := constants.PostStatusPending
	if input.StatusHint == constants.PostStatusDraft {
		status = constants.PostStatusDraft
	}

	post := &models.Post{
		Title:        input.Title,
		Body:         input.Body,
		Media:        models.StringArray(input.Media),
		Platforms:    models.StringArray(input.Platforms),
		PageID:       input.PageID,
		CreatorID:    actor.ID,
		ClientID:     input.ClientID,
		ScheduledFor: input.ScheduledFor,
		Status:       status,
	}
	if err := s.postRepo.Create(post); err != nil {
		logger.Errorw("post_create_failed", "client_id", input.ClientID, "error", err.Error())
		return nil, nil, ErrPostCreateFailed
	}

	if status == constants.PostStatusPending && actor.ID != input.ClientID {
		notifyPostEvent(s.notifier, input.ClientID, constants.NotificationTypePending, post, "a new post is pending your approval")
	}

	logger.Infow("post_created",
		"post_id", post.ID,
		"client_id", post.ClientID,
		"creator_id", post.CreatorID,
		"status", post.Status)
	return post, &Transition{From: "", To: status, Event: constants.WorkflowEventCreate}, nil
}

// UpdatePost 编辑帖子内容字段，已排期或已发布的帖子不允许直接编辑。
func (s *WorkflowService) UpdatePost(actorID, postID uint, input UpdatePostInput) (*models.Post, error) {
	actor, post, err := s.loadActorAndPost(actorID, postID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize.Authorize(actor, post, constants.WorkflowEventSubmit); err != nil {
		return nil, err
	}
	switch post.Status {
	case constants.PostStatusDraft, constants.PostStatusPending, constants.PostStatusRejected:
	default:
		return nil, fmt.Errorf("%w: cannot edit %s post", ErrTransitionInvalid, post.Status)
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Body != nil {
		post.Body = *input.Body
	}
	if input.Media != nil {
		post.Media = models.StringArray(input.Media)
	}
	if input.Platforms != nil {
		post.Platforms = models.StringArray(input.Platforms)
	}
	if input.PageID != nil {
		post.PageID = input.PageID
	}
	if input.ScheduledFor != nil {
		post.ScheduledFor = input.ScheduledFor
	}
	post.LastEditor = &actor.ID

	if err := s.postRepo.Update(post); err != nil {
		return nil, ErrPostUpdateFailed
	}
	return post, nil
}

// SubmitPost 草稿提交进入审批队列
func (s *WorkflowService) SubmitPost(actorID, postID uint) (*models.Post, *Transition, error) {
	actor, post, err := s.loadActorAndPost(actorID, postID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize.Authorize(actor, post, constants.WorkflowEventSubmit); err != nil {
		return nil, nil, err
	}
	if post.Status != constants.PostStatusDraft {
		return nil, nil, fmt.Errorf("%w: only draft posts can be submitted", ErrTransitionInvalid)
	}

	updates := map[string]interface{}{"last_edited_by": actor.ID}
	changed, err := s.postRepo.UpdateStatusIf(post.ID, constants.PostStatusDraft, constants.PostStatusPending, updates)
	if err != nil {
		return nil, nil, ErrPostUpdateFailed
	}
	if !changed {
		return nil, nil, ErrStatusConflict
	}

	if actor.ID != post.ClientID {
		notifyPostEvent(s.notifier, post.ClientID, constants.NotificationTypePending, post, "a new post is pending your approval")
	}
	return s.reloaded(post.ID, constants.PostStatusDraft, constants.PostStatusPending, constants.WorkflowEventSubmit)
}

// ApprovePost 审批通过，帖子进入排期。反馈可选。
func (s *WorkflowService) ApprovePost(actorID, postID uint, feedback string) (*models.Post, *Transition, error) {
	return s.review(actorID, postID, feedback, true)
}

// RejectPost 驳回帖子，反馈必填，缺省时落一条占位反馈。
func (s *WorkflowService) RejectPost(actorID, postID uint, feedback string) (*models.Post, *Transition, error) {
	if strings.TrimSpace(feedback) == "" {
		feedback = constants.DefaultRejectionFeedback
	}
	return s.review(actorID, postID, feedback, false)
}

// review 审批与驳回的公共路径。两个维度互斥对（时间戳 + 三态布尔）始终成对翻转。
func (s *WorkflowService) review(actorID, postID uint, feedback string, approved bool) (*models.Post, *Transition, error) {
	actor, post, err := s.loadActorAndPost(actorID, postID)
	if err != nil {
		return nil, nil, err
	}
	event := constants.WorkflowEventApprove
	toStatus := constants.PostStatusScheduled
	if !approved {
		event = constants.WorkflowEventReject
		toStatus = constants.PostStatusRejected
	}
	if err := s.authorize.Authorize(actor, post, event); err != nil {
		return nil, nil, err
	}
	if post.Status != constants.PostStatusPending {
		return nil, nil, fmt.Errorf("%w: only pending posts can be %sd, current status is %s", ErrStatusNotPending, event, post.Status)
	}

	now := time.Now()
	reviewer := constants.ReviewerModerator
	if actor.IsClient && actor.ID == post.ClientID {
		reviewer = constants.ReviewerClient
	}
	switch {
	case reviewer == constants.ReviewerClient && approved:
		post.ApproveByClient(actor.ID, now)
	case reviewer == constants.ReviewerClient:
		post.RejectByClient(actor.ID, now)
	case approved:
		post.ValidateByModerator(actor.ID, now)
	default:
		post.RejectByModerator(actor.ID, now)
	}

	updates := reviewUpdates(post, reviewer)
	if strings.TrimSpace(feedback) != "" {
		updates["feedback"] = feedback
		updates["feedback_by"] = actor.ID
		updates["feedback_at"] = now
	}

	changed, err := s.postRepo.UpdateStatusIf(post.ID, constants.PostStatusPending, toStatus, updates)
	if err != nil {
		logger.Errorw("post_review_failed", "post_id", post.ID, "event", event, "error", err.Error())
		return nil, nil, ErrPostUpdateFailed
	}
	if !changed {
		return nil, nil, ErrStatusConflict
	}

	s.notifyReview(actor, post, reviewer)

	logger.Infow("post_reviewed",
		"post_id", post.ID,
		"event", event,
		"actor_id", actor.ID,
		"reviewer", reviewer)
	return s.reloaded(post.ID, constants.PostStatusPending, toStatus, event)
}

// reviewUpdates 把实体上翻转完成的审批对落成待持久化的列集合。
// 互斥逻辑只存在于 models.Post 的变更器里，这里只做字段映射。
func reviewUpdates(post *models.Post, reviewer string) map[string]interface{} {
	updates := map[string]interface{}{"last_edited_by": post.LastEditor}
	if reviewer == constants.ReviewerClient {
		updates["client_approved_at"] = post.ClientApprovedAt
		updates["client_rejected_at"] = post.ClientRejectedAt
		updates["is_client_approved"] = post.IsClientApproved
		return updates
	}
	updates["moderator_validated_at"] = post.ModeratorValidatedAt
	updates["moderator_rejected_at"] = post.ModeratorRejectedAt
	updates["is_moderator_validated"] = post.IsModeratorValidated
	return updates
}

// resubmitUpdates 审批痕迹重置后的列集合，字段值直接取自实体，既有反馈保留。
func resubmitUpdates(post *models.Post) map[string]interface{} {
	return map[string]interface{}{
		"client_approved_at":     post.ClientApprovedAt,
		"client_rejected_at":     post.ClientRejectedAt,
		"moderator_validated_at": post.ModeratorValidatedAt,
		"moderator_rejected_at":  post.ModeratorRejectedAt,
		"is_client_approved":     post.IsClientApproved,
		"is_moderator_validated": post.IsModeratorValidated,
		"published_at":           post.PublishedAt,
		"last_edited_by":         post.LastEditor,
	}
}

// notifyReview 审批结果通知：创建者必达；审核员审批时带上客户，客户审批时带上其审核员。
// 审批结论从实体的派生视图读取，不另传布尔。
func (s *WorkflowService) notifyReview(actor *models.User, post *models.Post, reviewer string) {
	review := post.ModeratorReview()
	if reviewer == constants.ReviewerClient {
		review = post.ClientReview()
	}
	approved := review.State == models.ReviewApproved
	verdict := "approved"
	if !approved {
		verdict = "rejected"
	}
	notifyType := reviewNotifyType(approved)

	if post.CreatorID != actor.ID {
		notifyPostEvent(s.notifier, post.CreatorID, notifyType, post, "your post was "+verdict)
	}
	if reviewer == constants.ReviewerClient {
		client, err := s.userRepo.GetByID(post.ClientID)
		if err != nil {
			logger.Warnw("review_notify_lookup_failed", "post_id", post.ID, "error", err.Error())
			return
		}
		if client != nil && client.ModeratorID != nil && *client.ModeratorID != actor.ID {
			notifyPostEvent(s.notifier, *client.ModeratorID, notifyType, post, "a post of your client was "+verdict)
		}
		return
	}
	if post.ClientID != actor.ID {
		notifyPostEvent(s.notifier, post.ClientID, notifyType, post, "your post was "+verdict+" by a moderator")
	}
}

// ResubmitPost 把被驳回或已排期的帖子重置回待审批，清空全部审批痕迹。
// 对已处于 pending 的帖子重复调用等价于一次调用。
func (s *WorkflowService) ResubmitPost(actorID, postID uint) (*models.Post, *Transition, error) {
	actor, post, err := s.loadActorAndPost(actorID, postID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize.Authorize(actor, post, constants.WorkflowEventResubmit); err != nil {
		return nil, nil, err
	}
	switch post.Status {
	case constants.PostStatusRejected, constants.PostStatusScheduled, constants.PostStatusPending, constants.PostStatusFailed:
	default:
		return nil, nil, fmt.Errorf("%w: cannot resubmit %s post", ErrTransitionInvalid, post.Status)
	}

	fromStatus := post.Status
	post.ResetForResubmission(actor.ID)
	changed, err := s.postRepo.UpdateStatusIf(post.ID, fromStatus, constants.PostStatusPending, resubmitUpdates(post))
	if err != nil {
		return nil, nil, ErrPostUpdateFailed
	}
	if !changed {
		return nil, nil, ErrStatusConflict
	}
	return s.reloaded(post.ID, fromStatus, constants.PostStatusPending, constants.WorkflowEventResubmit)
}

// CancelApproval 撤销排期，保留既有反馈，清空审批字段。
func (s *WorkflowService) CancelApproval(actorID, postID uint) (*models.Post, *Transition, error) {
	actor, post, err := s.loadActorAndPost(actorID, postID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize.Authorize(actor, post, constants.WorkflowEventCancelApproval); err != nil {
		return nil, nil, err
	}
	if post.Status != constants.PostStatusScheduled {
		return nil, nil, fmt.Errorf("%w: only scheduled posts can have approval canceled", ErrStatusNotScheduled)
	}

	post.ResetForResubmission(actor.ID)
	changed, err := s.postRepo.UpdateStatusIf(post.ID, constants.PostStatusScheduled, constants.PostStatusPending, resubmitUpdates(post))
	if err != nil {
		return nil, nil, ErrPostUpdateFailed
	}
	if !changed {
		return nil, nil, ErrStatusConflict
	}
	return s.reloaded(post.ID, constants.PostStatusScheduled, constants.PostStatusPending, constants.WorkflowEventCancelApproval)
}

// ToDraft 显式降级，仅允许从 scheduled 回到 draft，审批字段原样保留。
func (s *WorkflowService) ToDraft(actorID, postID uint) (*models.Post, *Transition, error) {
	actor, post, err := s.loadActorAndPost(actorID, postID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize.Authorize(actor, post, constants.WorkflowEventToDraft); err != nil {
		return nil, nil, err
	}
	if post.Status != constants.PostStatusScheduled {
		return nil, nil, fmt.Errorf("%w: only scheduled posts can be downgraded to draft", ErrStatusNotScheduled)
	}

	updates := map[string]interface{}{"last_edited_by": actor.ID}
	changed, err := s.postRepo.UpdateStatusIf(post.ID, constants.PostStatusScheduled, constants.PostStatusDraft, updates)
	if err != nil {
		return nil, nil, ErrPostUpdateFailed
	}
	if !changed {
		return nil, nil, ErrStatusConflict
	}
	return s.reloaded(post.ID, constants.PostStatusScheduled, constants.PostStatusDraft, constants.WorkflowEventToDraft)
}

// DeletePost 删除帖子，任何状态下可由隶属成员或管理员执行。
func (s *WorkflowService) DeletePost(actorID, postID uint) error {
	actor, post, err := s.loadActorAndPost(actorID, postID)
	if err != nil {
		return err
	}
	if err := s.authorize.AuthorizeDelete(actor, post); err != nil {
		return err
	}
	if err := s.postRepo.Delete(post.ID); err != nil {
		return ErrPostDeleteFailed
	}
	logger.Infow("post_deleted", "post_id", post.ID, "actor_id", actor.ID)
	return nil
}

// GetPost 按隶属关系取单个帖子
func (s *WorkflowService) GetPost(actorID, postID uint) (*models.Post, error) {
	actor, post, err := s.loadActorAndPost(actorID, postID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdministrator {
		return post, nil
	}
	assigned, err := s.authorize.AssignedToPost(actor, post)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrNotAssigned
	}
	return post, nil
}

// ListPosts 按角色裁剪可见范围后分页列出帖子
func (s *WorkflowService) ListPosts(actorID uint, filter repository.PostListFilter) ([]models.Post, int64, error) {
	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, 0, err
	}
	switch {
	case actor.IsAdministrator:
	case actor.IsClient:
		filter.ClientID = actor.ID
		filter.ClientIDs = nil
	case actor.IsModerator:
		clients, err := s.userRepo.ListClientsByModerator(actor.ID)
		if err != nil {
			return nil, 0, ErrPostFetchFailed
		}
		ids := make([]uint, 0, len(clients))
		for _, c := range clients {
			ids = append(ids, c.ID)
		}
		filter.ClientIDs = ids
		if len(ids) == 0 {
			filter.CreatorID = actor.ID
		}
	case actor.IsCommunityManager:
		ids, err := s.userRepo.ListClientIDsByManager(actor.ID)
		if err != nil {
			return nil, 0, ErrPostFetchFailed
		}
		filter.ClientIDs = ids
		if len(ids) == 0 {
			filter.CreatorID = actor.ID
		}
	default:
		filter.CreatorID = actor.ID
	}
	return s.postRepo.List(filter)
}

func (s *WorkflowService) loadActor(actorID uint) (*models.User, error) {
	actor, err := s.userRepo.GetByID(actorID)
	if err != nil {
		return nil, ErrPostFetchFailed
	}
	if actor == nil {
		return nil, ErrActorNotFound
	}
	return actor, nil
}

func (s *WorkflowService) loadActorAndPost(actorID, postID uint) (*models.User, *models.Post, error) {
	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, nil, err
	}
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, nil, ErrPostFetchFailed
	}
	if post == nil {
		return nil, nil, ErrPostNotFound
	}
	return actor, post, nil
}

func (s *WorkflowService) reloaded(postID uint, from, to, event string) (*models.Post, *Transition, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, nil, ErrPostFetchFailed
	}
	if post == nil {
		return nil, nil, ErrPostNotFound
	}
	return post, &Transition{From: from, To: to, Event: event}, nil
}
