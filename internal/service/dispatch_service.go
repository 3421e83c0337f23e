package service

import (
	"context"
	"time"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/platform"
	"github.com/postdeck-next/internal/queue"
	"github.com/postdeck-next/internal/repository"
)

// DispatchService 定时发布调度器。
// 扫描到期的已排期帖子，用条件更新抢占后交给异步任务发布，
// 网络调用永远不在扫描循环里发生。
type DispatchService struct {
	postRepo       repository.PostRepository
	pageRepo       repository.PlatformPageRepository
	registry       *platform.Registry
	queueClient    *queue.Client
	notifier       Notifier
	publishTimeout time.Duration
}

// NewDispatchService 创建调度服务
func NewDispatchService(postRepo repository.PostRepository, pageRepo repository.PlatformPageRepository, registry *platform.Registry, queueClient *queue.Client, notifier Notifier, publishTimeout time.Duration) *DispatchService {
	if publishTimeout <= 0 {
		publishTimeout = 30 * time.Second
	}
	return &DispatchService{
		postRepo:       postRepo,
		pageRepo:       pageRepo,
		registry:       registry,
		queueClient:    queueClient,
		notifier:       notifier,
		publishTimeout: publishTimeout,
	}
}

// SweepResult 单轮扫描的结果：抢占成功的帖子，以及抢占后当场失败的帖子。
type SweepResult struct {
	Claimed           []uint `json:"claimed"`
	FailedImmediately []uint `json:"failed_immediately"`
}

// RunSweep 执行一轮扫描。
// 单个帖子的失败只记日志，不影响同一轮的其他帖子。
func (s *DispatchService) RunSweep(now time.Time) (*SweepResult, error) {
	due, err := s.postRepo.ListDue(now, 0)
	if err != nil {
		logger.Errorw("dispatch_sweep_query_failed", "error", err.Error())
		return nil, err
	}

	result := &SweepResult{}
	for i := range due {
		post := &due[i]
		ok, err := s.postRepo.ClaimScheduled(post.ID)
		if err != nil {
			logger.Errorw("dispatch_claim_failed", "post_id", post.ID, "error", err.Error())
			continue
		}
		if !ok {
			// 另一轮扫描先抢到了
			continue
		}
		result.Claimed = append(result.Claimed, post.ID)
		logger.Debugw("post_claimed", "post_id", post.ID, "event", constants.WorkflowEventClaim)

		if _, err := s.resolvePage(post); err != nil {
			s.markFailed(post, err.Error())
			result.FailedImmediately = append(result.FailedImmediately, post.ID)
			continue
		}
		s.handOff(post.ID)
	}

	if len(result.Claimed) > 0 {
		logger.Infow("dispatch_sweep_done",
			"due", len(due),
			"claimed", len(result.Claimed),
			"failed_immediately", len(result.FailedImmediately))
	}
	return result, nil
}

// handOff 把已抢占的帖子交给异步发布任务，队列不可用时退化为本地 goroutine。
func (s *DispatchService) handOff(postID uint) {
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueuePostPublish(queue.PostPublishPayload{PostID: postID}); err != nil {
			logger.Errorw("dispatch_enqueue_failed", "post_id", postID, "error", err.Error())
		}
		return
	}
	go func() {
		if err := s.ExecutePublish(context.Background(), postID); err != nil {
			logger.Errorw("dispatch_local_publish_failed", "post_id", postID, "error", err.Error())
		}
	}()
}

// ExecutePublish 异步发布任务入口：校验令牌、调用平台适配器，
// 把帖子推进到 published 或 failed 两个终态之一。不做自动重试。
func (s *DispatchService) ExecutePublish(ctx context.Context, postID uint) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return ErrPostFetchFailed
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.Status != constants.PostStatusPending {
		logger.Warnw("publish_skipped_status", "post_id", post.ID, "status", post.Status)
		return nil
	}

	page, err := s.resolvePage(post)
	if err != nil {
		s.markFailed(post, err.Error())
		return nil
	}
	if !page.TokenValid(time.Now()) {
		s.markFailed(post, ErrTokenExpired.Error())
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	platformPostID, err := s.publishAll(ctx, post, page)
	if err != nil {
		s.markFailed(post, err.Error())
		return nil
	}

	post.MarkPublished(time.Now())
	updates := map[string]interface{}{
		"published_at":     post.PublishedAt,
		"platform_post_id": platformPostID,
		"publish_error":    "",
	}
	changed, err := s.postRepo.UpdateStatusIf(post.ID, constants.PostStatusPending, constants.PostStatusPublished, updates)
	if err != nil {
		logger.Errorw("publish_persist_failed", "post_id", post.ID, "error", err.Error())
		return ErrPostUpdateFailed
	}
	if !changed {
		logger.Warnw("publish_race_lost", "post_id", post.ID)
		return nil
	}

	notifyPostEvent(s.notifier, post.CreatorID, constants.NotificationTypePublish, post, "your post was published")
	if post.ClientID != post.CreatorID {
		notifyPostEvent(s.notifier, post.ClientID, constants.NotificationTypePublish, post, "your post was published")
	}
	logger.Infow("post_published", "post_id", post.ID, "event", constants.WorkflowEventPublish, "platform_post_id", platformPostID)
	return nil
}

// publishAll 对帖子的每个目标平台各发布一次，任一平台失败即整体失败。
func (s *DispatchService) publishAll(ctx context.Context, post *models.Post, page *models.PlatformPage) (string, error) {
	var firstID string
	for _, name := range post.Platforms {
		target := page
		if target.Platform != name {
			fallback, err := s.pageRepo.FindFallback(post.ClientID, name)
			if err != nil {
				return "", ErrPostFetchFailed
			}
			if fallback == nil {
				return "", ErrPageNotFound
			}
			if !fallback.TokenValid(time.Now()) {
				return "", ErrTokenExpired
			}
			target = fallback
		}

		publisher, err := s.registry.Get(name)
		if err != nil {
			return "", err
		}
		result, err := publisher.Publish(ctx, platform.PublishInput{
			PageExternalID: target.ExternalID,
			AccessToken:    target.AccessToken,
			Title:          post.Title,
			Body:           post.Body,
			MediaURLs:      post.Media,
		})
		if err != nil {
			return "", err
		}
		if firstID == "" {
			firstID = result.PlatformPostID
		}
	}
	return firstID, nil
}

// resolvePage 解析帖子绑定的页面，未绑定时按首个目标平台兜底。
func (s *DispatchService) resolvePage(post *models.Post) (*models.PlatformPage, error) {
	if post.PageID != nil {
		page, err := s.pageRepo.GetByID(*post.PageID)
		if err != nil {
			return nil, ErrPostFetchFailed
		}
		if page != nil {
			return page, nil
		}
	}
	if len(post.Platforms) == 0 {
		return nil, ErrPlatformsMissing
	}
	page, err := s.pageRepo.FindFallback(post.ClientID, post.Platforms[0])
	if err != nil {
		return nil, ErrPostFetchFailed
	}
	if page == nil {
		return nil, ErrPageNotFound
	}
	return page, nil
}

// markFailed 把帖子落到 failed 终态并通知创建者，恢复只能走人工 resubmit。
func (s *DispatchService) markFailed(post *models.Post, reason string) {
	updates := map[string]interface{}{"publish_error": reason}
	if _, err := s.postRepo.UpdateStatusIf(post.ID, constants.PostStatusPending, constants.PostStatusFailed, updates); err != nil {
		logger.Errorw("publish_fail_persist_failed", "post_id", post.ID, "error", err.Error())
		return
	}
	notifyPostEvent(s.notifier, post.CreatorID, constants.NotificationTypeFailure, post, "your post failed to publish: "+reason)
	logger.Warnw("post_publish_failed", "post_id", post.ID, "event", constants.WorkflowEventPublishFail, "reason", reason)
}
