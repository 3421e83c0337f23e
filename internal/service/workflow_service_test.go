package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type recordedNotice struct {
	UserID  uint
	Type    string
	Message string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []recordedNotice
}

func (n *recordingNotifier) Notify(userID uint, notifyType, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, recordedNotice{UserID: userID, Type: notifyType, Message: message})
}

func (n *recordingNotifier) received(userID uint, notifyType string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, notice := range n.notices {
		if notice.UserID == userID && notice.Type == notifyType {
			return true
		}
	}
	return false
}

type workflowFixture struct {
	db        *gorm.DB
	workflow  *WorkflowService
	notifier  *recordingNotifier
	postRepo  *repository.GormPostRepository
	userRepo  *repository.GormUserRepository
	client    *models.User
	moderator *models.User
	manager   *models.User
}

func setupWorkflowTest(t *testing.T, name string) *workflowFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ModeratorAssignment{}, &models.ClientAssignment{}, &models.PlatformPage{}, &models.Post{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	pageRepo := repository.NewPlatformPageRepository(db)
	notifier := &recordingNotifier{}
	workflow := NewWorkflowService(postRepo, userRepo, pageRepo, NewAuthorizeService(userRepo), notifier)

	moderator := &models.User{Email: name + "-mod@example.com", PasswordHash: "x", IsModerator: true}
	if err := userRepo.Create(moderator); err != nil {
		t.Fatalf("create moderator failed: %v", err)
	}
	client := &models.User{Email: name + "-client@example.com", PasswordHash: "x", IsClient: true, ModeratorID: &moderator.ID}
	if err := userRepo.Create(client); err != nil {
		t.Fatalf("create client failed: %v", err)
	}
	manager := &models.User{Email: name + "-cm@example.com", PasswordHash: "x", IsCommunityManager: true}
	if err := userRepo.Create(manager); err != nil {
		t.Fatalf("create manager failed: %v", err)
	}
	if err := userRepo.AssignModeratorToManager(moderator.ID, manager.ID); err != nil {
		t.Fatalf("assign moderator failed: %v", err)
	}
	if err := userRepo.AssignClientToManager(client.ID, manager.ID); err != nil {
		t.Fatalf("assign client failed: %v", err)
	}

	return &workflowFixture{
		db:        db,
		workflow:  workflow,
		notifier:  notifier,
		postRepo:  postRepo,
		userRepo:  userRepo,
		client:    client,
		moderator: moderator,
		manager:   manager,
	}
}

func (f *workflowFixture) createPendingPost(t *testing.T) *models.Post {
	t.Helper()
	post, transition, err := f.workflow.CreatePost(f.manager.ID, CreatePostInput{
		ClientID:  f.client.ID,
		Title:     "spring campaign",
		Body:      "new collection is out",
		Platforms: []string{constants.PlatformLinkedIn},
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if transition.To != constants.PostStatusPending || transition.Event != constants.WorkflowEventCreate {
		t.Fatalf("unexpected create transition: %+v", transition)
	}
	return post
}

func TestClientApproveSchedulesPost(t *testing.T) {
	f := setupWorkflowTest(t, "wf_approve")
	post := f.createPendingPost(t)

	if !f.notifier.received(f.client.ID, constants.NotificationTypePending) {
		t.Fatal("client should be notified about the pending post")
	}

	approved, transition, err := f.workflow.ApprovePost(f.client.ID, post.ID, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if transition.From != constants.PostStatusPending || transition.To != constants.PostStatusScheduled {
		t.Fatalf("unexpected transition: %+v", transition)
	}
	if approved.Status != constants.PostStatusScheduled {
		t.Fatalf("expected scheduled, got %s", approved.Status)
	}
	if approved.ClientApprovedAt == nil {
		t.Fatal("client_approved_at should be set")
	}
	if approved.IsClientApproved == nil || !*approved.IsClientApproved {
		t.Fatal("is_client_approved should be true")
	}
	if approved.ClientReview().State != models.ReviewApproved {
		t.Fatalf("client review should be approved, got %v", approved.ClientReview().State)
	}
	if !f.notifier.received(f.manager.ID, constants.NotificationTypeApproval) {
		t.Fatal("creator should be notified about the approval")
	}
	if !f.notifier.received(f.moderator.ID, constants.NotificationTypeApproval) {
		t.Fatal("client's moderator should be notified about a client approval")
	}
}

func TestModeratorRejectRecordsFeedback(t *testing.T) {
	f := setupWorkflowTest(t, "wf_reject")
	post := f.createPendingPost(t)

	rejected, transition, err := f.workflow.RejectPost(f.moderator.ID, post.ID, "needs more hashtags")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if transition.To != constants.PostStatusRejected || transition.Event != constants.WorkflowEventReject {
		t.Fatalf("unexpected transition: %+v", transition)
	}
	if rejected.ModeratorRejectedAt == nil {
		t.Fatal("moderator_rejected_at should be set")
	}
	if rejected.IsModeratorValidated == nil || *rejected.IsModeratorValidated {
		t.Fatal("is_moderator_validated should be false")
	}
	if rejected.Feedback != "needs more hashtags" {
		t.Fatalf("feedback not recorded, got %q", rejected.Feedback)
	}
	if !f.notifier.received(f.client.ID, constants.NotificationTypeRejection) {
		t.Fatal("client should be notified about a moderator rejection")
	}
}

func TestRejectWithoutFeedbackUsesPlaceholder(t *testing.T) {
	f := setupWorkflowTest(t, "wf_reject_placeholder")
	post := f.createPendingPost(t)

	rejected, _, err := f.workflow.RejectPost(f.client.ID, post.ID, "  ")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Feedback != constants.DefaultRejectionFeedback {
		t.Fatalf("expected placeholder feedback, got %q", rejected.Feedback)
	}
}

func TestResubmitClearsReviewState(t *testing.T) {
	f := setupWorkflowTest(t, "wf_resubmit")
	post := f.createPendingPost(t)

	if _, _, err := f.workflow.RejectPost(f.moderator.ID, post.ID, "tone is off"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	resubmitted, transition, err := f.workflow.ResubmitPost(f.manager.ID, post.ID)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if transition.From != constants.PostStatusRejected || transition.To != constants.PostStatusPending {
		t.Fatalf("unexpected transition: %+v", transition)
	}
	assertReviewCleared(t, resubmitted)

	// 重复调用与调用一次结果一致
	again, _, err := f.workflow.ResubmitPost(f.manager.ID, post.ID)
	if err != nil {
		t.Fatalf("second resubmit failed: %v", err)
	}
	if again.Status != constants.PostStatusPending {
		t.Fatalf("expected pending after second resubmit, got %s", again.Status)
	}
	assertReviewCleared(t, again)
}

func assertReviewCleared(t *testing.T, post *models.Post) {
	t.Helper()
	if post.Status != constants.PostStatusPending {
		t.Fatalf("expected pending, got %s", post.Status)
	}
	if post.ClientApprovedAt != nil || post.ClientRejectedAt != nil ||
		post.ModeratorValidatedAt != nil || post.ModeratorRejectedAt != nil {
		t.Fatal("review timestamps should all be cleared")
	}
	if post.IsClientApproved != nil || post.IsModeratorValidated != nil {
		t.Fatal("tri-state booleans should be cleared")
	}
}

func TestApproveGuardRejectsNonPending(t *testing.T) {
	f := setupWorkflowTest(t, "wf_guard")
	post := f.createPendingPost(t)

	if _, _, err := f.workflow.ApprovePost(f.client.ID, post.ID, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	for _, status := range []string{constants.PostStatusScheduled, constants.PostStatusDraft, constants.PostStatusPublished, constants.PostStatusFailed} {
		if err := f.db.Model(&models.Post{}).Where("id = ?", post.ID).Update("status", status).Error; err != nil {
			t.Fatalf("force status failed: %v", err)
		}
		_, _, err := f.workflow.ApprovePost(f.client.ID, post.ID, "")
		if !errors.Is(err, ErrStatusNotPending) {
			t.Fatalf("approve from %s should fail with ErrStatusNotPending, got %v", status, err)
		}
		got, err := f.postRepo.GetByID(post.ID)
		if err != nil {
			t.Fatalf("get post failed: %v", err)
		}
		if got.Status != status {
			t.Fatalf("guard failure must leave the post unmodified, status flipped to %s", got.Status)
		}
	}
}

func TestUnassignedActorCannotReview(t *testing.T) {
	f := setupWorkflowTest(t, "wf_unassigned")
	post := f.createPendingPost(t)

	stranger := &models.User{Email: "stranger@example.com", PasswordHash: "x", IsModerator: true}
	if err := f.userRepo.Create(stranger); err != nil {
		t.Fatalf("create stranger failed: %v", err)
	}

	_, _, err := f.workflow.ApprovePost(stranger.ID, post.ID, "")
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("unassigned moderator should get ErrNotAssigned, got %v", err)
	}
}

func TestToDraftOnlyFromScheduled(t *testing.T) {
	f := setupWorkflowTest(t, "wf_todraft")
	post := f.createPendingPost(t)

	_, _, err := f.workflow.ToDraft(f.manager.ID, post.ID)
	if !errors.Is(err, ErrStatusNotScheduled) {
		t.Fatalf("to-draft from pending should fail, got %v", err)
	}

	if _, _, err := f.workflow.ApprovePost(f.client.ID, post.ID, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	downgraded, transition, err := f.workflow.ToDraft(f.manager.ID, post.ID)
	if err != nil {
		t.Fatalf("to-draft failed: %v", err)
	}
	if transition.To != constants.PostStatusDraft {
		t.Fatalf("unexpected transition: %+v", transition)
	}
	// 显式降级保留审批字段
	if downgraded.ClientApprovedAt == nil {
		t.Fatal("to-draft must not clear approval fields")
	}
}

func TestCancelApprovalKeepsFeedback(t *testing.T) {
	f := setupWorkflowTest(t, "wf_cancel")
	post := f.createPendingPost(t)

	if _, _, err := f.workflow.ApprovePost(f.client.ID, post.ID, "looks good"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	canceled, _, err := f.workflow.CancelApproval(f.manager.ID, post.ID)
	if err != nil {
		t.Fatalf("cancel approval failed: %v", err)
	}
	if canceled.Status != constants.PostStatusPending {
		t.Fatalf("expected pending, got %s", canceled.Status)
	}
	if canceled.ClientApprovedAt != nil || canceled.IsClientApproved != nil {
		t.Fatal("approval state should be cleared")
	}
	if canceled.Feedback != "looks good" {
		t.Fatalf("feedback should survive cancel, got %q", canceled.Feedback)
	}
}

func TestReviewFlipPersistsExclusivePair(t *testing.T) {
	f := setupWorkflowTest(t, "wf_flip")
	post := f.createPendingPost(t)

	// 先驳回再撤回重提，然后通过：互斥对的翻转由实体变更器决定，
	// 两个方向都要落库
	if _, _, err := f.workflow.RejectPost(f.client.ID, post.ID, "wrong image"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, _, err := f.workflow.ResubmitPost(f.manager.ID, post.ID); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	approved, _, err := f.workflow.ApprovePost(f.client.ID, post.ID, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if approved.ClientApprovedAt == nil || approved.ClientRejectedAt != nil {
		t.Fatalf("client pair not exclusive after flip: %+v", approved)
	}
	if approved.IsClientApproved == nil || !*approved.IsClientApproved {
		t.Fatal("is_client_approved should be true after the flip")
	}
	if approved.ClientReview().State != models.ReviewApproved {
		t.Fatalf("client review should derive approved, got %v", approved.ClientReview().State)
	}
	if approved.ModeratorReview().State != models.ReviewUnreviewed {
		t.Fatal("moderator dimension must stay untouched by a client review")
	}
	if approved.LastEditor == nil || *approved.LastEditor != f.client.ID {
		t.Fatalf("last editor should be the reviewing client, got %v", approved.LastEditor)
	}
}

func TestPublishedUnreachableWithoutSchedule(t *testing.T) {
	f := setupWorkflowTest(t, "wf_reach")
	post := f.createPendingPost(t)

	// pending 只能去 scheduled 或 rejected，没有任何操作能直达 published
	changed, err := f.postRepo.UpdateStatusIf(post.ID, constants.PostStatusScheduled, constants.PostStatusPublished, nil)
	if err != nil {
		t.Fatalf("conditional update failed: %v", err)
	}
	if changed {
		t.Fatal("pending post must not be publishable via the scheduled path")
	}
}

func TestDraftCreationAndSubmit(t *testing.T) {
	f := setupWorkflowTest(t, "wf_draft")
	post, _, err := f.workflow.CreatePost(f.manager.ID, CreatePostInput{
		ClientID:   f.client.ID,
		Title:      "teaser",
		Body:       "coming soon",
		Platforms:  []string{constants.PlatformFacebook},
		StatusHint: constants.PostStatusDraft,
	})
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if post.Status != constants.PostStatusDraft {
		t.Fatalf("expected draft, got %s", post.Status)
	}
	if f.notifier.received(f.client.ID, constants.NotificationTypePending) {
		t.Fatal("draft creation must not notify the client")
	}

	submitted, transition, err := f.workflow.SubmitPost(f.manager.ID, post.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if transition.From != constants.PostStatusDraft || transition.To != constants.PostStatusPending {
		t.Fatalf("unexpected transition: %+v", transition)
	}
	if submitted.Status != constants.PostStatusPending {
		t.Fatalf("expected pending, got %s", submitted.Status)
	}
	if !f.notifier.received(f.client.ID, constants.NotificationTypePending) {
		t.Fatal("client should be notified once the draft is submitted")
	}
}

func TestCreateRequiresPlatformAndBody(t *testing.T) {
	f := setupWorkflowTest(t, "wf_validate")

	_, _, err := f.workflow.CreatePost(f.manager.ID, CreatePostInput{ClientID: f.client.ID, Body: "text"})
	if !errors.Is(err, ErrPlatformsMissing) {
		t.Fatalf("expected ErrPlatformsMissing, got %v", err)
	}

	_, _, err = f.workflow.CreatePost(f.manager.ID, CreatePostInput{
		ClientID:  f.client.ID,
		Platforms: []string{constants.PlatformFacebook},
		Body:      "   ",
	})
	if !errors.Is(err, ErrPostInvalid) {
		t.Fatalf("expected ErrPostInvalid, got %v", err)
	}
}

func TestModeratorInheritsRightsOverManagerPosts(t *testing.T) {
	f := setupWorkflowTest(t, "wf_inherit")

	// 客户换绑到别的审核员，原审核员只能凭运营隶属关系继承权限
	other := &models.User{Email: "other-mod@example.com", PasswordHash: "x", IsModerator: true}
	if err := f.userRepo.Create(other); err != nil {
		t.Fatalf("create moderator failed: %v", err)
	}
	post := f.createPendingPost(t)
	f.client.ModeratorID = &other.ID
	if err := f.userRepo.Update(f.client); err != nil {
		t.Fatalf("rebind client failed: %v", err)
	}

	// f.moderator 仍然管着创建帖子的运营，应当可以审批
	if _, _, err := f.workflow.ApprovePost(f.moderator.ID, post.ID, ""); err != nil {
		t.Fatalf("moderator with manager link should be able to approve: %v", err)
	}
}

func TestScheduledForDrivesDueQuery(t *testing.T) {
	f := setupWorkflowTest(t, "wf_due")
	past := time.Now().Add(-time.Minute)
	post, _, err := f.workflow.CreatePost(f.manager.ID, CreatePostInput{
		ClientID:     f.client.ID,
		Body:         "due post",
		Platforms:    []string{constants.PlatformLinkedIn},
		ScheduledFor: &past,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, _, err := f.workflow.ApprovePost(f.client.ID, post.ID, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	due, err := f.postRepo.ListDue(time.Now(), 0)
	if err != nil {
		t.Fatalf("list due failed: %v", err)
	}
	if len(due) != 1 || due[0].ID != post.ID {
		t.Fatalf("expected the approved post to be due, got %d rows", len(due))
	}
}
