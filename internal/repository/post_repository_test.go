package repository

import (
	"testing"
	"time"

	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPostRepositoryTest(t *testing.T, name string) (*GormPostRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Post{}, &models.PlatformPage{}); err != nil {
		t.Fatalf("migrate post/page failed: %v", err)
	}
	return NewPostRepository(db), db
}

func createScheduledPost(t *testing.T, repo *GormPostRepository, clientID uint, scheduledFor time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:        "launch announcement",
		Body:         "we are live",
		Platforms:    models.StringArray{constants.PlatformFacebook},
		CreatorID:    clientID,
		ClientID:     clientID,
		Status:       constants.PostStatusScheduled,
		ScheduledFor: &scheduledFor,
	}
	if err := repo.Create(post); err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	return post
}

func TestClaimScheduledFirstWins(t *testing.T) {
	repo, _ := setupPostRepositoryTest(t, "post_repo_claim")
	post := createScheduledPost(t, repo, 1, time.Now().Add(-time.Minute))

	claimed, err := repo.ClaimScheduled(post.ID)
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to win")
	}

	claimed, err = repo.ClaimScheduled(post.ID)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim to lose")
	}

	got, err := repo.GetByID(post.ID)
	if err != nil {
		t.Fatalf("get post failed: %v", err)
	}
	if got.Status != constants.PostStatusPending {
		t.Fatalf("expected status %s after claim, got %s", constants.PostStatusPending, got.Status)
	}
}

func TestUpdateStatusIfMismatchedFrom(t *testing.T) {
	repo, _ := setupPostRepositoryTest(t, "post_repo_statusif")
	post := createScheduledPost(t, repo, 2, time.Now().Add(time.Hour))

	changed, err := repo.UpdateStatusIf(post.ID, constants.PostStatusDraft, constants.PostStatusPending, nil)
	if err != nil {
		t.Fatalf("conditional update failed: %v", err)
	}
	if changed {
		t.Fatal("expected no rows affected when current status does not match")
	}

	got, err := repo.GetByID(post.ID)
	if err != nil {
		t.Fatalf("get post failed: %v", err)
	}
	if got.Status != constants.PostStatusScheduled {
		t.Fatalf("status should be untouched, got %s", got.Status)
	}
}

func TestListDueReturnsOnlyMature(t *testing.T) {
	repo, _ := setupPostRepositoryTest(t, "post_repo_due")
	now := time.Now()

	due := createScheduledPost(t, repo, 3, now.Add(-2*time.Minute))
	createScheduledPost(t, repo, 3, now.Add(30*time.Minute))

	draft := &models.Post{
		Title:     "still drafting",
		Body:      "unfinished",
		Platforms: models.StringArray{constants.PlatformInstagram},
		CreatorID: 3,
		ClientID:  3,
		Status:    constants.PostStatusDraft,
	}
	if err := repo.Create(draft); err != nil {
		t.Fatalf("create draft failed: %v", err)
	}

	posts, err := repo.ListDue(now, 0)
	if err != nil {
		t.Fatalf("list due failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 due post, got %d", len(posts))
	}
	if posts[0].ID != due.ID {
		t.Fatalf("expected post %d, got %d", due.ID, posts[0].ID)
	}
}

func TestListFiltersByClientAndStatus(t *testing.T) {
	repo, _ := setupPostRepositoryTest(t, "post_repo_list")
	now := time.Now().Add(time.Hour)

	createScheduledPost(t, repo, 10, now)
	createScheduledPost(t, repo, 10, now)
	createScheduledPost(t, repo, 11, now)

	posts, total, err := repo.List(PostListFilter{ClientID: 10, Status: constants.PostStatusScheduled})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("expected 2 posts for client 10, got total=%d len=%d", total, len(posts))
	}

	posts, total, err = repo.List(PostListFilter{ClientIDs: []uint{11}})
	if err != nil {
		t.Fatalf("list by client ids failed: %v", err)
	}
	if total != 1 || len(posts) != 1 {
		t.Fatalf("expected 1 post for client 11, got total=%d len=%d", total, len(posts))
	}
}
