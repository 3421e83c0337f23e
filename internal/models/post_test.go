package models

import (
	"testing"
	"time"

	"github.com/postdeck-next/internal/constants"
)

func assertReviewExclusive(t *testing.T, post *Post) {
	t.Helper()
	if post.ClientApprovedAt != nil && post.ClientRejectedAt != nil {
		t.Fatalf("client approval pair not exclusive: %+v", post)
	}
	if post.ModeratorValidatedAt != nil && post.ModeratorRejectedAt != nil {
		t.Fatalf("moderator approval pair not exclusive: %+v", post)
	}
}

func TestApproveClearsRejection(t *testing.T) {
	now := time.Now()
	post := &Post{Status: constants.PostStatusPending}

	post.RejectByClient(7, now)
	assertReviewExclusive(t, post)
	if post.IsClientApproved == nil || *post.IsClientApproved {
		t.Fatalf("expected is_client_approved=false after rejection")
	}

	post.ApproveByClient(7, now.Add(time.Minute))
	assertReviewExclusive(t, post)
	if post.ClientRejectedAt != nil {
		t.Fatalf("expected rejection timestamp cleared after approval")
	}
	if post.IsClientApproved == nil || !*post.IsClientApproved {
		t.Fatalf("expected is_client_approved=true after approval")
	}
	if post.LastEditor == nil || *post.LastEditor != 7 {
		t.Fatalf("expected last editor 7, got %v", post.LastEditor)
	}
}

func TestModeratorPairExclusiveUnderRepeatedCalls(t *testing.T) {
	now := time.Now()
	post := &Post{Status: constants.PostStatusPending}

	for i := 0; i < 3; i++ {
		post.ValidateByModerator(2, now.Add(time.Duration(i)*time.Second))
		assertReviewExclusive(t, post)
		post.RejectByModerator(2, now.Add(time.Duration(i)*time.Second))
		assertReviewExclusive(t, post)
	}
	if review := post.ModeratorReview(); review.State != ReviewRejected {
		t.Fatalf("expected rejected review state, got %v", review.State)
	}
}

func TestResetForResubmission(t *testing.T) {
	now := time.Now()
	post := &Post{Status: constants.PostStatusRejected}
	post.ApproveByClient(1, now)
	post.RejectByModerator(2, now)
	post.MarkPublished(now)

	post.ResetForResubmission(4)

	if post.Status != constants.PostStatusPending {
		t.Fatalf("expected pending status, got %s", post.Status)
	}
	if post.ClientApprovedAt != nil || post.ClientRejectedAt != nil ||
		post.ModeratorValidatedAt != nil || post.ModeratorRejectedAt != nil {
		t.Fatalf("expected all review timestamps cleared: %+v", post)
	}
	if post.IsClientApproved != nil || post.IsModeratorValidated != nil {
		t.Fatalf("expected tri-state booleans cleared")
	}
	if post.PublishedAt != nil {
		t.Fatalf("expected published_at cleared on resubmission")
	}

	// 重复调用结果一致
	post.ResetForResubmission(4)
	if post.Status != constants.PostStatusPending || post.ClientApprovedAt != nil {
		t.Fatalf("resubmission should be idempotent")
	}
}

func TestReviewDerivation(t *testing.T) {
	now := time.Now()
	post := &Post{}
	if review := post.ClientReview(); review.State != ReviewUnreviewed {
		t.Fatalf("expected unreviewed, got %v", review.State)
	}
	post.ApproveByClient(1, now)
	review := post.ClientReview()
	if review.State != ReviewApproved || review.At == nil {
		t.Fatalf("expected approved with timestamp, got %+v", review)
	}
}

func TestPlatformPageTokenValid(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		page *PlatformPage
		want bool
	}{
		{"nil page", nil, false},
		{"empty token", &PlatformPage{}, false},
		{"no expiry", &PlatformPage{AccessToken: "tok"}, true},
		{"expired", &PlatformPage{AccessToken: "tok", TokenExpiresAt: &expired}, false},
		{"valid", &PlatformPage{AccessToken: "tok", TokenExpiresAt: &future}, true},
	}
	for _, tc := range cases {
		if got := tc.page.TokenValid(now); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
