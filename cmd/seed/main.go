package main

import (
	"time"

	"github.com/postdeck-next/internal/authz"
	"github.com/postdeck-next/internal/config"
	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// 演示数据：一个审核人、一个绑定的客户、一个运营经理，
// 以及覆盖各个工作流状态的帖子样本。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}
	password := string(hash)

	moderator := models.User{
		Email:        "moderator@postdeck.local",
		PasswordHash: password,
		DisplayName:  "Demo Moderator",
		IsModerator:  true,
		Status:       constants.UserStatusActive,
	}
	if err := models.DB.Where(models.User{Email: moderator.Email}).FirstOrCreate(&moderator).Error; err != nil {
		stdLog.Fatalf("Failed to seed moderator: %v", err)
	}

	client := models.User{
		Email:        "client@postdeck.local",
		PasswordHash: password,
		DisplayName:  "Demo Client",
		IsClient:     true,
		ModeratorID:  &moderator.ID,
		Status:       constants.UserStatusActive,
	}
	if err := models.DB.Where(models.User{Email: client.Email}).FirstOrCreate(&client).Error; err != nil {
		stdLog.Fatalf("Failed to seed client: %v", err)
	}

	manager := models.User{
		Email:              "manager@postdeck.local",
		PasswordHash:       password,
		DisplayName:        "Demo Community Manager",
		IsCommunityManager: true,
		Status:             constants.UserStatusActive,
	}
	if err := models.DB.Where(models.User{Email: manager.Email}).FirstOrCreate(&manager).Error; err != nil {
		stdLog.Fatalf("Failed to seed manager: %v", err)
	}

	// 分配关系：经理挂在审核人下，客户挂在经理下
	moderatorEdge := models.ModeratorAssignment{ModeratorID: moderator.ID, ManagerID: manager.ID}
	if err := models.DB.Where(moderatorEdge).FirstOrCreate(&moderatorEdge).Error; err != nil {
		stdLog.Fatalf("Failed to seed moderator assignment: %v", err)
	}
	clientEdge := models.ClientAssignment{ClientID: client.ID, ManagerID: manager.ID}
	if err := models.DB.Where(clientEdge).FirstOrCreate(&clientEdge).Error; err != nil {
		stdLog.Fatalf("Failed to seed client assignment: %v", err)
	}

	// 角色绑定：没有 g 规则的员工账号过不了后台 RBAC
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to bootstrap builtin roles: %v", err)
	}
	for _, user := range []*models.User{&moderator, &client, &manager} {
		if err := authzService.SyncUserRoles(user.ID, user.IsAdministrator, user.IsModerator, user.IsCommunityManager); err != nil {
			stdLog.Fatalf("Failed to sync roles for %s: %v", user.Email, err)
		}
	}

	tokenExpiry := time.Now().Add(90 * 24 * time.Hour)
	page := models.PlatformPage{
		ClientID:       client.ID,
		Platform:       constants.PlatformFacebook,
		Name:           "Demo Facebook Page",
		ExternalID:     "1000001",
		AccessToken:    "demo-access-token",
		TokenExpiresAt: &tokenExpiry,
		IsActive:       true,
	}
	if err := models.DB.Where(models.PlatformPage{ClientID: client.ID, ExternalID: page.ExternalID}).
		FirstOrCreate(&page).Error; err != nil {
		stdLog.Fatalf("Failed to seed platform page: %v", err)
	}

	scheduledFor := time.Now().Add(2 * time.Hour)
	now := time.Now()
	approved := true
	posts := []models.Post{
		{
			Title:     "Draft announcement",
			Body:      "Working copy, not submitted yet.",
			Platforms: models.StringArray{constants.PlatformFacebook},
			CreatorID: manager.ID,
			ClientID:  client.ID,
			Status:    constants.PostStatusDraft,
		},
		{
			Title:        "Pending campaign teaser",
			Body:         "Waiting for client and moderator review.",
			Platforms:    models.StringArray{constants.PlatformFacebook},
			PageID:       &page.ID,
			CreatorID:    manager.ID,
			ClientID:     client.ID,
			ScheduledFor: &scheduledFor,
			Status:       constants.PostStatusPending,
		},
		{
			Title:                "Scheduled product launch",
			Body:                 "Approved on both tracks, waiting for publish time.",
			Platforms:            models.StringArray{constants.PlatformFacebook},
			PageID:               &page.ID,
			CreatorID:            manager.ID,
			ClientID:             client.ID,
			ScheduledFor:         &scheduledFor,
			Status:               constants.PostStatusScheduled,
			IsClientApproved:     &approved,
			IsModeratorValidated: &approved,
			ClientApprovedAt:     &now,
			ModeratorValidatedAt: &now,
		},
	}
	for i := range posts {
		if err := models.DB.Where(models.Post{Title: posts[i].Title, ClientID: client.ID}).
			FirstOrCreate(&posts[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed post %q: %v", posts[i].Title, err)
		}
	}

	stdLog.Printf("Seed completed: moderator=%d client=%d manager=%d page=%d posts=%d",
		moderator.ID, client.ID, manager.ID, page.ID, len(posts))
}
