package service

import (
	"testing"

	"github.com/postdeck-next/internal/authz"
	"github.com/postdeck-next/internal/config"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type userServiceFixture struct {
	users *UserService
	authz *authz.Service
}

func setupUserServiceTest(t *testing.T, name string) *userServiceFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ModeratorAssignment{}, &models.ClientAssignment{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("init authz failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	authService := NewAuthService(&config.Config{}, userRepo)
	return &userServiceFixture{
		users: NewUserService(userRepo, authService, authzService),
		authz: authzService,
	}
}

func TestCreateModeratorGrantsAuditReadAccess(t *testing.T) {
	f := setupUserServiceTest(t, "usr_mod_roles")

	moderator, err := f.users.CreateUser(CreateUserInput{
		Email:       "mod@example.com",
		Password:    "secret123",
		IsModerator: true,
	})
	if err != nil {
		t.Fatalf("create moderator failed: %v", err)
	}

	ok, err := f.authz.EnforceUser(moderator.ID, "/admin/posts", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !ok {
		t.Fatal("a freshly created moderator should read the audit post list")
	}

	ok, err = f.authz.EnforceUser(moderator.ID, "/admin/users", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if ok {
		t.Fatal("a moderator must not manage accounts")
	}
}

func TestCreateClientGetsNoRoleBindings(t *testing.T) {
	f := setupUserServiceTest(t, "usr_client_roles")

	client, err := f.users.CreateUser(CreateUserInput{
		Email:    "client@example.com",
		Password: "secret123",
		IsClient: true,
	})
	if err != nil {
		t.Fatalf("create client failed: %v", err)
	}

	roles, err := f.authz.GetUserRoles(client.ID)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("a client must carry no staff role bindings, got %v", roles)
	}
	ok, err := f.authz.EnforceUser(client.ID, "/admin/posts", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if ok {
		t.Fatal("a client must not reach the audit surface")
	}
}

func TestDeleteUserRevokesRoleBindings(t *testing.T) {
	f := setupUserServiceTest(t, "usr_delete_roles")

	admin, err := f.users.CreateUser(CreateUserInput{
		Email:           "admin@example.com",
		Password:        "secret123",
		IsAdministrator: true,
	})
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	moderator, err := f.users.CreateUser(CreateUserInput{
		Email:       "leaving@example.com",
		Password:    "secret123",
		IsModerator: true,
	})
	if err != nil {
		t.Fatalf("create moderator failed: %v", err)
	}

	if err := f.users.DeleteUser(admin.ID, moderator.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	roles, err := f.authz.GetUserRoles(moderator.ID)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("deleted account should keep no role bindings, got %v", roles)
	}
	ok, err := f.authz.EnforceUser(moderator.ID, "/admin/posts", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if ok {
		t.Fatal("deleted account must lose audit access")
	}
}
