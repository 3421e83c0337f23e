package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/postdeck-next/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceUserWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("auditor", "/admin/posts/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetUserRoles(1, []string{"auditor"}); err != nil {
		t.Fatalf("set user roles failed: %v", err)
	}

	allow, err := svc.EnforceUser(1, "/api/v1/admin/posts/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatal("expected allow=true")
	}

	allow, err = svc.EnforceUser(1, "/api/v1/admin/posts/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatal("expected allow=false")
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	// 重复执行应当幂等
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	if err := svc.SyncUserRoles(7, true, false, false); err != nil {
		t.Fatalf("sync roles failed: %v", err)
	}
	allow, err := svc.EnforceUser(7, "/admin/users", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatal("administrator should reach every admin route")
	}

	if err := svc.SyncUserRoles(8, false, true, false); err != nil {
		t.Fatalf("sync roles failed: %v", err)
	}
	allow, err = svc.EnforceUser(8, "/admin/posts", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatal("moderator should inherit the auditor read policy")
	}
	allow, err = svc.EnforceUser(8, "/admin/users", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatal("moderator must not manage users")
	}
}

func TestSetUserRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("auditor", "/admin/posts", "GET"); err != nil {
		t.Fatalf("grant auditor policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy(constants.RoleAdministrator, "/admin/users", "GET"); err != nil {
		t.Fatalf("grant admin policy failed: %v", err)
	}

	if err := svc.SetUserRoles(5, []string{"auditor"}); err != nil {
		t.Fatalf("set user roles failed: %v", err)
	}
	if err := svc.SetUserRoles(5, []string{constants.RoleAdministrator}); err != nil {
		t.Fatalf("override user roles failed: %v", err)
	}

	roles, err := svc.GetUserRoles(5)
	if err != nil {
		t.Fatalf("get user roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != rolePrefix+constants.RoleAdministrator {
		t.Fatalf("override should leave a single role, got %v", roles)
	}

	allow, err := svc.EnforceUser(5, "/admin/posts", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatal("old role policy should no longer apply")
	}
}
