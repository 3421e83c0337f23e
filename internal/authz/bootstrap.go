package authz

import (
	"fmt"

	"github.com/postdeck-next/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵。
// 管理端路由由 Casbin 把关，帖子工作流内部的隶属判定留给领域层。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "workflow_auditor",
			Policies: []Policy{
				{Object: "/admin/posts", Action: "GET"},
				{Object: "/admin/posts/:id", Action: "GET"},
			},
		},
		{
			Role:     constants.RoleModerator,
			Inherits: []string{"workflow_auditor"},
		},
		{
			Role:     constants.RoleCommunityManager,
			Inherits: []string{"workflow_auditor"},
		},
		{
			Role:     constants.RoleAdministrator,
			Inherits: []string{"workflow_auditor"},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}

// SyncUserRoles 按账号角色标记同步 Casbin 角色绑定
func (s *Service) SyncUserRoles(userID uint, isAdministrator, isModerator, isCommunityManager bool) error {
	roles := make([]string, 0, 3)
	if isAdministrator {
		roles = append(roles, constants.RoleAdministrator)
	}
	if isModerator {
		roles = append(roles, constants.RoleModerator)
	}
	if isCommunityManager {
		roles = append(roles, constants.RoleCommunityManager)
	}
	return s.SetUserRoles(userID, roles)
}
