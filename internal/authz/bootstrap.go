package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/announcements", Action: "GET"},
				{Object: "/admin/announcements/:id", Action: "GET"},
				{Object: "/admin/announcement-categories", Action: "GET"},
				{Object: "/admin/announcement-settings", Action: "GET"},
				{Object: "/admin/authz/me", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "analyst",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/announcements/stats", Action: "GET"},
				{Object: "/admin/announcements/:id/stats", Action: "GET"},
				{Object: "/admin/announcements/:id/stats/export", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "editor",
			Inherits: []string{"analyst"},
			Policies: []Policy{
				{Object: "/admin/announcements", Action: "POST"},
				{Object: "/admin/announcements/positions", Action: "PUT"},
				{Object: "/admin/announcements/:id", Action: "*"},
				{Object: "/admin/announcements/:id/*", Action: "*"},
				{Object: "/admin/announcement-categories", Action: "POST"},
				{Object: "/admin/announcement-categories/positions", Action: "PUT"},
				{Object: "/admin/announcement-categories/:id", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，重复执行幂等
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		if err := s.applySeed(seed); err != nil {
			return fmt.Errorf("bootstrap role %s: %w", seed.Role, err)
		}
	}
	return nil
}

func (s *Service) applySeed(seed RoleSeed) error {
	role, err := NormalizeRole(seed.Role)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
		return err
	}
	for _, parent := range seed.Inherits {
		parentRole, err := NormalizeRole(parent)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
			return err
		}
	}
	for _, policy := range seed.Policies {
		p, err := buildPolicy(role, policy.Object, policy.Action)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddPolicy(p.Subject, p.Object, p.Action); err != nil {
			return err
		}
	}
	return nil
}
