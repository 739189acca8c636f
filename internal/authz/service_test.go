package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

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

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("editor_team", "/admin/announcements/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"editor_team"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/announcements/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/announcements/42", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("editor_team", "/admin/announcement-categories", "GET"); err != nil {
		t.Fatalf("grant editor policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("stats_team", "/admin/announcements/stats", "GET"); err != nil {
		t.Fatalf("grant stats policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"editor_team"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:editor_team" {
		t.Fatalf("roles want [role:editor_team], got=%v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{"stats_team"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:stats_team" {
		t.Fatalf("roles want [role:stats_team], got=%v", roles)
	}

	allow, err := svc.EnforceAdmin(2, "/admin/announcement-categories", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceAdmin(2, "/admin/announcements/stats", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/announcement-categories/:id", want: "/admin/announcement-categories/:id"},
		{in: "/admin/announcement-categories/:id", want: "/admin/announcement-categories/:id"},
		{in: "admin/announcement-categories", want: "/admin/announcement-categories"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	// 重复执行保持幂等
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:analyst":          true,
		"role:editor":           true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{"editor"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"analyst"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if err := svc.SetAdminRoles(5, []string{"readonly_auditor"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	cases := []struct {
		name    string
		adminID uint
		object  string
		action  string
		allow   bool
	}{
		{"editor inherits readonly", 3, "/api/v1/admin/announcements", "GET", true},
		{"editor inherits stats", 3, "/api/v1/admin/announcements/:id/stats", "GET", true},
		{"editor publishes", 3, "/api/v1/admin/announcements/:id/publish", "POST", true},
		{"editor updates", 3, "/api/v1/admin/announcements/:id", "PUT", true},
		{"editor reorders categories", 3, "/api/v1/admin/announcement-categories/positions", "PUT", true},
		{"editor cannot touch settings", 3, "/api/v1/admin/announcement-settings", "PUT", false},
		{"analyst exports", 4, "/api/v1/admin/announcements/:id/stats/export", "GET", true},
		{"analyst cannot create", 4, "/api/v1/admin/announcements", "POST", false},
		{"auditor cannot export", 5, "/api/v1/admin/announcements/:id/stats/export", "GET", false},
		{"auditor lists", 5, "/api/v1/admin/announcement-categories", "GET", true},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceAdmin(tc.adminID, tc.object, tc.action)
		if err != nil {
			t.Fatalf("%s: enforce failed: %v", tc.name, err)
		}
		if allow != tc.allow {
			t.Fatalf("%s: want allow=%v got %v", tc.name, tc.allow, allow)
		}
	}
}

func TestBuiltinRolesAreImmutable(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if !svc.IsBuiltinRole("role:editor") || svc.IsBuiltinRole("custom_team") {
		t.Fatalf("builtin detection mismatch")
	}
	if err := svc.DeleteRole("editor"); !errors.Is(err, ErrBuiltinRole) {
		t.Fatalf("delete builtin want ErrBuiltinRole got %v", err)
	}
	if err := svc.GrantRolePolicy("analyst", "/admin/announcement-settings", "PUT"); !errors.Is(err, ErrBuiltinRole) {
		t.Fatalf("grant on builtin want ErrBuiltinRole got %v", err)
	}
	if err := svc.RevokeRolePolicy("readonly_auditor", "/admin/announcements", "GET"); !errors.Is(err, ErrBuiltinRole) {
		t.Fatalf("revoke on builtin want ErrBuiltinRole got %v", err)
	}
	if _, err := svc.EnsureRole("__anchor__"); !errors.Is(err, ErrReservedRole) {
		t.Fatalf("anchor role want ErrReservedRole got %v", err)
	}
	if err := svc.GrantRolePolicy("custom_team", "/admin/announcements", " "); !errors.Is(err, ErrActionRequired) {
		t.Fatalf("blank action want ErrActionRequired got %v", err)
	}

	if err := svc.GrantRolePolicy("custom_team", "/admin/announcements", "GET"); err != nil {
		t.Fatalf("grant custom failed: %v", err)
	}
	if err := svc.SetAdminRoles(9, []string{"custom_team"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if err := svc.DeleteRole("custom_team"); err != nil {
		t.Fatalf("delete custom role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(9)
	if err != nil {
		t.Fatalf("get admin roles failed: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("deleted role must be unbound, got %v", roles)
	}
}
