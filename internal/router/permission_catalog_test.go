package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPermissionCatalogOnlyListsAdminRoutes(t *testing.T) {
	routes := gin.RoutesInfo{
		{Method: http.MethodPost, Path: "/api/v1/admin/login"},
		{Method: http.MethodGet, Path: "/api/v1/public/announcements"},
		{Method: http.MethodPut, Path: "/api/v1/admin/announcements/:id"},
		{Method: http.MethodGet, Path: "/api/v1/admin/announcements/:id"},
		{Method: http.MethodGet, Path: "/api/v1/admin/authz/roles"},
		{Method: http.MethodOptions, Path: "/api/v1/admin/authz/roles"},
		{Method: http.MethodGet, Path: "/api/v1/admin/announcement-categories"},
	}
	got := permissionCatalog(routes)
	want := []string{
		"GET:/admin/announcement-categories",
		"GET:/admin/announcements/:id",
		"PUT:/admin/announcements/:id",
		"GET:/admin/authz/roles",
	}
	if len(got) != len(want) {
		t.Fatalf("entries want %d got %d: %+v", len(want), len(got), got)
	}
	for i, entry := range got {
		if entry.Permission != want[i] {
			t.Fatalf("entry %d want %s got %s", i, want[i], entry.Permission)
		}
	}
	if got[0].Module != "announcement-categories" || got[3].Module != "authz" {
		t.Fatalf("unexpected modules %+v", got)
	}
}

func TestPermissionModule(t *testing.T) {
	for object, want := range map[string]string{
		"/admin/announcements/:id/stats": "announcements",
		"admin":                          "admin",
		"":                               "system",
		"metrics":                        "metrics",
	} {
		if got := permissionModule(object); got != want {
			t.Fatalf("permissionModule(%q) want %s got %s", object, want, got)
		}
	}
}
