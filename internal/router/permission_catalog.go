package router

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/dujiao-next/announcements/internal/authz"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

// permissionEntry 后台角色编辑页可勾选的一项
type permissionEntry struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// permissionCatalog 由已注册的后台路由推导 casbin 可授权的 (object, action)
func permissionCatalog(routes gin.RoutesInfo) []permissionEntry {
	seen := make(map[string]struct{}, len(routes))
	entries := make([]permissionEntry, 0, len(routes))
	for _, route := range routes {
		method := strings.ToUpper(route.Method)
		switch {
		case method == http.MethodOptions, method == http.MethodHead:
			continue
		case !strings.HasPrefix(route.Path, adminRoutePrefix), route.Path == adminRoutePrefix+"login":
			continue
		}
		object := authz.NormalizeObject(route.Path)
		permission := method + ":" + object
		if _, dup := seen[permission]; dup {
			continue
		}
		seen[permission] = struct{}{}
		entries = append(entries, permissionEntry{
			Module:     permissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}
	slices.SortFunc(entries, func(a, b permissionEntry) int {
		return cmp.Or(
			cmp.Compare(a.Module, b.Module),
			cmp.Compare(a.Object, b.Object),
			cmp.Compare(a.Method, b.Method),
		)
	})
	return entries
}

// permissionModule admin/announcements/:id → announcements
func permissionModule(object string) string {
	segments := strings.Split(strings.Trim(object, "/"), "/")
	if len(segments) > 1 && segments[0] == "admin" {
		return segments[1]
	}
	if segments[0] == "" {
		return "system"
	}
	return segments[0]
}
