package admin

import (
	"net/url"
	"strings"

	"github.com/dujiao-next/announcements/internal/authz"
	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/models"

	"github.com/gin-gonic/gin"
)

var authzErrorRules = []handlershared.MappedError{
	{Target: authz.ErrBuiltinRole, Code: response.CodeBadRequest, Key: "error.role_builtin"},
	{Target: authz.ErrRoleRequired, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: authz.ErrReservedRole, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: authz.ErrActionRequired, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: authz.ErrAdminRequired, Code: response.CodeBadRequest, Key: "error.admin_id_invalid"},
}

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 当前管理员的角色与生效策略，后台前端据此隐藏无权限入口
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
		return
	}
	isSuper, _ := c.Get("admin_is_super")
	flag, _ := isSuper.(bool)
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": flag,
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 角色列表，附带是否为内置角色
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
		return
	}
	items := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		items = append(items, gin.H{"role": role, "builtin": h.AuthzService.IsBuiltinRole(role)})
	}
	response.Success(c, items)
}

// CreateAuthzRole 创建自定义角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
		return
	}
	auditAuthzChange(c, "admin_authz_role_created", "role", role)
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除自定义角色，内置角色拒绝
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
		return
	}
	auditAuthzChange(c, "admin_authz_role_deleted", "role", role)
	response.Success(c, nil)
}

// GetAuthzRolePolicies 角色直接持有的策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	h.changeRolePolicy(c, true)
}

// RevokeAuthzPolicy 撤销策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	h.changeRolePolicy(c, false)
}

func (h *Handler) changeRolePolicy(c *gin.Context, grant bool) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	apply, event := h.AuthzService.RevokeRolePolicy, "admin_authz_policy_revoked"
	if grant {
		apply, event = h.AuthzService.GrantRolePolicy, "admin_authz_policy_granted"
	}
	if err := apply(req.Role, req.Object, req.Action); err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
		return
	}
	auditAuthzChange(c, event, "role", req.Role, "object", authz.NormalizeObject(req.Object), "action", authz.NormalizeAction(req.Action))
	response.Success(c, nil)
}

// GetAuthzAdminRoles 管理员绑定的角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	target, ok := h.loadTargetAdmin(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(target.ID)
	if err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 覆盖管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	target, ok := h.loadTargetAdmin(c)
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(target.ID, req.Roles); err != nil {
		respondMapped(c, err, authzErrorRules, response.CodeBadRequest, "error.role_invalid")
		return
	}
	auditAuthzChange(c, "admin_authz_admin_roles_updated", "target_admin_id", target.ID, "roles", req.Roles)
	response.Success(c, nil)
}

func (h *Handler) loadTargetAdmin(c *gin.Context) (*models.Admin, bool) {
	adminID, ok := parseID(c)
	if !ok {
		return nil, false
	}
	target, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return nil, false
	}
	if target == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return nil, false
	}
	return target, true
}

func roleParam(c *gin.Context) (string, bool) {
	raw := c.Param("role")
	role, err := url.PathUnescape(raw)
	if err != nil {
		role = raw
	}
	role = strings.TrimSpace(role)
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
		return "", false
	}
	return role, true
}

// auditAuthzChange 权限变更统一记录操作人
func auditAuthzChange(c *gin.Context, event string, fields ...interface{}) {
	logger.Infow(event, append([]interface{}{"operator_admin_id", currentAdminID(c)}, fields...)...)
}
