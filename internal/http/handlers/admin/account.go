package admin

import (
	"errors"
	"time"

	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

var accountErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.admin_login_invalid"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
}

// adminView 后台账号对外字段，署名已解析
type adminView struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	AuthorName  string     `json:"author_name"`
	IsSuper     bool       `json:"is_super"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Roles       []string   `json:"roles,omitempty"`
}

func newAdminView(admin *models.Admin, roles []string) adminView {
	return adminView{
		ID:          admin.ID,
		Username:    admin.Username,
		DisplayName: admin.DisplayName,
		AuthorName:  admin.AuthorName(),
		IsSuper:     admin.IsSuper,
		LastLoginAt: admin.LastLoginAt,
		CreatedAt:   admin.CreatedAt,
		Roles:       roles,
	}
}

type adminLoginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 账号密码登录，签发后台 Token
func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondMapped(c, err, accountErrorRules, response.CodeInternal, "error.login_failed")
		return
	}
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
		"user":       newAdminView(admin, nil),
	})
}

func (h *Handler) GetAdminProfile(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}
	response.Success(c, newAdminView(admin, nil))
}

type adminProfilePayload struct {
	DisplayName string `json:"display_name" binding:"max=100"`
}

// UpdateAdminProfile 修改作者署名，空串表示回退到账号名
func (h *Handler) UpdateAdminProfile(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}
	var req adminProfilePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AuthService.UpdateProfile(id, req.DisplayName)
	if err != nil {
		respondMapped(c, err, accountErrorRules, response.CodeInternal, "error.profile_update_failed")
		return
	}
	response.Success(c, newAdminView(admin, nil))
}

type adminPasswordPayload struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 改密后旧 Token 全部失效
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}
	var req adminPasswordPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	err := h.AuthService.ChangePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
	default:
		handlershared.RespondPasswordError(c, err, "error.password_change_failed")
	}
}

type adminCreatePayload struct {
	Username    string   `json:"username" binding:"required"`
	DisplayName string   `json:"display_name"`
	Password    string   `json:"password" binding:"required"`
	IsSuper     bool     `json:"is_super"`
	Roles       []string `json:"roles"`
}

// ListAuthzAdmins 作者列表，附带各自角色
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	items := make([]adminView, 0, len(admins))
	for i := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admins[i].ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_failed", err)
			return
		}
		items = append(items, newAdminView(&admins[i], roles))
	}
	response.Success(c, items)
}

// CreateAuthzAdmin 新建作者账号并绑定角色
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var req adminCreatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AuthService.CreateAdmin(service.CreateAdminInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsSuper:     req.IsSuper,
	})
	if err != nil {
		handlershared.RespondPasswordError(c, err, "error.admin_create_failed")
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondMapped(c, err, authzErrorRules, response.CodeBadRequest, "error.role_invalid")
			return
		}
	}
	auditAuthzChange(c, "admin_authz_admin_created", "target_admin_id", admin.ID, "username", admin.Username, "roles", req.Roles)
	response.Success(c, newAdminView(admin, req.Roles))
}
