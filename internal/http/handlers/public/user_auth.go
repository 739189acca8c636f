package public

import (
	"errors"
	"time"

	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/i18n"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Locale:      i18n.ResolveLocale(c),
	})
	if err != nil {
		handlershared.RespondPasswordError(c, err, "error.register_failed")
		return
	}
	response.Success(c, gin.H{
		"user":       userProfileResponse(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeUnauthorized, "error.user_login_invalid", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.login_failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"user":       userProfileResponse(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// GetCurrentUser 获取当前用户信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, userProfileResponse(user))
}

func userProfileResponse(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"locale":        user.Locale,
		"last_login_at": user.LastLoginAt,
	}
}
