package admin

import (
	"errors"

	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/i18n"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAnnouncementSettings 获取公告模块设置
func (h *Handler) GetAnnouncementSettings(c *gin.Context) {
	bundle, err := h.SettingService.GetAnnouncementSettingsBundle()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, bundle)
}

// UpdateAnnouncementSettings 部分更新公告模块设置
func (h *Handler) UpdateAnnouncementSettings(c *gin.Context) {
	var req service.AnnouncementSettingsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	bundle, err := h.SettingService.UpdateAnnouncementSettingsBundle(req)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}
	logger.Infow("admin_announcement_settings_updated",
		"operator_admin_id", currentAdminID(c),
		"announcements_patched", req.Announcements != nil,
		"notification_patched", req.Notification != nil,
	)
	response.Success(c, bundle)
}

// TestDiscordNotification 发送 Discord 测试通知
func (h *Handler) TestDiscordNotification(c *gin.Context) {
	locale := i18n.ResolveLocale(c)
	result, err := h.NotificationService.SendTest(c.Request.Context(), locale)
	if err != nil {
		if errors.Is(err, service.ErrWebhookNotConfigured) {
			respondError(c, response.CodeBadRequest, "error.webhook_not_configured", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.webhook_test_failed", err)
		return
	}
	message := result.Message
	if result.Success {
		message = i18n.T(locale, "announcement.notification.test_msg")
	}
	response.Success(c, gin.H{
		"success":     result.Success,
		"status_code": result.StatusCode,
		"message":     message,
	})
}
