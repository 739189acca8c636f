package service

import (
	"regexp"
	"strings"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
)

const notificationColorDefault = "#5865F2"

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NotificationSetting 发布通知（Discord）配置
type NotificationSetting struct {
	DiscordEnabled      bool   `json:"discord_enabled"`
	WebhookURL          string `json:"webhook_url"`
	Username            string `json:"username"`
	AvatarURL           string `json:"avatar_url"`
	Color               string `json:"color"`
	ContentTemplate     string `json:"content_template"`
	TitleTemplate       string `json:"title_template"`
	DescriptionTemplate string `json:"description_template"`
	FooterTemplate      string `json:"footer_template"`
	ShowAuthor          bool   `json:"show_author"`
	ShowCategory        bool   `json:"show_category"`
	ShowTimestamp       bool   `json:"show_timestamp"`
	ShowThumbnail       bool   `json:"show_thumbnail"`
	ShowImage           bool   `json:"show_image"`
	ShowStatsFields     bool   `json:"show_stats_fields"`
}

// NotificationDefaultSetting 默认通知配置
func NotificationDefaultSetting() NotificationSetting {
	return NotificationSetting{
		Color:               notificationColorDefault,
		TitleTemplate:       "{title}",
		DescriptionTemplate: "{excerpt}",
		FooterTemplate:      "{site_name}",
		ShowAuthor:          true,
		ShowCategory:        true,
		ShowTimestamp:       true,
		ShowImage:           true,
	}
}

// NormalizeNotificationSetting 归一化通知配置
func NormalizeNotificationSetting(setting NotificationSetting) NotificationSetting {
	setting.WebhookURL = strings.TrimSpace(setting.WebhookURL)
	if !hexColorPattern.MatchString(setting.Color) {
		setting.Color = notificationColorDefault
	}
	if setting.TitleTemplate == "" {
		setting.TitleTemplate = "{title}"
	}
	if setting.WebhookURL == "" {
		setting.DiscordEnabled = false
	}
	return setting
}

// NotificationSettingToMap 将通知配置转换为设置存储结构
func NotificationSettingToMap(setting NotificationSetting) map[string]interface{} {
	normalized := NormalizeNotificationSetting(setting)
	return map[string]interface{}{
		"discord_enabled":      normalized.DiscordEnabled,
		"webhook_url":          normalized.WebhookURL,
		"username":             normalized.Username,
		"avatar_url":           normalized.AvatarURL,
		"color":                normalized.Color,
		"content_template":     normalized.ContentTemplate,
		"title_template":       normalized.TitleTemplate,
		"description_template": normalized.DescriptionTemplate,
		"footer_template":      normalized.FooterTemplate,
		"show_author":          normalized.ShowAuthor,
		"show_category":        normalized.ShowCategory,
		"show_timestamp":       normalized.ShowTimestamp,
		"show_thumbnail":       normalized.ShowThumbnail,
		"show_image":           normalized.ShowImage,
		"show_stats_fields":    normalized.ShowStatsFields,
	}
}

func notificationSettingFromJSON(raw models.JSON, fallback NotificationSetting) NotificationSetting {
	result := fallback
	if raw == nil {
		return NormalizeNotificationSetting(result)
	}

	readSettingBool(raw, "discord_enabled", &result.DiscordEnabled)
	readSettingText(raw, "webhook_url", 500, &result.WebhookURL)
	readSettingText(raw, "username", 80, &result.Username)
	readSettingText(raw, "avatar_url", 500, &result.AvatarURL)
	readSettingText(raw, "color", 7, &result.Color)
	readSettingText(raw, "content_template", 2000, &result.ContentTemplate)
	readSettingText(raw, "title_template", 256, &result.TitleTemplate)
	readSettingText(raw, "description_template", 4096, &result.DescriptionTemplate)
	readSettingText(raw, "footer_template", 2048, &result.FooterTemplate)
	readSettingBool(raw, "show_author", &result.ShowAuthor)
	readSettingBool(raw, "show_category", &result.ShowCategory)
	readSettingBool(raw, "show_timestamp", &result.ShowTimestamp)
	readSettingBool(raw, "show_thumbnail", &result.ShowThumbnail)
	readSettingBool(raw, "show_image", &result.ShowImage)
	readSettingBool(raw, "show_stats_fields", &result.ShowStatsFields)

	return NormalizeNotificationSetting(result)
}

// GetNotificationSetting 获取通知设置（优先 settings，空时回退默认）
func (s *SettingService) GetNotificationSetting() (NotificationSetting, error) {
	fallback := NotificationDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	value, err := s.GetByKey(constants.SettingKeyNotificationConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return NormalizeNotificationSetting(fallback), nil
	}
	return notificationSettingFromJSON(value, fallback), nil
}
