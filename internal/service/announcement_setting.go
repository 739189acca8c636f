package service

import (
	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
)

// AnnouncementSetting 公告模块运行时配置
type AnnouncementSetting struct {
	Enabled                bool   `json:"enabled"`
	LikesEnabled           bool   `json:"likes_enabled"`
	LikesMode              string `json:"likes_mode"`
	ShowViews              bool   `json:"show_views"`
	ShowAuthor             bool   `json:"show_author"`
	ShowDate               bool   `json:"show_date"`
	ShowFeatured           bool   `json:"show_featured"`
	SchedulingEnabled      bool   `json:"scheduling_enabled"`
	PerPage                int    `json:"per_page"`
	DefaultOrder           string `json:"default_order"`
	SEOTitleTemplate       string `json:"seo_title_template"`
	DefaultMetaDescription string `json:"default_meta_description"`
	DefaultOGImage         string `json:"default_og_image"`
	ViewMode               string `json:"view_mode"`
	ViewWindow             int    `json:"view_window"`
	AnonymousName          string `json:"anonymous_name"`
	RSSEnabled             bool   `json:"rss_enabled"`
	RSSLimit               int    `json:"rss_limit"`
}

// AnnouncementDefaultSetting 默认公告配置
func AnnouncementDefaultSetting() AnnouncementSetting {
	return AnnouncementSetting{
		Enabled:           true,
		LikesEnabled:      true,
		LikesMode:         constants.LikesModeAll,
		ShowViews:         true,
		ShowAuthor:        true,
		ShowDate:          true,
		ShowFeatured:      true,
		SchedulingEnabled: true,
		PerPage:           constants.PublicPerPageDefault,
		DefaultOrder:      constants.OrderFeaturedPositionDate,
		SEOTitleTemplate:  constants.SEOTitleTemplateDefault,
		ViewMode:          constants.ViewModeUnique,
		ViewWindow:        constants.ViewWindowMinutesDefault,
		AnonymousName:     constants.AnonymousAuthorNameDefault,
		RSSEnabled:        true,
		RSSLimit:          constants.RSSLimitDefault,
	}
}

// NormalizeAnnouncementSetting 归一化公告配置
func NormalizeAnnouncementSetting(setting AnnouncementSetting) AnnouncementSetting {
	switch setting.LikesMode {
	case constants.LikesModeAll, constants.LikesModeAuthenticated, constants.LikesModeIP:
	default:
		setting.LikesMode = constants.LikesModeAll
	}
	switch setting.DefaultOrder {
	case constants.OrderFeaturedPositionDate, constants.OrderPositionDate, constants.OrderDate:
	default:
		setting.DefaultOrder = constants.OrderFeaturedPositionDate
	}
	switch setting.ViewMode {
	case constants.ViewModeTotal, constants.ViewModeUnique, constants.ViewModeAuthenticated:
	default:
		setting.ViewMode = constants.ViewModeUnique
	}
	if setting.PerPage < 1 || setting.PerPage > 100 {
		setting.PerPage = constants.PublicPerPageDefault
	}
	if setting.ViewWindow < 1 || setting.ViewWindow > 1440 {
		setting.ViewWindow = constants.ViewWindowMinutesDefault
	}
	if setting.RSSLimit < 1 || setting.RSSLimit > 100 {
		setting.RSSLimit = constants.RSSLimitDefault
	}
	if setting.SEOTitleTemplate == "" {
		setting.SEOTitleTemplate = constants.SEOTitleTemplateDefault
	}
	if setting.AnonymousName == "" {
		setting.AnonymousName = constants.AnonymousAuthorNameDefault
	}
	return setting
}

// AnnouncementSettingToMap 将公告配置转换为设置存储结构
func AnnouncementSettingToMap(setting AnnouncementSetting) map[string]interface{} {
	normalized := NormalizeAnnouncementSetting(setting)
	return map[string]interface{}{
		"enabled":                  normalized.Enabled,
		"likes_enabled":            normalized.LikesEnabled,
		"likes_mode":               normalized.LikesMode,
		"show_views":               normalized.ShowViews,
		"show_author":              normalized.ShowAuthor,
		"show_date":                normalized.ShowDate,
		"show_featured":            normalized.ShowFeatured,
		"scheduling_enabled":       normalized.SchedulingEnabled,
		"per_page":                 normalized.PerPage,
		"default_order":            normalized.DefaultOrder,
		"seo_title_template":       normalized.SEOTitleTemplate,
		"default_meta_description": normalized.DefaultMetaDescription,
		"default_og_image":         normalized.DefaultOGImage,
		"view_mode":                normalized.ViewMode,
		"view_window":              normalized.ViewWindow,
		"anonymous_name":           normalized.AnonymousName,
		"rss_enabled":              normalized.RSSEnabled,
		"rss_limit":                normalized.RSSLimit,
	}
}

func announcementSettingFromJSON(raw models.JSON, fallback AnnouncementSetting) AnnouncementSetting {
	result := fallback
	if raw == nil {
		return NormalizeAnnouncementSetting(result)
	}

	readSettingBool(raw, "enabled", &result.Enabled)
	readSettingBool(raw, "likes_enabled", &result.LikesEnabled)
	readSettingText(raw, "likes_mode", 32, &result.LikesMode)
	readSettingBool(raw, "show_views", &result.ShowViews)
	readSettingBool(raw, "show_author", &result.ShowAuthor)
	readSettingBool(raw, "show_date", &result.ShowDate)
	readSettingBool(raw, "show_featured", &result.ShowFeatured)
	readSettingBool(raw, "scheduling_enabled", &result.SchedulingEnabled)
	readSettingInt(raw, "per_page", &result.PerPage)
	readSettingText(raw, "default_order", 32, &result.DefaultOrder)
	readSettingText(raw, "seo_title_template", 255, &result.SEOTitleTemplate)
	readSettingText(raw, "default_meta_description", 255, &result.DefaultMetaDescription)
	readSettingText(raw, "default_og_image", 255, &result.DefaultOGImage)
	readSettingText(raw, "view_mode", 32, &result.ViewMode)
	readSettingInt(raw, "view_window", &result.ViewWindow)
	readSettingText(raw, "anonymous_name", 50, &result.AnonymousName)
	readSettingBool(raw, "rss_enabled", &result.RSSEnabled)
	readSettingInt(raw, "rss_limit", &result.RSSLimit)

	return NormalizeAnnouncementSetting(result)
}

// GetAnnouncementSetting 获取公告设置（优先 settings，空时回退默认）
func (s *SettingService) GetAnnouncementSetting() (AnnouncementSetting, error) {
	fallback := AnnouncementDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	value, err := s.GetByKey(constants.SettingKeyAnnouncementConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return announcementSettingFromJSON(value, fallback), nil
}
