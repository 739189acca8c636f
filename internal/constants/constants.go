package constants

// 公告状态常量
const (
	AnnouncementStatusDraft     = "draft"
	AnnouncementStatusPublished = "published"
	AnnouncementStatusScheduled = "scheduled"
	AnnouncementStatusArchived  = "archived"
)

// 编辑器模式常量
const (
	EditorModeMarkdown = "markdown"
	EditorModeHTML     = "html"
)

// 点赞资格模式常量
const (
	LikesModeAll           = "all"
	LikesModeAuthenticated = "authenticated"
	LikesModeIP            = "ip"
)

// 浏览计数模式常量
const (
	ViewModeTotal         = "total"
	ViewModeUnique        = "unique"
	ViewModeAuthenticated = "authenticated"
)

// 列表排序常量
const (
	OrderFeaturedPositionDate = "featured_position_date"
	OrderPositionDate         = "position_date"
	OrderDate                 = "date"
)

// 统计周期常量
const (
	StatsPeriod7d  = "7d"
	StatsPeriod30d = "30d"
	StatsPeriod90d = "90d"
	StatsPeriod1y  = "1y"
)

// 公告默认值常量
const (
	AnnouncementRobotsDefault   = "index,follow"
	CategoryColorDefault        = "#3b82f6"
	AnonymousAuthorNameDefault  = "Staff"
	SEOTitleTemplateDefault     = "{title} - {site_name}"
	DuplicateTitleSuffix        = " (Copy)"
	ReferrerMaxLength           = 255
	ViewWindowMinutesDefault    = 30
	PublicPerPageDefault        = 12
	PublicSearchLimit           = 10
	RelatedAnnouncementsLimit   = 3
	RSSLimitDefault             = 20
	TopReferrersLimit           = 10
	GlobalLeaderboardLimit      = 5
	SEODescriptionMaxLength     = 160
	RSSDescriptionMaxLength     = 300
	NotificationExcerptFallback = 200
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 访客标识 Cookie
const (
	VisitorCookieName   = "announcements_visitor_id"
	VisitorCookieMaxAge = 365 * 24 * 3600
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskAnnouncementNotify   = "announcement:notify"
	PublisherLockKey         = "announcements:publisher:lock"
	GlobalStatsCacheKeyFmt   = "announcements:stats:global:%s"
	RedisPrefixDefault       = "ann"
	NotificationEventPublish = "published"
	NotificationEventTest    = "test"
)

// 设置键常量
const (
	SettingKeyAnnouncementConfig = "announcements_config"
	SettingKeyNotificationConfig = "announcements_notification_config"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// SupportedLocales 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}
