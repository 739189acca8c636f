package router

import (
	"net/http"
	"strings"

	"github.com/dujiao-next/announcements/internal/cache"
	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/constants"
	adminhandlers "github.com/dujiao-next/announcements/internal/http/handlers/admin"
	publichandlers "github.com/dujiao-next/announcements/internal/http/handlers/public"
	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/metrics"
	"github.com/dujiao-next/announcements/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// limits 各限流点的规则，Redis 不可用时退回进程内令牌桶
type limits struct {
	client     *redis.Client
	login      RateLimitRule
	adminLogin RateLimitRule
	like       RateLimitRule
}

func newLimits(cfg *config.Config) limits {
	prefix := strings.TrimSpace(cfg.Redis.Prefix)
	if prefix == "" {
		prefix = constants.RedisPrefixDefault
	}
	rule := func(name string, rc config.RateLimitConfig, messageKey string) RateLimitRule {
		return RateLimitRule{
			Prefix:        prefix + ":rate:" + name,
			WindowSeconds: rc.WindowSeconds,
			MaxRequests:   rc.MaxAttempts,
			MessageKey:    messageKey,
		}
	}
	return limits{
		client:     cache.Client(),
		login:      rule("login", cfg.Security.LoginRateLimit, "error.login_too_many"),
		adminLogin: rule("admin_login", cfg.Security.LoginRateLimit, "error.login_too_many"),
		like:       rule("like", cfg.Security.LikeRateLimit, "error.rate_limited"),
	}
}

// SetupRouter 组装 gin 引擎：公开接口、读者账号、后台、指标与健康检查
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.Z()
	if !logger.Initialized() {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	handlershared.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(log), CORSMiddleware(cfg.CORS))

	uploadDir := strings.TrimSpace(cfg.Upload.Dir)
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	r.Static("/uploads", uploadDir)

	rl := newLimits(cfg)
	api := r.Group("/api/v1")
	registerPublicRoutes(api, cfg, c, publichandlers.New(c), rl)
	registerAdminRoutes(r, api, cfg, c, adminhandlers.New(c), rl)

	if c.MetricsRegistry != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(c.MetricsRegistry)))
	}
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func registerPublicRoutes(api *gin.RouterGroup, cfg *config.Config, c *provider.Container, h *publichandlers.Handler, rl limits) {
	// 可选读者身份，用于点赞归属与浏览去重
	public := api.Group("/public", OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	public.GET("/announcements", h.ListAnnouncements)
	public.GET("/announcements/search", h.SearchAnnouncements)
	public.GET("/announcements/latest", h.LatestAnnouncements)
	public.GET("/announcements/categories", h.ListCategories)
	public.GET("/announcements/feed.xml", h.RSSFeed)
	public.GET("/announcements/:slug", h.ShowAnnouncement)
	public.POST("/announcements/:slug/like", RateLimit(rl.client, rl.like, KeyByIP), h.ToggleLike)

	auth := api.Group("/auth")
	auth.POST("/register", RateLimit(rl.client, rl.login, KeyByIP), h.UserRegister)
	auth.POST("/login", RateLimit(rl.client, rl.login, KeyByIPAndJSONField("email")), h.UserLogin)

	api.GET("/me", UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), h.GetCurrentUser)
}

func registerAdminRoutes(engine *gin.Engine, api *gin.RouterGroup, cfg *config.Config, c *provider.Container, h *adminhandlers.Handler, rl limits) {
	admin := api.Group("/admin")
	admin.POST("/login", RateLimit(rl.client, rl.adminLogin, KeyByIP), h.AdminLogin)

	g := admin.Group("", JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))

	g.GET("/profile", h.GetAdminProfile)
	g.PUT("/profile", h.UpdateAdminProfile)
	g.PUT("/password", h.UpdateAdminPassword)

	g.GET("/announcements", h.ListAnnouncements)
	g.POST("/announcements", h.CreateAnnouncement)
	g.PUT("/announcements/positions", h.ReorderAnnouncements)
	g.GET("/announcements/stats", h.GetGlobalStats)
	g.GET("/announcements/:id", h.GetAnnouncement)
	g.PUT("/announcements/:id", h.UpdateAnnouncement)
	g.DELETE("/announcements/:id", h.DeleteAnnouncement)
	g.POST("/announcements/:id/duplicate", h.DuplicateAnnouncement)
	g.POST("/announcements/:id/toggle-publish", h.TogglePublishAnnouncement)
	g.POST("/announcements/:id/publish", h.PublishAnnouncement)
	g.POST("/announcements/:id/unpublish", h.UnpublishAnnouncement)
	g.POST("/announcements/:id/archive", h.ArchiveAnnouncement)
	g.DELETE("/announcements/:id/cover", h.RemoveAnnouncementCover)
	g.GET("/announcements/:id/preview", h.PreviewAnnouncement)
	g.GET("/announcements/:id/stats", h.GetAnnouncementStats)
	g.GET("/announcements/:id/stats/export", h.ExportAnnouncementStats)

	g.GET("/announcement-categories", h.ListCategories)
	g.POST("/announcement-categories", h.CreateCategory)
	g.PUT("/announcement-categories/positions", h.ReorderCategories)
	g.GET("/announcement-categories/:id", h.GetCategory)
	g.PUT("/announcement-categories/:id", h.UpdateCategory)
	g.DELETE("/announcement-categories/:id", h.DeleteCategory)

	g.GET("/announcement-settings", h.GetAnnouncementSettings)
	g.PUT("/announcement-settings", h.UpdateAnnouncementSettings)
	g.POST("/announcement-settings/test-discord", h.TestDiscordNotification)

	g.POST("/upload", h.UploadImage)

	g.GET("/authz/me", h.GetAuthzMe)
	g.GET("/authz/roles", h.ListAuthzRoles)
	g.POST("/authz/roles", h.CreateAuthzRole)
	g.DELETE("/authz/roles/:role", h.DeleteAuthzRole)
	g.GET("/authz/roles/:role/policies", h.GetAuthzRolePolicies)
	g.POST("/authz/policies", h.GrantAuthzPolicy)
	g.DELETE("/authz/policies", h.RevokeAuthzPolicy)
	g.GET("/authz/admins", h.ListAuthzAdmins)
	g.POST("/authz/admins", h.CreateAuthzAdmin)
	g.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
	g.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)
	// 目录在请求时生成，此时全部路由已注册
	g.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
		response.Success(ctx, permissionCatalog(engine.Routes()))
	})
}
