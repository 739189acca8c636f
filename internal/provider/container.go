package provider

import (
	"time"

	"github.com/dujiao-next/announcements/internal/authz"
	"github.com/dujiao-next/announcements/internal/cache"
	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/metrics"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/queue"
	"github.com/dujiao-next/announcements/internal/repository"
	"github.com/dujiao-next/announcements/internal/service"
	"github.com/dujiao-next/announcements/internal/webhook"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container 依赖注入容器
type Container struct {
	Config          *config.Config
	QueueClient     *queue.Client
	MetricsRegistry *prometheus.Registry
	Metrics         *metrics.Collector
	Site            service.SiteInfo

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	AnnouncementRepo repository.AnnouncementRepository
	CategoryRepo     repository.CategoryRepository
	EngagementRepo   repository.EngagementRepository
	StatsRepo        repository.StatsRepository
	SettingRepo      repository.SettingRepository

	// Services
	AuthzService              *authz.Service
	AuthService               *service.AuthService
	UserAuthService           *service.UserAuthService
	SettingService            *service.SettingService
	UploadService             *service.UploadService
	ContentRenderer           *service.ContentRenderer
	AnnouncementService       *service.AnnouncementService
	PublicAnnouncementService *service.PublicAnnouncementService
	CategoryService           *service.CategoryService
	EngagementService         *service.EngagementService
	StatsService              *service.StatsService
	FeedService               *service.FeedService
	NotificationService       *service.NotificationService
	PublisherService          *service.PublisherService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Container{
		Config:          cfg,
		QueueClient:     queueClient,
		MetricsRegistry: registry,
		Metrics:         metrics.NewCollector(registry),
		Site: service.SiteInfo{
			Name:       cfg.Announcements.SiteName,
			URL:        cfg.Announcements.SiteURL,
			PublicPath: cfg.Announcements.PublicPath,
		},
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.AnnouncementRepo = repository.NewAnnouncementRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.EngagementRepo = repository.NewEngagementRepository(db)
	c.StatsRepo = repository.NewStatsRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.UploadService = service.NewUploadService(c.Config.Upload)
	c.ContentRenderer = service.NewContentRenderer()

	discord := webhook.NewDiscordClient(webhook.Options{
		Timeout:             time.Duration(c.Config.Webhook.TimeoutSeconds) * time.Second,
		MaxResponseBytes:    int64(c.Config.Webhook.MaxResponseBytes),
		AllowPrivateTargets: c.Config.Webhook.AllowPrivateTargets,
		BreakerFailures:     uint32(c.Config.Webhook.BreakerFailures),
		BreakerOpen:         time.Duration(c.Config.Webhook.BreakerOpenSeconds) * time.Second,
	})
	formatter := service.NewNotificationFormatter(c.Site, c.ContentRenderer, "")
	c.NotificationService = service.NewNotificationService(c.AnnouncementRepo, c.SettingService, formatter, discord, c.QueueClient, c.Metrics)

	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.AnnouncementService = service.NewAnnouncementService(c.AnnouncementRepo, c.CategoryRepo, c.ContentRenderer, c.NotificationService)
	c.EngagementService = service.NewEngagementService(c.AnnouncementRepo, c.EngagementRepo, c.SettingService, c.Metrics)
	c.PublicAnnouncementService = service.NewPublicAnnouncementService(c.AnnouncementRepo, c.CategoryRepo, c.EngagementService, c.ContentRenderer, c.SettingService, c.Site)
	c.StatsService = service.NewStatsService(c.AnnouncementRepo, c.StatsRepo, time.Duration(c.Config.Announcements.StatsCacheSeconds)*time.Second)
	c.FeedService = service.NewFeedService(c.AnnouncementRepo, c.ContentRenderer, c.SettingService, c.Site)
	c.PublisherService = service.NewPublisherService(c.AnnouncementRepo, c.SettingService, c.NotificationService,
		c.Metrics, time.Duration(c.Config.Announcements.PublisherLockSeconds)*time.Second)
}
