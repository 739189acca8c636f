package config

import (
	"fmt"
	"strings"

	"github.com/dujiao-next/announcements/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	UserJWT       JWTConfig           `mapstructure:"user_jwt"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Queue         QueueConfig         `mapstructure:"queue"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Security      SecurityConfig      `mapstructure:"security"`
	Announcements AnnouncementsConfig `mapstructure:"announcements"`
	Webhook       WebhookConfig       `mapstructure:"webhook"`
	Upload        UploadConfig        `mapstructure:"upload"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Level:      c.Level,
		Console:    c.Console,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey             string `mapstructure:"secret"`
	ExpireHours           int    `mapstructure:"expire_hours"`
	RememberMeExpireHours int    `mapstructure:"remember_me_expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	PasswordPolicy PasswordPolicyConfig `mapstructure:"password_policy"`
	LoginRateLimit RateLimitConfig      `mapstructure:"login_rate_limit"`
	LikeRateLimit  RateLimitConfig      `mapstructure:"like_rate_limit"`
}

// PasswordPolicyConfig 密码策略配置
type PasswordPolicyConfig struct {
	MinLength      int  `mapstructure:"min_length"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireNumber  bool `mapstructure:"require_number"`
	RequireSpecial bool `mapstructure:"require_special"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// AnnouncementsConfig 公告模块运行配置
type AnnouncementsConfig struct {
	SiteName                string `mapstructure:"site_name"`
	SiteURL                 string `mapstructure:"site_url"`
	PublicPath              string `mapstructure:"public_path"`
	PublisherIntervalSecond int    `mapstructure:"publisher_interval_seconds"`
	PublisherLockSeconds    int    `mapstructure:"publisher_lock_seconds"`
	StatsCacheSeconds       int    `mapstructure:"stats_cache_seconds"`
	VisitorCookieSecure     bool   `mapstructure:"visitor_cookie_secure"`
}

// WebhookConfig 外发 Webhook 配置
type WebhookConfig struct {
	TimeoutSeconds      int  `mapstructure:"timeout_seconds"`
	MaxResponseBytes    int  `mapstructure:"max_response_bytes"`
	AllowPrivateTargets bool `mapstructure:"allow_private_targets"`
	BreakerFailures     int  `mapstructure:"breaker_failures"`
	BreakerOpenSeconds  int  `mapstructure:"breaker_open_seconds"`
}

// UploadConfig 封面图上传配置
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	MaxSize           int64    `mapstructure:"max_size"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxWidth          int      `mapstructure:"max_width"`
	MaxHeight         int      `mapstructure:"max_height"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("./etc")
	setDefaults(v)

	// 环境变量支持（server.port -> SERVER_PORT）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	cfg, err := decode(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Announcements.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.Announcements.SiteURL), "/")
	cfg.Announcements.PublicPath = strings.Trim(strings.TrimSpace(cfg.Announcements.PublicPath), "/")
	if cfg.Announcements.PublicPath == "" {
		cfg.Announcements.PublicPath = "announcements"
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "announcements.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.level", "")
	v.SetDefault("log.console", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/announcements.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("user_jwt.secret", "user-change-me-in-production")
	v.SetDefault("user_jwt.expire_hours", 168)
	v.SetDefault("user_jwt.remember_me_expire_hours", 720)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "ann")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{"default": 10})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.password_policy.min_length", 8)
	v.SetDefault("security.password_policy.require_upper", false)
	v.SetDefault("security.password_policy.require_lower", false)
	v.SetDefault("security.password_policy.require_number", false)
	v.SetDefault("security.password_policy.require_special", false)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.like_rate_limit.window_seconds", 60)
	v.SetDefault("security.like_rate_limit.max_attempts", 30)
	v.SetDefault("announcements.site_name", "Dujiao-Next")
	v.SetDefault("announcements.site_url", "http://localhost:8080")
	v.SetDefault("announcements.public_path", "announcements")
	v.SetDefault("announcements.publisher_interval_seconds", 60)
	v.SetDefault("announcements.publisher_lock_seconds", 55)
	v.SetDefault("announcements.stats_cache_seconds", 45)
	v.SetDefault("announcements.visitor_cookie_secure", false)
	v.SetDefault("webhook.timeout_seconds", 10)
	v.SetDefault("webhook.max_response_bytes", 65536)
	v.SetDefault("webhook.allow_private_targets", false)
	v.SetDefault("webhook.breaker_failures", 5)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", 5242880)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})
	v.SetDefault("upload.allowed_extensions", []string{".jpg", ".jpeg", ".png", ".gif", ".webp"})
	v.SetDefault("upload.max_width", 4096)
	v.SetDefault("upload.max_height", 4096)
	v.SetDefault("webhook.breaker_open_seconds", 60)
}
