package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/dujiao-next/announcements/internal/app"
	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiDim     = "\033[2m"
	ansiCyan    = "\033[36m"
	ansiMagenta = "\033[95m"
)

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all | api | worker")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()

	printBanner(os.Stdout, cfg, *mode)
	if err := run(cfg, *mode); err != nil {
		logger.StdLogger().Fatalf("announcements: %v", err)
	}
}

func run(cfg *config.Config, mode string) error {
	release := cfg.Server.Mode == "release"
	if err := checkSecrets(cfg, release); err != nil {
		return err
	}
	if err := models.Connect(cfg.Database); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	// worker 不提供后台登录，无需默认管理员
	if mode != app.ModeWorker {
		ensureDefaultAdmin(release)
	}
	if release {
		gin.SetMode(gin.ReleaseMode)
	}
	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

// checkSecrets release 模式下弱密钥直接拒绝启动，其余模式仅告警
func checkSecrets(cfg *config.Config, release bool) error {
	for name, secret := range map[string]string{"jwt": cfg.JWT.SecretKey, "user_jwt": cfg.UserJWT.SecretKey} {
		if !isWeakSecret(secret) {
			continue
		}
		if release {
			return fmt.Errorf("%s secret is weak or still the default value", name)
		}
		logger.Warnw("weak_secret", "name", name)
	}
	return nil
}

func ensureDefaultAdmin(release bool) {
	username := os.Getenv("ANN_DEFAULT_ADMIN_USERNAME")
	password := os.Getenv("ANN_DEFAULT_ADMIN_PASSWORD")
	if release && password == "" {
		logger.Warnw("default_admin_skipped", "reason", "ANN_DEFAULT_ADMIN_PASSWORD not set")
		return
	}
	if err := models.InitDefaultAdmin(username, password); err != nil {
		logger.Warnw("default_admin_init_failed", "error", err)
	}
}

func printBanner(w io.Writer, cfg *config.Config, mode string) {
	site := strings.TrimSpace(cfg.Announcements.SiteName)
	if site == "" {
		site = "Announcements"
	}
	fmt.Fprintln(w, ansiMagenta+ansiBold+"📣 "+site+" · announcements service"+ansiReset)
	fmt.Fprintf(w, "%smode=%s  listen=%s:%s  public=/%s%s\n", ansiCyan, mode, cfg.Server.Host, cfg.Server.Port, cfg.Announcements.PublicPath, ansiReset)
	fmt.Fprintln(w, ansiDim+"rss: /api/v1/public/announcements/feed.xml"+ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
