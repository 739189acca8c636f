package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:service_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: models.NowUTC})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// testClock 可推进的测试时钟
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now.UTC()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func seedAnnouncement(t *testing.T, db *gorm.DB, slug, status string, publishedAt *time.Time) *models.Announcement {
	t.Helper()
	item := &models.Announcement{
		Title:       strings.ToUpper(slug[:1]) + slug[1:],
		Slug:        slug,
		Status:      status,
		PublishedAt: publishedAt,
		EditorMode:  constants.EditorModeMarkdown,
		Robots:      constants.AnnouncementRobotsDefault,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create announcement %s failed: %v", slug, err)
	}
	return item
}

func reloadAnnouncement(t *testing.T, db *gorm.DB, id uint) *models.Announcement {
	t.Helper()
	var item models.Announcement
	if err := db.Unscoped().First(&item, id).Error; err != nil {
		t.Fatalf("reload announcement %d failed: %v", id, err)
	}
	return &item
}

func staticAnnouncementSettings(mutate func(*AnnouncementSetting)) StaticSettings {
	setting := AnnouncementDefaultSetting()
	if mutate != nil {
		mutate(&setting)
	}
	return StaticSettings{Announcement: setting, Notification: NotificationDefaultSetting()}
}
