package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: models.NowUTC})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	return db
}

func createTestAnnouncement(t *testing.T, db *gorm.DB, slug, status string, publishedAt *time.Time) *models.Announcement {
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

func timePtr(value time.Time) *time.Time {
	return &value
}
