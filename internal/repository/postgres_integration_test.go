//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{NowFunc: models.NowUTC})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.AnnouncementLike{},
		&models.AnnouncementView{},
		&models.Announcement{},
		&models.AnnouncementCategory{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresAnnouncementSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewAnnouncementRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	item := &models.Announcement{
		Title:       "Release Notes",
		Slug:        "pg-release-notes",
		Status:      constants.AnnouncementStatusPublished,
		PublishedAt: &now,
		EditorMode:  constants.EditorModeMarkdown,
	}
	if err := repo.Create(item); err != nil {
		t.Fatalf("create announcement failed: %v", err)
	}

	rows, total, err := repo.List(AnnouncementListFilter{Search: "release", OnlyPublished: true, Now: now.Add(time.Minute)})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("ILIKE search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresStatsQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewStatsRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	item := &models.Announcement{Title: "Stats", Slug: "pg-stats", Status: constants.AnnouncementStatusPublished, PublishedAt: &now}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create announcement failed: %v", err)
	}
	views := []models.AnnouncementView{
		{AnnouncementID: item.ID, IPHash: "a", Referrer: "https://ref.example", ViewedAt: now},
		{AnnouncementID: item.ID, IPHash: "b", ViewedAt: now},
	}
	if err := db.Create(&views).Error; err != nil {
		t.Fatalf("create views failed: %v", err)
	}

	start := now.Add(-24 * time.Hour)
	end := now.Add(24 * time.Hour)
	rows, err := repo.CountViewsByDay(item.ID, start, end)
	if err != nil {
		t.Fatalf("views by day failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Total != 2 || len(rows[0].Day) != len("2006-01-02") {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	unique, err := repo.CountUniqueViewers(item.ID, start, end)
	if err != nil || unique != 2 {
		t.Fatalf("unique viewers want 2 got %d err=%v", unique, err)
	}

	referrers, err := repo.TopReferrers(item.ID, start, end, 10)
	if err != nil || len(referrers) != 1 {
		t.Fatalf("top referrers want 1 got %+v err=%v", referrers, err)
	}
}
