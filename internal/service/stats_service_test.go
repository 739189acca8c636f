package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"

	"gorm.io/gorm"
)

func setupStatsServiceTest(t *testing.T) (*StatsService, *gorm.DB, time.Time) {
	t.Helper()
	db := setupServiceTestDB(t)
	now := time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)
	svc := NewStatsService(repository.NewAnnouncementRepository(db), repository.NewStatsRepository(db), time.Minute)
	svc.now = func() time.Time { return now }
	return svc, db, now
}

func insertView(t *testing.T, db *gorm.DB, announcementID uint, ip, referrer string, at time.Time) {
	t.Helper()
	view := models.AnnouncementView{
		AnnouncementID: announcementID,
		IPHash:         HashValue(ip),
		Referrer:       referrer,
		ViewedAt:       at,
	}
	if err := db.Create(&view).Error; err != nil {
		t.Fatalf("insert view failed: %v", err)
	}
}

func TestResolveStatsWindow(t *testing.T) {
	now := time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)
	cases := map[string]int{
		"":    31,
		"7d":  8,
		"30d": 31,
		"90d": 91,
		"1y":  366,
	}
	for period, wantDays := range cases {
		window, err := resolveStatsWindow(period, now)
		if err != nil {
			t.Fatalf("period %q failed: %v", period, err)
		}
		if got := len(buildDaySeries(nil, window)); got != wantDays {
			t.Fatalf("period %q want %d days got %d", period, wantDays, got)
		}
		if !window.endAt.Equal(time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("window must end at end of today, got %v", window.endAt)
		}
	}
	if _, err := resolveStatsWindow("2w", now); !errors.Is(err, ErrPeriodInvalid) {
		t.Fatalf("want ErrPeriodInvalid got %v", err)
	}
}

func TestGetStatsDailyDeltaSeries(t *testing.T) {
	svc, db, now := setupStatsServiceTest(t)
	item := seedAnnouncement(t, db, "stats", constants.AnnouncementStatusPublished, nil)
	if err := db.Model(item).UpdateColumns(map[string]interface{}{"views_count": 42, "likes_count": 3}).Error; err != nil {
		t.Fatalf("seed counters failed: %v", err)
	}
	today := time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC)
	insertView(t, db, item.ID, "10.0.0.1", "https://a.example", today)
	insertView(t, db, item.ID, "10.0.0.1", "https://a.example", today.Add(time.Hour))
	insertView(t, db, item.ID, "10.0.0.2", "https://b.example", today.AddDate(0, 0, -2))
	insertView(t, db, item.ID, "10.0.0.3", "", today.AddDate(0, 0, -20))
	like := models.AnnouncementLike{AnnouncementID: item.ID, IPHash: HashValue("10.0.0.1"), CreatedAt: today}
	if err := db.Create(&like).Error; err != nil {
		t.Fatalf("insert like failed: %v", err)
	}

	stats, err := svc.GetStats(item.ID, "7d")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.TotalViews != 42 || stats.TotalLikes != 3 {
		t.Fatalf("totals must come from counters, got views=%d likes=%d", stats.TotalViews, stats.TotalLikes)
	}
	if len(stats.ViewsByDay) != 8 || len(stats.LikesByDay) != 8 {
		t.Fatalf("want 8 daily points got %d/%d", len(stats.ViewsByDay), len(stats.LikesByDay))
	}
	last := stats.ViewsByDay[7]
	if last.Date != now.Format("2006-01-02") || last.Count != 2 {
		t.Fatalf("today point want 2 views got %+v", last)
	}
	if stats.ViewsByDay[5].Count != 1 || stats.ViewsByDay[6].Count != 0 {
		t.Fatalf("series must be daily delta with zero fill: %+v", stats.ViewsByDay)
	}
	if stats.LikesByDay[7].Count != 1 {
		t.Fatalf("today likes want 1 got %+v", stats.LikesByDay[7])
	}
	if stats.UniqueViews != 2 {
		t.Fatalf("unique views want 2 got %d", stats.UniqueViews)
	}
	if len(stats.TopReferrers) != 2 || stats.TopReferrers[0].Referrer != "https://a.example" || stats.TopReferrers[0].Count != 2 {
		t.Fatalf("unexpected referrers: %+v", stats.TopReferrers)
	}

	month, err := svc.GetStats(item.ID, "30d")
	if err != nil {
		t.Fatalf("get 30d stats failed: %v", err)
	}
	if month.TotalViews != stats.TotalViews || month.UniqueViews != 3 {
		t.Fatalf("30d stats mismatch: %+v", month)
	}
}

func TestGetStatsNotFound(t *testing.T) {
	svc, _, _ := setupStatsServiceTest(t)
	if _, err := svc.GetStats(999, "7d"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestGetGlobalStats(t *testing.T) {
	svc, db, now := setupStatsServiceTest(t)
	a := seedAnnouncement(t, db, "alpha", constants.AnnouncementStatusPublished, nil)
	b := seedAnnouncement(t, db, "beta", constants.AnnouncementStatusDraft, nil)
	seedAnnouncement(t, db, "gamma", constants.AnnouncementStatusScheduled, nil)
	db.Model(a).UpdateColumns(map[string]interface{}{"views_count": 500, "likes_count": 2})
	db.Model(b).UpdateColumns(map[string]interface{}{"views_count": 10, "likes_count": 7})
	insertView(t, db, a.ID, "10.0.0.1", "", now.Add(-time.Hour))
	insertView(t, db, b.ID, "10.0.0.2", "", now.AddDate(0, 0, -3))
	insertView(t, db, b.ID, "10.0.0.2", "", now.AddDate(0, 0, -60))

	stats, err := svc.GetGlobalStats(context.Background(), GlobalStatsInput{Period: "30d", ForceRefresh: true})
	if err != nil {
		t.Fatalf("global stats failed: %v", err)
	}
	if stats.TotalItems != 3 || stats.PublishedItems != 1 || stats.ScheduledItems != 1 {
		t.Fatalf("unexpected item counts: %+v", stats)
	}
	if stats.ViewsInPeriod != 2 {
		t.Fatalf("views in period want 2 got %d", stats.ViewsInPeriod)
	}
	if stats.TotalLikes != 9 {
		t.Fatalf("total likes want 9 got %d", stats.TotalLikes)
	}
	if len(stats.TopByViews) == 0 || stats.TopByViews[0].Slug != "alpha" {
		t.Fatalf("top by views want alpha first got %+v", stats.TopByViews)
	}
	if len(stats.TopByLikes) == 0 || stats.TopByLikes[0].Slug != "beta" {
		t.Fatalf("top by likes want beta first got %+v", stats.TopByLikes)
	}
}

func TestBuildStatsCSV(t *testing.T) {
	stats := &AnnouncementStats{
		ViewsByDay: []DailyPoint{{Date: "2026-05-19", Count: 3}, {Date: "2026-05-20", Count: 0}},
		LikesByDay: []DailyPoint{{Date: "2026-05-19", Count: 1}, {Date: "2026-05-20", Count: 2}},
	}
	got := string(BuildStatsCSV(stats))
	want := "Date,Views,Likes\n2026-05-19,3,1\n2026-05-20,0,2\n"
	if got != want {
		t.Fatalf("csv want %q got %q", want, got)
	}
	if name := StatsCSVFilename("launch", "30d"); name != "stats-launch-30d.csv" {
		t.Fatalf("unexpected filename %s", name)
	}
	if !strings.HasSuffix(string(BuildStatsCSV(nil)), "\n") {
		t.Fatalf("empty csv must end with newline")
	}
}
