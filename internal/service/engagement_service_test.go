package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"

	"gorm.io/gorm"
)

func setupEngagementServiceTest(t *testing.T, settings StaticSettings) (*EngagementService, *gorm.DB, *testClock) {
	t.Helper()
	db := setupServiceTestDB(t)
	clock := newTestClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := NewEngagementService(
		repository.NewAnnouncementRepository(db),
		repository.NewEngagementRepository(db),
		settings,
		nil,
	)
	svc.now = clock.Now
	return svc, db, clock
}

func TestRecordViewSuppressesWithinWindow(t *testing.T) {
	svc, db, clock := setupEngagementServiceTest(t, staticAnnouncementSettings(nil))
	item := seedAnnouncement(t, db, "launch", constants.AnnouncementStatusPublished, nil)
	req := VisitorRequest{IP: "203.0.113.7", UserAgent: "Mozilla/5.0", Referrer: "https://news.example.com/"}

	for i := 0; i < 5; i++ {
		result, err := svc.RecordView(item.ID, req)
		if err != nil {
			t.Fatalf("record view failed: %v", err)
		}
		if want := i == 0; result.Counted != want {
			t.Fatalf("view %d counted want %v got %v", i, want, result.Counted)
		}
		clock.Advance(time.Minute)
	}
	if got := reloadAnnouncement(t, db, item.ID).ViewsCount; got != 1 {
		t.Fatalf("views_count want 1 got %d", got)
	}

	clock.Advance(31 * time.Minute)
	result, err := svc.RecordView(item.ID, req)
	if err != nil {
		t.Fatalf("record view after window failed: %v", err)
	}
	if !result.Counted || result.ViewsCount != 2 {
		t.Fatalf("view after window want counted with 2 got %+v", result)
	}
}

func TestRecordViewTotalModeCountsEveryRequest(t *testing.T) {
	settings := staticAnnouncementSettings(func(s *AnnouncementSetting) { s.ViewMode = constants.ViewModeTotal })
	svc, db, _ := setupEngagementServiceTest(t, settings)
	item := seedAnnouncement(t, db, "total", constants.AnnouncementStatusPublished, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordView(item.ID, VisitorRequest{IP: "198.51.100.1"}); err != nil {
			t.Fatalf("record view failed: %v", err)
		}
	}
	if got := reloadAnnouncement(t, db, item.ID).ViewsCount; got != 3 {
		t.Fatalf("views_count want 3 got %d", got)
	}
}

func TestRecordViewAuthenticatedModeIgnoresGuests(t *testing.T) {
	settings := staticAnnouncementSettings(func(s *AnnouncementSetting) { s.ViewMode = constants.ViewModeAuthenticated })
	svc, db, _ := setupEngagementServiceTest(t, settings)
	item := seedAnnouncement(t, db, "members", constants.AnnouncementStatusPublished, nil)

	guest, err := svc.RecordView(item.ID, VisitorRequest{IP: "198.51.100.1"})
	if err != nil || guest.Counted {
		t.Fatalf("guest view must be ignored, got %+v err %v", guest, err)
	}
	member, err := svc.RecordView(item.ID, VisitorRequest{IP: "198.51.100.1", UserID: 9})
	if err != nil || !member.Counted || member.ViewsCount != 1 {
		t.Fatalf("member view must count, got %+v err %v", member, err)
	}
}

func TestRecordViewStoresHashesOnly(t *testing.T) {
	svc, db, _ := setupEngagementServiceTest(t, staticAnnouncementSettings(nil))
	item := seedAnnouncement(t, db, "privacy", constants.AnnouncementStatusPublished, nil)
	longReferrer := "https://example.com/" + strings.Repeat("a", 400)

	if _, err := svc.RecordView(item.ID, VisitorRequest{IP: "192.0.2.44", UserAgent: "curl/8", Referrer: longReferrer}); err != nil {
		t.Fatalf("record view failed: %v", err)
	}
	var row struct {
		IPHash        string
		UserAgentHash string
		Referrer      string
	}
	if err := db.Table("announcement_views").Select("ip_hash, user_agent_hash, referrer").Scan(&row).Error; err != nil {
		t.Fatalf("load view failed: %v", err)
	}
	if row.IPHash != HashValue("192.0.2.44") || strings.Contains(row.IPHash, "192.0.2.44") {
		t.Fatalf("ip must be stored hashed, got %q", row.IPHash)
	}
	if row.UserAgentHash != HashValue("curl/8") {
		t.Fatalf("user agent hash mismatch: %q", row.UserAgentHash)
	}
	if len(row.Referrer) != constants.ReferrerMaxLength {
		t.Fatalf("referrer want %d chars got %d", constants.ReferrerMaxLength, len(row.Referrer))
	}
}

func TestRecordViewErrors(t *testing.T) {
	svc, db, _ := setupEngagementServiceTest(t, staticAnnouncementSettings(nil))
	item := seedAnnouncement(t, db, "errors", constants.AnnouncementStatusPublished, nil)

	if _, err := svc.RecordView(item.ID, VisitorRequest{}); !errors.Is(err, ErrIdentityMissing) {
		t.Fatalf("want ErrIdentityMissing got %v", err)
	}
	if _, err := svc.RecordView(item.ID+100, VisitorRequest{IP: "192.0.2.1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestToggleLikeTwiceRestoresCounter(t *testing.T) {
	svc, db, _ := setupEngagementServiceTest(t, staticAnnouncementSettings(nil))
	item := seedAnnouncement(t, db, "toggle", constants.AnnouncementStatusPublished, nil)
	if err := db.Model(item).UpdateColumn("likes_count", 4).Error; err != nil {
		t.Fatalf("seed likes failed: %v", err)
	}
	req := VisitorRequest{IP: "203.0.113.9", CookieID: "visitor-1"}

	first, err := svc.ToggleLike(item.ID, req)
	if err != nil || !first.Liked || first.LikesCount != 5 {
		t.Fatalf("first toggle want liked with 5 got %+v err %v", first, err)
	}
	liked, err := svc.HasLiked(item.ID, req)
	if err != nil || !liked {
		t.Fatalf("has liked want true got %v err %v", liked, err)
	}
	second, err := svc.ToggleLike(item.ID, req)
	if err != nil || second.Liked || second.LikesCount != 4 {
		t.Fatalf("second toggle want unliked with 4 got %+v err %v", second, err)
	}
	if got := reloadAnnouncement(t, db, item.ID).LikesCount; got != 4 {
		t.Fatalf("likes_count want 4 got %d", got)
	}
}

func TestToggleLikeUserSupersedesIP(t *testing.T) {
	svc, db, _ := setupEngagementServiceTest(t, staticAnnouncementSettings(nil))
	item := seedAnnouncement(t, db, "user-like", constants.AnnouncementStatusPublished, nil)

	if _, err := svc.ToggleLike(item.ID, VisitorRequest{IP: "203.0.113.9", UserID: 3}); err != nil {
		t.Fatalf("user like failed: %v", err)
	}
	// 同一 IP 的匿名访客是独立身份
	guest, err := svc.ToggleLike(item.ID, VisitorRequest{IP: "203.0.113.9"})
	if err != nil || !guest.Liked || guest.LikesCount != 2 {
		t.Fatalf("guest like want liked with 2 got %+v err %v", guest, err)
	}
	// 同一用户换 IP 仍视为已点赞
	again, err := svc.ToggleLike(item.ID, VisitorRequest{IP: "198.51.100.20", UserID: 3})
	if err != nil || again.Liked || again.LikesCount != 1 {
		t.Fatalf("user unlike want unliked with 1 got %+v err %v", again, err)
	}
}

func TestToggleLikePolicyRejections(t *testing.T) {
	disabled := staticAnnouncementSettings(func(s *AnnouncementSetting) { s.LikesEnabled = false })
	svc, db, _ := setupEngagementServiceTest(t, disabled)
	item := seedAnnouncement(t, db, "policy", constants.AnnouncementStatusPublished, nil)

	_, err := svc.ToggleLike(item.ID, VisitorRequest{IP: "192.0.2.1"})
	policyErr, ok := AsPolicyError(err)
	if !ok || policyErr.RequiresAuth || !errors.Is(err, ErrLikesDisabled) {
		t.Fatalf("want likes disabled policy error got %v", err)
	}

	svc.settings = staticAnnouncementSettings(func(s *AnnouncementSetting) { s.LikesMode = constants.LikesModeAuthenticated })
	_, err = svc.ToggleLike(item.ID, VisitorRequest{IP: "192.0.2.1"})
	policyErr, ok = AsPolicyError(err)
	if !ok || !policyErr.RequiresAuth || !errors.Is(err, ErrLikeRequiresAuth) {
		t.Fatalf("want requires auth policy error got %v", err)
	}

	result, err := svc.ToggleLike(item.ID, VisitorRequest{IP: "192.0.2.1", UserID: 11})
	if err != nil || !result.Liked {
		t.Fatalf("authenticated like want liked got %+v err %v", result, err)
	}
}

func TestToggleLikeConcurrentOnFileDatabase(t *testing.T) {
	db, err := models.Open("sqlite", filepath.Join(t.TempDir(), "likes.db"), models.DBPoolConfig{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	item := seedAnnouncement(t, db, "launch", constants.AnnouncementStatusPublished, nil)
	svc := NewEngagementService(
		repository.NewAnnouncementRepository(db),
		repository.NewEngagementRepository(db),
		staticAnnouncementSettings(nil),
		nil,
	)

	const visitors = 20
	var wg sync.WaitGroup
	errs := make(chan error, visitors)
	for i := 0; i < visitors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.ToggleLike(item.ID, VisitorRequest{IP: fmt.Sprintf("198.51.100.%d", i+1)}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent like failed: %v", err)
	}

	var rows int64
	if err := db.Model(&models.AnnouncementLike{}).Where("announcement_id = ?", item.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count likes failed: %v", err)
	}
	if got := reloadAnnouncement(t, db, item.ID).LikesCount; rows != visitors || got != visitors {
		t.Fatalf("want %d likes got rows=%d likes_count=%d", visitors, rows, got)
	}
}
