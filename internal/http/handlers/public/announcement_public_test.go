package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/provider"
	"github.com/dujiao-next/announcements/internal/repository"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type publicEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupPublicHandlerTest(t *testing.T, mutate func(*service.AnnouncementSetting)) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: models.NowUTC})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	setting := service.AnnouncementDefaultSetting()
	if mutate != nil {
		mutate(&setting)
	}
	settings := service.StaticSettings{Announcement: setting, Notification: service.NotificationDefaultSetting()}
	site := service.SiteInfo{Name: "Acme", URL: "https://acme.test", PublicPath: "announcements"}

	announcementRepo := repository.NewAnnouncementRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	renderer := service.NewContentRenderer()
	engagement := service.NewEngagementService(announcementRepo, repository.NewEngagementRepository(db), settings, nil)

	h := &Handler{Container: &provider.Container{
		Config:                    &config.Config{},
		AnnouncementRepo:          announcementRepo,
		CategoryRepo:              categoryRepo,
		EngagementService:         engagement,
		PublicAnnouncementService: service.NewPublicAnnouncementService(announcementRepo, categoryRepo, engagement, renderer, settings, site),
		FeedService:               service.NewFeedService(announcementRepo, renderer, settings, site),
	}}
	return h, db
}

func seedPublished(t *testing.T, db *gorm.DB, slug string, publishedAt time.Time) *models.Announcement {
	t.Helper()
	item := &models.Announcement{
		Title:       strings.ToUpper(slug[:1]) + slug[1:],
		Slug:        slug,
		Status:      constants.AnnouncementStatusPublished,
		PublishedAt: &publishedAt,
		EditorMode:  constants.EditorModeHTML,
		ContentHTML: "<p>Body of " + slug + "</p>",
		Robots:      constants.AnnouncementRobotsDefault,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create announcement %s failed: %v", slug, err)
	}
	return item
}

func performPublic(handler gin.HandlerFunc, method, target string, params gin.Params, setup func(*gin.Context)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Request.RemoteAddr = "203.0.113.9:4321"
	c.Params = params
	if setup != nil {
		setup(c)
	}
	handler(c)
	return w
}

func decodePublicEnvelope(t *testing.T, w *httptest.ResponseRecorder) publicEnvelope {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp publicEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestListAnnouncementsHidesUnpublished(t *testing.T) {
	h, db := setupPublicHandlerTest(t, nil)
	now := time.Now().UTC()
	seedPublished(t, db, "visible", now.Add(-time.Hour))
	seedPublished(t, db, "future", now.Add(time.Hour))

	w := performPublic(h.ListAnnouncements, http.MethodGet, "/public/announcements", nil, nil)
	resp := decodePublicEnvelope(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	var items []models.Announcement
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("unmarshal list failed: %v", err)
	}
	if len(items) != 1 || items[0].Slug != "visible" {
		t.Fatalf("want only visible item, got %+v", items)
	}
}

func TestShowAnnouncementIssuesCookieAndCountsOnce(t *testing.T) {
	h, db := setupPublicHandlerTest(t, nil)
	item := seedPublished(t, db, "hello", time.Now().UTC().Add(-time.Hour))
	params := gin.Params{{Key: "slug", Value: "hello"}}

	w := performPublic(h.ShowAnnouncement, http.MethodGet, "/public/announcements/hello", params, nil)
	resp := decodePublicEnvelope(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}
	var detail service.AnnouncementDetail
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("unmarshal detail failed: %v", err)
	}
	if !detail.ViewCounted {
		t.Fatalf("first view must count")
	}
	var cookie *http.Cookie
	for _, candidate := range w.Result().Cookies() {
		if candidate.Name == constants.VisitorCookieName {
			cookie = candidate
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("visitor cookie missing or not http-only: %+v", cookie)
	}

	w = performPublic(h.ShowAnnouncement, http.MethodGet, "/public/announcements/hello", params, func(c *gin.Context) {
		c.Request.AddCookie(&http.Cookie{Name: constants.VisitorCookieName, Value: cookie.Value})
	})
	resp = decodePublicEnvelope(t, w)
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("unmarshal detail failed: %v", err)
	}
	if detail.ViewCounted {
		t.Fatalf("repeat view inside the window must be suppressed")
	}

	var reloaded models.Announcement
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ViewsCount != 1 {
		t.Fatalf("views_count want 1 got %d", reloaded.ViewsCount)
	}

	w = performPublic(h.ShowAnnouncement, http.MethodGet, "/public/announcements/missing",
		gin.Params{{Key: "slug", Value: "missing"}}, nil)
	if resp := decodePublicEnvelope(t, w); resp.StatusCode != 404 {
		t.Fatalf("missing slug want 404 got %d", resp.StatusCode)
	}
}

func TestToggleLikePolicies(t *testing.T) {
	h, db := setupPublicHandlerTest(t, func(s *service.AnnouncementSetting) {
		s.LikesMode = constants.LikesModeAuthenticated
	})
	seedPublished(t, db, "hello", time.Now().UTC().Add(-time.Hour))
	params := gin.Params{{Key: "slug", Value: "hello"}}

	w := performPublic(h.ToggleLike, http.MethodPost, "/public/announcements/hello/like", params, nil)
	if resp := decodePublicEnvelope(t, w); resp.StatusCode != 401 {
		t.Fatalf("anonymous like in authenticated mode want 401 got %d", resp.StatusCode)
	}

	w = performPublic(h.ToggleLike, http.MethodPost, "/public/announcements/hello/like", params, func(c *gin.Context) {
		c.Set("user_id", uint(42))
	})
	resp := decodePublicEnvelope(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("user like want 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}
	var result service.LikeResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("unmarshal like result failed: %v", err)
	}
	if !result.Liked || result.LikesCount != 1 {
		t.Fatalf("unexpected like result %+v", result)
	}

	disabled, db2 := setupPublicHandlerTest(t, func(s *service.AnnouncementSetting) { s.LikesEnabled = false })
	seedPublished(t, db2, "hello", time.Now().UTC().Add(-time.Hour))
	w = performPublic(disabled.ToggleLike, http.MethodPost, "/public/announcements/hello/like", params, nil)
	if resp := decodePublicEnvelope(t, w); resp.StatusCode != 403 {
		t.Fatalf("likes disabled want 403 got %d", resp.StatusCode)
	}
}

func TestRSSFeedContentTypeAndDisabled(t *testing.T) {
	h, db := setupPublicHandlerTest(t, nil)
	seedPublished(t, db, "hello", time.Now().UTC().Add(-time.Hour))

	w := performPublic(h.RSSFeed, http.MethodGet, "/public/announcements/feed.xml", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/rss+xml") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(w.Body.String(), "https://acme.test/announcements/hello") {
		t.Fatalf("feed must link the item, got %s", w.Body.String())
	}

	disabled, _ := setupPublicHandlerTest(t, func(s *service.AnnouncementSetting) { s.RSSEnabled = false })
	w = performPublic(disabled.RSSFeed, http.MethodGet, "/public/announcements/feed.xml", nil, nil)
	resp := decodePublicEnvelope(t, w)
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("disabled feed status_code want %d got %d", response.CodeNotFound, resp.StatusCode)
	}
}

func TestSearchAnnouncementsEmptyQuery(t *testing.T) {
	h, _ := setupPublicHandlerTest(t, nil)
	w := performPublic(h.SearchAnnouncements, http.MethodGet, "/public/announcements/search?q=", nil, nil)
	resp := decodePublicEnvelope(t, w)
	if resp.StatusCode != 0 || strings.TrimSpace(string(resp.Data)) != "[]" {
		t.Fatalf("empty query want [] got %d %s", resp.StatusCode, resp.Data)
	}
}
