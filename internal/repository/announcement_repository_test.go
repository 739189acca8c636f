package repository

import (
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
)

func TestAnnouncementListOnlyPublishedRespectsPublishedAt(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAnnouncementRepository(db)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	createTestAnnouncement(t, db, "visible", constants.AnnouncementStatusPublished, timePtr(now.Add(-time.Hour)))
	createTestAnnouncement(t, db, "future", constants.AnnouncementStatusPublished, timePtr(now.Add(time.Hour)))
	createTestAnnouncement(t, db, "draft", constants.AnnouncementStatusDraft, nil)
	createTestAnnouncement(t, db, "scheduled", constants.AnnouncementStatusScheduled, timePtr(now.Add(-time.Minute)))

	items, total, err := repo.List(AnnouncementListFilter{OnlyPublished: true, Now: now, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Slug != "visible" {
		t.Fatalf("only visible should be listed, total=%d items=%+v", total, items)
	}
}

func TestAnnouncementListSearchAndOrder(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAnnouncementRepository(db)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	first := createTestAnnouncement(t, db, "release-notes", constants.AnnouncementStatusPublished, timePtr(now.Add(-3*time.Hour)))
	second := createTestAnnouncement(t, db, "maintenance", constants.AnnouncementStatusPublished, timePtr(now.Add(-2*time.Hour)))
	third := createTestAnnouncement(t, db, "pinned", constants.AnnouncementStatusPublished, timePtr(now.Add(-4*time.Hour)))
	db.Model(first).Updates(map[string]interface{}{"excerpt": "100% uptime", "position": 1})
	db.Model(second).Updates(map[string]interface{}{"content_markdown": "planned downtime", "position": 0})
	db.Model(third).Updates(map[string]interface{}{"featured": true, "position": 5})

	items, _, err := repo.List(AnnouncementListFilter{
		OnlyPublished: true,
		Now:           now,
		OrderBy:       AnnouncementOrderClause(constants.OrderFeaturedPositionDate),
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	gotOrder := []string{items[0].Slug, items[1].Slug, items[2].Slug}
	wantOrder := []string{"pinned", "maintenance", "release-notes"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("featured ordering want %v got %v", wantOrder, gotOrder)
		}
	}

	items, _, err = repo.List(AnnouncementListFilter{OnlyPublished: true, Now: now, OrderBy: AnnouncementOrderClause(constants.OrderDate)})
	if err != nil {
		t.Fatalf("list by date failed: %v", err)
	}
	if items[0].Slug != "maintenance" {
		t.Fatalf("date ordering should start with newest, got %s", items[0].Slug)
	}

	items, total, err := repo.List(AnnouncementListFilter{Search: "downtime"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || items[0].Slug != "maintenance" {
		t.Fatalf("search should match content, got %+v", items)
	}

	_, total, err = repo.List(AnnouncementListFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("search with wildcard failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("escaped wildcard search want 1 got %d", total)
	}
}

func TestAnnouncementCountBySlugIncludesSoftDeleted(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAnnouncementRepository(db)
	item := createTestAnnouncement(t, db, "hello-world", constants.AnnouncementStatusDraft, nil)
	if err := repo.Delete(item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err := repo.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("soft deleted item should be hidden")
	}
	count, err := repo.CountBySlug("hello-world", nil)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("soft deleted slug should stay reserved, count=%d", count)
	}
	count, err = repo.CountBySlug("hello-world", &item.ID)
	if err != nil {
		t.Fatalf("count excluding self failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("exclude self want 0 got %d", count)
	}
}

func TestAnnouncementPublishScheduledOnlyTransitionsScheduled(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAnnouncementRepository(db)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	due := createTestAnnouncement(t, db, "due", constants.AnnouncementStatusScheduled, timePtr(now.Add(-time.Minute)))
	createTestAnnouncement(t, db, "later", constants.AnnouncementStatusScheduled, timePtr(now.Add(time.Hour)))

	items, err := repo.ListDueScheduled(now)
	if err != nil {
		t.Fatalf("list due failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != due.ID {
		t.Fatalf("only due item expected, got %+v", items)
	}

	changed, err := repo.PublishScheduled(due.ID)
	if err != nil || !changed {
		t.Fatalf("first publish should change state, changed=%v err=%v", changed, err)
	}
	changed, err = repo.PublishScheduled(due.ID)
	if err != nil || changed {
		t.Fatalf("second publish should be a no-op, changed=%v err=%v", changed, err)
	}
	var reloaded models.Announcement
	db.First(&reloaded, due.ID)
	if reloaded.Status != constants.AnnouncementStatusPublished || !reloaded.PublishedAt.Equal(now.Add(-time.Minute)) {
		t.Fatalf("published_at should be unchanged, got %+v", reloaded)
	}
}

func TestAnnouncementAdjustCounterNeverNegative(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAnnouncementRepository(db)
	item := createTestAnnouncement(t, db, "counter", constants.AnnouncementStatusDraft, nil)

	value, err := repo.AdjustCounter(item.ID, "likes_count", 1)
	if err != nil || value != 1 {
		t.Fatalf("increment want 1 got %d err=%v", value, err)
	}
	value, err = repo.AdjustCounter(item.ID, "likes_count", -1)
	if err != nil || value != 0 {
		t.Fatalf("decrement want 0 got %d err=%v", value, err)
	}
	value, err = repo.AdjustCounter(item.ID, "likes_count", -1)
	if err != nil || value != 0 {
		t.Fatalf("decrement below zero should be ignored, got %d err=%v", value, err)
	}
	if _, err := repo.AdjustCounter(item.ID, "title", 1); err == nil {
		t.Fatalf("unsupported column should fail")
	}
}

func TestAnnouncementUpdateKeepsCounters(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAnnouncementRepository(db)
	item := createTestAnnouncement(t, db, "keep-counters", constants.AnnouncementStatusDraft, nil)
	if _, err := repo.AdjustCounter(item.ID, "views_count", 5); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	item.Title = "Renamed"
	item.ViewsCount = 0
	if err := repo.Update(item); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	reloaded, _ := repo.GetByID(item.ID)
	if reloaded.Title != "Renamed" || reloaded.ViewsCount != 5 {
		t.Fatalf("update should keep counters, got title=%s views=%d", reloaded.Title, reloaded.ViewsCount)
	}
}

func TestAnnouncementAdjacentAndRelated(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAnnouncementRepository(db)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	category := &models.AnnouncementCategory{Name: "News", Slug: "news", Color: constants.CategoryColorDefault, IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	older := createTestAnnouncement(t, db, "older", constants.AnnouncementStatusPublished, timePtr(now.Add(-3*time.Hour)))
	middle := createTestAnnouncement(t, db, "middle", constants.AnnouncementStatusPublished, timePtr(now.Add(-2*time.Hour)))
	newer := createTestAnnouncement(t, db, "newer", constants.AnnouncementStatusPublished, timePtr(now.Add(-1*time.Hour)))
	createTestAnnouncement(t, db, "hidden", constants.AnnouncementStatusDraft, nil)
	for _, item := range []*models.Announcement{older, middle, newer} {
		db.Model(item).Update("category_id", category.ID)
	}
	middle.CategoryID = &category.ID

	prev, next, err := repo.GetAdjacent(middle, now)
	if err != nil {
		t.Fatalf("adjacent failed: %v", err)
	}
	if prev == nil || prev.Slug != "older" || next == nil || next.Slug != "newer" {
		t.Fatalf("unexpected adjacent prev=%v next=%v", prev, next)
	}

	related, err := repo.ListRelated(middle, 3, now)
	if err != nil {
		t.Fatalf("related failed: %v", err)
	}
	if len(related) != 2 || related[0].Slug != "newer" {
		t.Fatalf("related should exclude self and order by date, got %+v", related)
	}
}

func TestCategoryDeleteNullifiesAnnouncements(t *testing.T) {
	db := setupRepositoryTestDB(t)
	categories := NewCategoryRepository(db)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	category := &models.AnnouncementCategory{Name: "Updates", Slug: "updates", Color: constants.CategoryColorDefault, IsActive: true}
	if err := categories.Create(category); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	item := createTestAnnouncement(t, db, "linked", constants.AnnouncementStatusPublished, timePtr(now.Add(-time.Hour)))
	db.Model(item).Update("category_id", category.ID)

	list, err := categories.List(CategoryListFilter{WithPublished: true, PublishedAsOf: now})
	if err != nil {
		t.Fatalf("list categories failed: %v", err)
	}
	if len(list) != 1 || list[0].PublishedCount != 1 {
		t.Fatalf("published count want 1 got %+v", list)
	}

	if err := categories.Delete(category.ID); err != nil {
		t.Fatalf("delete category failed: %v", err)
	}
	var reloaded models.Announcement
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("announcement should survive category delete: %v", err)
	}
	if reloaded.CategoryID != nil {
		t.Fatalf("category_id should be nulled, got %v", *reloaded.CategoryID)
	}
	count, _ := categories.CountBySlug("updates", nil)
	if count != 1 {
		t.Fatalf("deleted category slug should stay reserved")
	}
}
