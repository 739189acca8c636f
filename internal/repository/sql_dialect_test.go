package repository

import (
	"testing"

	"github.com/dujiao-next/announcements/internal/models"
)

func TestLikeClause(t *testing.T) {
	clause, n := likeClause("LIKE", []string{"title", " ", "excerpt"})
	if n != 2 || clause != `(title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\')` {
		t.Fatalf("unexpected clause %q (%d)", clause, n)
	}
	clause, _ = likeClause("ILIKE", []string{"title"})
	if clause != `(title ILIKE ? ESCAPE '\')` {
		t.Fatalf("unexpected ilike clause %q", clause)
	}
	if clause, n := likeClause("LIKE", nil); clause != "" || n != 0 {
		t.Fatalf("empty columns should produce empty clause, got %q/%d", clause, n)
	}
	if op := likeOperator(nil); op != "LIKE" {
		t.Fatalf("nil db should fall back to LIKE, got %s", op)
	}
}

func TestLikeEscaper(t *testing.T) {
	if got := likeEscaper.Replace(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("unexpected escaped value: %s", got)
	}
}

func TestMatchAnyTreatsWildcardsLiterally(t *testing.T) {
	db := setupRepositoryTestDB(t)
	categories := []models.AnnouncementCategory{
		{Name: "100% uptime", Slug: "uptime", IsActive: true},
		{Name: "1000 users", Slug: "users", IsActive: true},
	}
	for i := range categories {
		if err := db.Create(&categories[i]).Error; err != nil {
			t.Fatalf("create category failed: %v", err)
		}
	}

	var names []string
	if err := db.Model(&models.AnnouncementCategory{}).Scopes(matchAny("100%")).Pluck("name", &names).Error; err != nil {
		t.Fatalf("query without columns failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("no columns should leave query unfiltered, got %v", names)
	}

	names = nil
	if err := db.Model(&models.AnnouncementCategory{}).Scopes(matchAny("100%", "name", "slug")).Pluck("name", &names).Error; err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(names) != 1 || names[0] != "100% uptime" {
		t.Fatalf("percent sign must match literally, got %v", names)
	}

	var count int64
	if err := db.Model(&models.Announcement{}).Scopes(matchAny("  ", announcementSearchColumns...)).Count(&count).Error; err != nil {
		t.Fatalf("blank search failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no announcements seeded, got %d", count)
	}
}

func TestPageOffset(t *testing.T) {
	if got := pageOffset(0, 20); got != 0 {
		t.Fatalf("page 0 offset want 0 got %d", got)
	}
	if got := pageOffset(3, 20); got != 40 {
		t.Fatalf("page 3 offset want 40 got %d", got)
	}
}
