package main

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
	"github.com/dujiao-next/announcements/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.Connect(cfg.Database); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}

	adminRepo := repository.NewAdminRepository(models.DB)
	categoryRepo := repository.NewCategoryRepository(models.DB)
	announcementRepo := repository.NewAnnouncementRepository(models.DB)
	authService := service.NewAuthService(cfg, adminRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	// 种子数据不触发 Discord 通知
	announcementService := service.NewAnnouncementService(announcementRepo, categoryRepo, service.NewContentRenderer(), nil)

	author, err := authService.CreateAdmin(service.CreateAdminInput{
		Username:    "editor",
		DisplayName: "Release Team",
		Password:    "editor-password-123",
	})
	if errors.Is(err, service.ErrUsernameExists) {
		author, err = adminRepo.GetByUsername("editor")
	}
	if err != nil || author == nil {
		stdLog.Fatalf("Failed to seed author: %v", err)
	}

	categories := []service.CreateCategoryInput{
		{Name: "Releases", Slug: "releases", Description: "Product release notes", Color: "#2563EB", Icon: "rocket", Position: 1, IsActive: true},
		{Name: "Maintenance", Slug: "maintenance", Description: "Planned maintenance windows", Color: "#F59E0B", Icon: "wrench", Position: 2, IsActive: true},
		{Name: "Community", Slug: "community", Description: "Events and community news", Color: "#10B981", Icon: "users", Position: 3, IsActive: true},
	}
	categoryIDs := make(map[string]uint, len(categories))
	for _, input := range categories {
		category, err := categoryService.Create(input)
		if errors.Is(err, service.ErrSlugExists) {
			category, err = categoryRepo.GetBySlug(input.Slug)
		}
		if err != nil || category == nil {
			stdLog.Fatalf("Failed to seed category %s: %v", input.Slug, err)
		}
		categoryIDs[input.Slug] = category.ID
	}

	now := time.Now().UTC()
	releaseID := categoryIDs["releases"]
	maintenanceID := categoryIDs["maintenance"]
	communityID := categoryIDs["community"]
	scheduledAt := now.Add(48 * time.Hour)
	announcements := []service.AnnouncementInput{
		{
			Title:           "Version 2.0 is live",
			Slug:            "version-2-0-is-live",
			Excerpt:         "A redesigned dashboard, faster search and dark mode.",
			EditorMode:      constants.EditorModeMarkdown,
			ContentMarkdown: "## Highlights\n\n- Redesigned dashboard\n- Search is **3x faster**\n- Dark mode\n\nSee the [changelog](https://example.com/changelog) for details.",
			Status:          constants.AnnouncementStatusPublished,
			Featured:        true,
			CategoryID:      &releaseID,
			ShowAuthor:      true,
		},
		{
			Title:       "Scheduled database maintenance",
			Slug:        "scheduled-database-maintenance",
			EditorMode:  constants.EditorModeHTML,
			ContentHTML: "<p>The service will be read-only for about <strong>30 minutes</strong>.</p>",
			Status:      constants.AnnouncementStatusScheduled,
			PublishedAt: &scheduledAt,
			CategoryID:  &maintenanceID,
			ShowAuthor:  true,
		},
		{
			Title:           "Community meetup recap",
			Slug:            "community-meetup-recap",
			EditorMode:      constants.EditorModeMarkdown,
			ContentMarkdown: "Thanks to everyone who joined the meetup. Slides will be shared next week.",
			Status:          constants.AnnouncementStatusDraft,
			CategoryID:      &communityID,
			ShowAuthor:      false,
		},
	}
	ctx := context.Background()
	for _, input := range announcements {
		if _, err := announcementService.Create(ctx, input, author.ID); err != nil {
			if errors.Is(err, service.ErrSlugExists) {
				continue
			}
			stdLog.Fatalf("Failed to seed announcement %s: %v", input.Slug, err)
		}
	}

	logger.Infow("seed_completed", "categories", len(categories), "announcements", len(announcements))
}
