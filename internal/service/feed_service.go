package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"

	"github.com/gorilla/feeds"
)

// FeedService RSS 输出
type FeedService struct {
	repo     repository.AnnouncementRepository
	renderer *ContentRenderer
	settings AnnouncementSettingProvider
	site     SiteInfo
	now      func() time.Time
}

// NewFeedService 创建 RSS 服务
func NewFeedService(repo repository.AnnouncementRepository, renderer *ContentRenderer, settings AnnouncementSettingProvider, site SiteInfo) *FeedService {
	if renderer == nil {
		renderer = NewContentRenderer()
	}
	return &FeedService{repo: repo, renderer: renderer, settings: settings, site: site, now: models.NowUTC}
}

// BuildRSS 生成 RSS 2.0 文档
func (s *FeedService) BuildRSS() (string, error) {
	setting := AnnouncementDefaultSetting()
	if s.settings != nil {
		loaded, err := s.settings.GetAnnouncementSetting()
		if err != nil {
			logger.Warnw("feed_setting_load_failed", "error", err)
		} else {
			setting = loaded
		}
	}
	if !setting.Enabled || !setting.RSSEnabled {
		return "", ErrFeedDisabled
	}

	now := s.now()
	items, _, err := s.repo.List(repository.AnnouncementListFilter{
		Page:          1,
		PageSize:      setting.RSSLimit,
		OnlyPublished: true,
		Now:           now,
		OrderBy:       repository.AnnouncementOrderClause(setting.DefaultOrder),
		WithRelations: true,
	})
	if err != nil {
		return "", err
	}

	feed := &feeds.Feed{
		Title:       s.site.Name,
		Link:        &feeds.Link{Href: s.site.AnnouncementURL("")},
		Description: setting.DefaultMetaDescription,
		Updated:     now,
		Items:       make([]*feeds.Item, 0, len(items)),
	}
	for i := range items {
		feed.Items = append(feed.Items, s.feedItem(&items[i], setting))
	}

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	for i := range rss.Items {
		if i < len(items) && items[i].Category != nil {
			rss.Items[i].Category = items[i].Category.Name
		}
	}
	return feeds.ToXML(rss)
}

func (s *FeedService) feedItem(item *models.Announcement, setting AnnouncementSetting) *feeds.Item {
	link := s.site.AnnouncementURL(item.Slug)
	description := strings.TrimSpace(item.Excerpt)
	if description == "" {
		description = s.renderer.PlainText(item.ContentHTML, constants.RSSDescriptionMaxLength)
	}
	entry := &feeds.Item{
		Title:       item.Title,
		Link:        &feeds.Link{Href: link},
		Description: description,
		Id:          link,
		Author:      &feeds.Author{Name: DisplayAuthorName(item, setting)},
	}
	if item.PublishedAt != nil {
		entry.Created = item.PublishedAt.UTC()
	}
	if item.CoverImageURL != "" {
		entry.Enclosure = &feeds.Enclosure{Url: item.CoverImageURL, Type: enclosureType(item.CoverImageURL), Length: "0"}
	}
	return entry
}

func enclosureType(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
