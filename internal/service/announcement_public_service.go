package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
)

const (
	latestLimitDefault = 5
	latestLimitMax     = 20
)

// PublicAnnouncementService 前台公告读取服务
type PublicAnnouncementService struct {
	repo         repository.AnnouncementRepository
	categoryRepo repository.CategoryRepository
	engagement   *EngagementService
	renderer     *ContentRenderer
	settings     AnnouncementSettingProvider
	site         SiteInfo
	now          func() time.Time
}

// NewPublicAnnouncementService 创建前台公告服务
func NewPublicAnnouncementService(
	repo repository.AnnouncementRepository,
	categoryRepo repository.CategoryRepository,
	engagement *EngagementService,
	renderer *ContentRenderer,
	settings AnnouncementSettingProvider,
	site SiteInfo,
) *PublicAnnouncementService {
	if renderer == nil {
		renderer = NewContentRenderer()
	}
	return &PublicAnnouncementService{
		repo:         repo,
		categoryRepo: categoryRepo,
		engagement:   engagement,
		renderer:     renderer,
		settings:     settings,
		site:         site,
		now:          models.NowUTC,
	}
}

// PublicListInput 前台列表查询条件
type PublicListInput struct {
	Page         int
	CategorySlug string
	Query        string
}

// PublicListResult 前台列表结果
type PublicListResult struct {
	Items    []models.Announcement
	Total    int64
	Page     int
	PageSize int
}

// LatestInput 最新公告小组件查询条件
type LatestInput struct {
	Limit        int
	CategorySlug string
	FeaturedOnly bool
}

// AnnouncementDisplay 前台展示开关
type AnnouncementDisplay struct {
	ShowViews    bool   `json:"show_views"`
	ShowAuthor   bool   `json:"show_author"`
	ShowDate     bool   `json:"show_date"`
	ShowFeatured bool   `json:"show_featured"`
	LikesEnabled bool   `json:"likes_enabled"`
	LikesMode    string `json:"likes_mode"`
}

// AnnouncementDetail 公告详情页数据
type AnnouncementDetail struct {
	Announcement   *models.Announcement  `json:"announcement"`
	RenderedHTML   string                `json:"rendered_html"`
	AuthorName     string                `json:"author_name"`
	SEOTitle       string                `json:"seo_title"`
	SEODescription string                `json:"seo_description"`
	OGImage        string                `json:"og_image"`
	URL            string                `json:"url"`
	Related        []models.Announcement `json:"related"`
	Previous       *models.Announcement  `json:"previous"`
	Next           *models.Announcement  `json:"next"`
	Liked          bool                  `json:"liked"`
	ViewCounted    bool                  `json:"view_counted"`
	Preview        bool                  `json:"preview"`
	Display        AnnouncementDisplay   `json:"display"`
}

func (s *PublicAnnouncementService) loadSetting() AnnouncementSetting {
	if s.settings == nil {
		return AnnouncementDefaultSetting()
	}
	setting, err := s.settings.GetAnnouncementSetting()
	if err != nil {
		logger.Warnw("announcement_setting_load_failed", "error", err)
		return AnnouncementDefaultSetting()
	}
	return setting
}

func (s *PublicAnnouncementService) enabledSetting() (AnnouncementSetting, error) {
	setting := s.loadSetting()
	if !setting.Enabled {
		return setting, ErrAnnouncementsDisabled
	}
	return setting, nil
}

// List 已发布公告分页列表
func (s *PublicAnnouncementService) List(input PublicListInput) (*PublicListResult, error) {
	setting, err := s.enabledSetting()
	if err != nil {
		return nil, err
	}
	page := input.Page
	if page < 1 {
		page = 1
	}
	items, total, err := s.repo.List(repository.AnnouncementListFilter{
		Page:          page,
		PageSize:      setting.PerPage,
		CategorySlug:  input.CategorySlug,
		Search:        input.Query,
		OnlyPublished: true,
		Now:           s.now(),
		OrderBy:       repository.AnnouncementOrderClause(setting.DefaultOrder),
		WithRelations: true,
	})
	if err != nil {
		return nil, err
	}
	return &PublicListResult{Items: items, Total: total, Page: page, PageSize: setting.PerPage}, nil
}

// Search 前台即时搜索
func (s *PublicAnnouncementService) Search(query, categorySlug string) ([]models.Announcement, error) {
	setting, err := s.enabledSetting()
	if err != nil {
		return []models.Announcement{}, nil
	}
	items, _, err := s.repo.List(repository.AnnouncementListFilter{
		Page:          1,
		PageSize:      constants.PublicSearchLimit,
		CategorySlug:  categorySlug,
		Search:        query,
		OnlyPublished: true,
		Now:           s.now(),
		OrderBy:       repository.AnnouncementOrderClause(setting.DefaultOrder),
		WithRelations: true,
	})
	return items, err
}

// Latest 最新公告（首页小组件）
func (s *PublicAnnouncementService) Latest(input LatestInput) ([]models.Announcement, error) {
	setting, err := s.enabledSetting()
	if err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = latestLimitDefault
	}
	if limit > latestLimitMax {
		limit = latestLimitMax
	}
	filter := repository.AnnouncementListFilter{
		Page:          1,
		PageSize:      limit,
		CategorySlug:  input.CategorySlug,
		OnlyPublished: true,
		Now:           s.now(),
		OrderBy:       repository.AnnouncementOrderClause(setting.DefaultOrder),
		WithRelations: true,
	}
	if input.FeaturedOnly {
		featured := true
		filter.Featured = &featured
	}
	items, _, err := s.repo.List(filter)
	return items, err
}

// Categories 启用的分类及其已发布数量
func (s *PublicAnnouncementService) Categories() ([]models.AnnouncementCategory, error) {
	if _, err := s.enabledSetting(); err != nil {
		return nil, err
	}
	return s.categoryRepo.List(repository.CategoryListFilter{
		OnlyActive:    true,
		WithPublished: true,
		PublishedAsOf: s.now(),
	})
}

// Show 按 slug 展示已发布公告，并按 view_mode 记录浏览
func (s *PublicAnnouncementService) Show(slug string, req VisitorRequest) (*AnnouncementDetail, error) {
	setting, err := s.enabledSetting()
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetBySlug(strings.TrimSpace(slug), true, s.now())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	viewCounted := false
	if s.engagement != nil {
		result, err := s.engagement.RecordView(item.ID, req)
		if err != nil {
			logger.Warnw("announcement_view_record_failed", "announcement_id", item.ID, "error", err)
		} else {
			viewCounted = result.Counted
			item.ViewsCount = result.ViewsCount
		}
	}

	detail, err := s.buildDetail(item, setting)
	if err != nil {
		return nil, err
	}
	detail.ViewCounted = viewCounted
	if s.engagement != nil && setting.LikesEnabled {
		liked, err := s.engagement.HasLiked(item.ID, req)
		if err != nil {
			logger.Warnw("announcement_like_state_failed", "announcement_id", item.ID, "error", err)
		}
		detail.Liked = liked
	}
	return detail, nil
}

// ToggleLike 按 slug 切换点赞，仅对已发布公告生效
func (s *PublicAnnouncementService) ToggleLike(slug string, req VisitorRequest) (*LikeResult, error) {
	if _, err := s.enabledSetting(); err != nil {
		return nil, err
	}
	if s.engagement == nil {
		return nil, newPolicyError(ErrLikesDisabled, false)
	}
	item, err := s.repo.GetBySlug(strings.TrimSpace(slug), true, s.now())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return s.engagement.ToggleLike(item.ID, req)
}

// Preview 后台预览（不要求已发布，不记录浏览）
func (s *PublicAnnouncementService) Preview(id uint) (*AnnouncementDetail, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	detail, err := s.buildDetail(item, s.loadSetting())
	if err != nil {
		return nil, err
	}
	detail.Preview = true
	return detail, nil
}

func (s *PublicAnnouncementService) buildDetail(item *models.Announcement, setting AnnouncementSetting) (*AnnouncementDetail, error) {
	now := s.now()
	related, err := s.repo.ListRelated(item, constants.RelatedAnnouncementsLimit, now)
	if err != nil {
		return nil, err
	}
	previous, next, err := s.repo.GetAdjacent(item, now)
	if err != nil {
		return nil, err
	}
	rendered := s.RenderedContent(item)
	return &AnnouncementDetail{
		Announcement:   item,
		RenderedHTML:   rendered,
		AuthorName:     DisplayAuthorName(item, setting),
		SEOTitle:       s.SEOTitle(item, setting),
		SEODescription: s.SEODescription(item, rendered),
		OGImage:        OGImageURL(item, setting),
		URL:            s.site.AnnouncementURL(item.Slug),
		Related:        related,
		Previous:       previous,
		Next:           next,
		Display: AnnouncementDisplay{
			ShowViews:    setting.ShowViews,
			ShowAuthor:   setting.ShowAuthor,
			ShowDate:     setting.ShowDate,
			ShowFeatured: setting.ShowFeatured,
			LikesEnabled: setting.LikesEnabled,
			LikesMode:    setting.LikesMode,
		},
	}, nil
}

// RenderedContent 输出前再次清洗正文
func (s *PublicAnnouncementService) RenderedContent(item *models.Announcement) string {
	return s.renderer.Sanitize(item.ContentHTML)
}

// SEOTitle meta_title 优先，否则套用标题模板
func (s *PublicAnnouncementService) SEOTitle(item *models.Announcement, setting AnnouncementSetting) string {
	if title := strings.TrimSpace(item.MetaTitle); title != "" {
		return title
	}
	return ApplyTemplate(setting.SEOTitleTemplate, map[string]string{
		"{title}":     item.Title,
		"{site_name}": s.site.Name,
	})
}

// SEODescription meta_description > 摘要 > 正文纯文本，截断 160 字
func (s *PublicAnnouncementService) SEODescription(item *models.Announcement, renderedHTML string) string {
	if description := strings.TrimSpace(item.MetaDescription); description != "" {
		return description
	}
	if excerpt := strings.TrimSpace(item.Excerpt); excerpt != "" {
		return s.renderer.PlainText(excerpt, constants.SEODescriptionMaxLength)
	}
	return s.renderer.PlainText(renderedHTML, constants.SEODescriptionMaxLength)
}

// DisplayAuthorName 全局或单篇关闭作者展示、作者缺失时返回匿名名称
func DisplayAuthorName(item *models.Announcement, setting AnnouncementSetting) string {
	if setting.ShowAuthor && item.ShowAuthor && item.Author != nil {
		if name := item.Author.AuthorName(); name != "" {
			return name
		}
	}
	if setting.AnonymousName != "" {
		return setting.AnonymousName
	}
	return constants.AnonymousAuthorNameDefault
}

// OGImageURL og 图片 > 封面 > 默认 og 图片
func OGImageURL(item *models.Announcement, setting AnnouncementSetting) string {
	if item.OGImageURL != "" {
		return item.OGImageURL
	}
	if item.CoverImageURL != "" {
		return item.CoverImageURL
	}
	return setting.DefaultOGImage
}
