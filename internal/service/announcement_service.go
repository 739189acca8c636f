package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
)

// AnnouncementService 公告后台管理服务
type AnnouncementService struct {
	repo         repository.AnnouncementRepository
	categoryRepo repository.CategoryRepository
	renderer     *ContentRenderer
	notifier     AnnouncementNotifier
	now          func() time.Time
}

// NewAnnouncementService 创建公告服务
func NewAnnouncementService(
	repo repository.AnnouncementRepository,
	categoryRepo repository.CategoryRepository,
	renderer *ContentRenderer,
	notifier AnnouncementNotifier,
) *AnnouncementService {
	if renderer == nil {
		renderer = NewContentRenderer()
	}
	return &AnnouncementService{
		repo:         repo,
		categoryRepo: categoryRepo,
		renderer:     renderer,
		notifier:     notifier,
		now:          models.NowUTC,
	}
}

// AnnouncementListInput 后台列表查询条件
type AnnouncementListInput struct {
	Page       int
	PageSize   int
	Status     string
	CategoryID uint
	Search     string
	Featured   *bool
}

// AnnouncementInput 创建/更新公告输入
type AnnouncementInput struct {
	Title           string
	Slug            string
	Excerpt         string
	EditorMode      string
	ContentMarkdown string
	ContentHTML     string
	Status          string
	PublishedAt     *time.Time
	Featured        bool
	Position        int
	CoverImageURL   string
	CategoryID      *uint
	ShowAuthor      bool
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	OGImageURL      string
	CanonicalURL    string
	Robots          string
}

func validStatus(status string) bool {
	switch status {
	case constants.AnnouncementStatusDraft,
		constants.AnnouncementStatusPublished,
		constants.AnnouncementStatusScheduled,
		constants.AnnouncementStatusArchived:
		return true
	}
	return false
}

// List 后台公告列表
func (s *AnnouncementService) List(input AnnouncementListInput) ([]models.Announcement, int64, error) {
	status := strings.TrimSpace(input.Status)
	if status != "" && !validStatus(status) {
		return nil, 0, ErrStatusInvalid
	}
	return s.repo.List(repository.AnnouncementListFilter{
		Page:          input.Page,
		PageSize:      input.PageSize,
		Status:        status,
		CategoryID:    input.CategoryID,
		Search:        input.Search,
		Featured:      input.Featured,
		OrderBy:       repository.AnnouncementOrderClause(constants.OrderFeaturedPositionDate),
		WithRelations: true,
	})
}

// Get 获取公告详情
func (s *AnnouncementService) Get(id uint) (*models.Announcement, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// Create 创建公告
func (s *AnnouncementService) Create(ctx context.Context, input AnnouncementInput, authorID uint) (*models.Announcement, error) {
	item := &models.Announcement{}
	if authorID != 0 {
		author := authorID
		item.AuthorID = &author
	}
	if err := s.applyInput(item, input, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(item); err != nil {
		return nil, err
	}
	s.afterSave(ctx, item, "")
	return s.Get(item.ID)
}

// Update 更新公告
func (s *AnnouncementService) Update(ctx context.Context, id uint, input AnnouncementInput) (*models.Announcement, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	previous := item.Status
	if err := s.applyInput(item, input, &id); err != nil {
		return nil, err
	}
	item.Category = nil
	item.Author = nil
	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	s.afterSave(ctx, item, previous)
	return s.Get(item.ID)
}

// applyInput 校验并写入字段：slug 生成、内容渲染、发布时间与定时状态
func (s *AnnouncementService) applyInput(item *models.Announcement, input AnnouncementInput, excludeID *uint) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrTitleRequired
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = constants.AnnouncementStatusDraft
	}
	if !validStatus(status) {
		return ErrStatusInvalid
	}
	mode := strings.TrimSpace(input.EditorMode)
	if mode == "" {
		mode = constants.EditorModeMarkdown
	}
	if mode != constants.EditorModeMarkdown && mode != constants.EditorModeHTML {
		return ErrEditorModeInvalid
	}
	if err := s.checkCategory(input.CategoryID); err != nil {
		return err
	}

	slug, err := resolveSlug(requestedSlug(input.Slug, item.Slug, excludeID), title, slugFallbackPrefix, excludeID, s.repo.CountBySlug)
	if err != nil {
		return err
	}

	item.Title = title
	item.Slug = slug
	item.Excerpt = strings.TrimSpace(input.Excerpt)
	item.EditorMode = mode
	if err := s.applyContent(item, input.ContentMarkdown, input.ContentHTML); err != nil {
		return err
	}
	item.Featured = input.Featured
	item.Position = input.Position
	item.CoverImageURL = strings.TrimSpace(input.CoverImageURL)
	item.CategoryID = normalizeCategoryID(input.CategoryID)
	item.ShowAuthor = input.ShowAuthor
	item.MetaTitle = strings.TrimSpace(input.MetaTitle)
	item.MetaDescription = strings.TrimSpace(input.MetaDescription)
	item.MetaKeywords = strings.TrimSpace(input.MetaKeywords)
	item.OGImageURL = strings.TrimSpace(input.OGImageURL)
	item.CanonicalURL = strings.TrimSpace(input.CanonicalURL)
	item.Robots = strings.TrimSpace(input.Robots)
	if item.Robots == "" {
		item.Robots = constants.AnnouncementRobotsDefault
	}

	item.Status, item.PublishedAt = s.resolvePublication(status, input.PublishedAt, item.PublishedAt)
	if item.Status == constants.AnnouncementStatusScheduled && item.PublishedAt == nil {
		return ErrPublishedAtRequired
	}
	return nil
}

// applyContent markdown 模式每次保存重新渲染，html 模式清洗后保存
func (s *AnnouncementService) applyContent(item *models.Announcement, markdown, rawHTML string) error {
	if item.EditorMode == constants.EditorModeHTML {
		item.ContentMarkdown = ""
		item.ContentHTML = s.renderer.Sanitize(rawHTML)
		return nil
	}
	rendered, err := s.renderer.RenderMarkdown(markdown)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	item.ContentMarkdown = markdown
	item.ContentHTML = rendered
	return nil
}

// resolvePublication 请求发布且无发布时间时取当前时间（更新时保留已有值），未来时间强制为定时
func (s *AnnouncementService) resolvePublication(status string, requested, existing *time.Time) (string, *time.Time) {
	now := s.now()
	var publishedAt *time.Time
	if requested != nil {
		value := requested.UTC()
		publishedAt = &value
	}
	if status == constants.AnnouncementStatusPublished && publishedAt == nil {
		if existing != nil {
			value := existing.UTC()
			publishedAt = &value
		} else {
			publishedAt = &now
		}
	}
	if publishedAt != nil && publishedAt.After(now) {
		status = constants.AnnouncementStatusScheduled
	}
	return status, publishedAt
}

func (s *AnnouncementService) checkCategory(categoryID *uint) error {
	if categoryID == nil || *categoryID == 0 || s.categoryRepo == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(*categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func normalizeCategoryID(categoryID *uint) *uint {
	if categoryID == nil || *categoryID == 0 {
		return nil
	}
	value := *categoryID
	return &value
}

// afterSave 进入已发布状态时触发通知，通知失败不影响保存结果
func (s *AnnouncementService) afterSave(ctx context.Context, item *models.Announcement, previousStatus string) {
	if item.Status != constants.AnnouncementStatusPublished || previousStatus == constants.AnnouncementStatusPublished {
		return
	}
	logger.Infow("announcement_published", "announcement_id", item.ID, "previous_status", previousStatus)
	if s.notifier != nil {
		s.notifier.NotifyPublished(ctx, item.ID)
	}
}

// Delete 删除公告（软删除，slug 仍保留占用）
func (s *AnnouncementService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// Duplicate 复制公告为草稿
func (s *AnnouncementService) Duplicate(id uint, authorID uint) (*models.Announcement, error) {
	source, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	title := source.Title + constants.DuplicateTitleSuffix
	slug, err := resolveSlug("", title, slugFallbackPrefix, nil, s.repo.CountBySlug)
	if err != nil {
		return nil, err
	}
	copied := models.Announcement{
		Title:           title,
		Slug:            slug,
		Excerpt:         source.Excerpt,
		EditorMode:      source.EditorMode,
		ContentMarkdown: source.ContentMarkdown,
		ContentHTML:     source.ContentHTML,
		Status:          constants.AnnouncementStatusDraft,
		Featured:        source.Featured,
		Position:        source.Position,
		CoverImageURL:   source.CoverImageURL,
		CategoryID:      normalizeCategoryID(source.CategoryID),
		AuthorID:        source.AuthorID,
		ShowAuthor:      source.ShowAuthor,
		MetaTitle:       source.MetaTitle,
		MetaDescription: source.MetaDescription,
		MetaKeywords:    source.MetaKeywords,
		OGImageURL:      source.OGImageURL,
		CanonicalURL:    source.CanonicalURL,
		Robots:          source.Robots,
	}
	if authorID != 0 {
		author := authorID
		copied.AuthorID = &author
	}
	if err := s.repo.Create(&copied); err != nil {
		return nil, err
	}
	return s.Get(copied.ID)
}

// TogglePublish 已发布切换为草稿，其它状态切换为发布
func (s *AnnouncementService) TogglePublish(ctx context.Context, id uint) (*models.Announcement, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.Status == constants.AnnouncementStatusPublished {
		return s.transition(ctx, item, constants.AnnouncementStatusDraft)
	}
	return s.transition(ctx, item, constants.AnnouncementStatusPublished)
}

// Publish 立即发布（已有未来发布时间时转为定时）
func (s *AnnouncementService) Publish(ctx context.Context, id uint) (*models.Announcement, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, item, constants.AnnouncementStatusPublished)
}

// Unpublish 撤回为草稿
func (s *AnnouncementService) Unpublish(ctx context.Context, id uint) (*models.Announcement, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, item, constants.AnnouncementStatusDraft)
}

// Archive 归档
func (s *AnnouncementService) Archive(ctx context.Context, id uint) (*models.Announcement, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, item, constants.AnnouncementStatusArchived)
}

func (s *AnnouncementService) transition(ctx context.Context, item *models.Announcement, target string) (*models.Announcement, error) {
	previous := item.Status
	item.Status = target
	if target == constants.AnnouncementStatusPublished {
		item.Status, item.PublishedAt = s.resolvePublication(target, item.PublishedAt, nil)
	}
	item.Category = nil
	item.Author = nil
	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	s.afterSave(ctx, item, previous)
	return s.Get(item.ID)
}

// Reorder 批量更新排序
func (s *AnnouncementService) Reorder(positions map[uint]int) error {
	for id, position := range positions {
		if id == 0 || position < 0 {
			return ErrPositionInvalid
		}
	}
	return s.repo.UpdatePositions(positions)
}

// RemoveCover 移除封面图
func (s *AnnouncementService) RemoveCover(id uint) (*models.Announcement, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.CoverImageURL == "" {
		return item, nil
	}
	item.CoverImageURL = ""
	item.Category = nil
	item.Author = nil
	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	return s.Get(id)
}
