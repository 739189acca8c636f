package admin

import (
	"context"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

// AnnouncementRequest 创建/更新公告请求
type AnnouncementRequest struct {
	Title           string     `json:"title" binding:"required,max=255"`
	Slug            string     `json:"slug" binding:"omitempty,max=255,slug"`
	Excerpt         string     `json:"excerpt"`
	EditorMode      string     `json:"editor_mode" binding:"omitempty,oneof=markdown html"`
	ContentMarkdown string     `json:"content_markdown"`
	ContentHTML     string     `json:"content_html"`
	Status          string     `json:"status" binding:"omitempty,oneof=draft published scheduled archived"`
	PublishedAt     *time.Time `json:"published_at"`
	Featured        bool       `json:"featured"`
	Position        int        `json:"position" binding:"min=0"`
	CoverImageURL   string     `json:"cover_image_url" binding:"omitempty,max=500"`
	CategoryID      *uint      `json:"category_id"`
	ShowAuthor      *bool      `json:"show_author"`
	MetaTitle       string     `json:"meta_title" binding:"omitempty,max=255"`
	MetaDescription string     `json:"meta_description" binding:"omitempty,max=500"`
	MetaKeywords    string     `json:"meta_keywords" binding:"omitempty,max=255"`
	OGImageURL      string     `json:"og_image_url" binding:"omitempty,max=500"`
	CanonicalURL    string     `json:"canonical_url" binding:"omitempty,max=500"`
	Robots          string     `json:"robots" binding:"omitempty,max=64"`
}

func (r AnnouncementRequest) toInput() service.AnnouncementInput {
	showAuthor := true
	if r.ShowAuthor != nil {
		showAuthor = *r.ShowAuthor
	}
	return service.AnnouncementInput{
		Title:           r.Title,
		Slug:            r.Slug,
		Excerpt:         r.Excerpt,
		EditorMode:      r.EditorMode,
		ContentMarkdown: r.ContentMarkdown,
		ContentHTML:     r.ContentHTML,
		Status:          r.Status,
		PublishedAt:     r.PublishedAt,
		Featured:        r.Featured,
		Position:        r.Position,
		CoverImageURL:   r.CoverImageURL,
		CategoryID:      r.CategoryID,
		ShowAuthor:      showAuthor,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		MetaKeywords:    r.MetaKeywords,
		OGImageURL:      r.OGImageURL,
		CanonicalURL:    r.CanonicalURL,
		Robots:          r.Robots,
	}
}

// PositionItem 排序项
type PositionItem struct {
	ID       uint `json:"id" binding:"required"`
	Position int  `json:"position" binding:"min=0"`
}

// ReorderRequest 批量排序请求
type ReorderRequest struct {
	Positions []PositionItem `json:"positions" binding:"required,min=1,dive"`
}

func (r ReorderRequest) toMap() map[uint]int {
	positions := make(map[uint]int, len(r.Positions))
	for _, item := range r.Positions {
		positions[item.ID] = item.Position
	}
	return positions
}

// ListAnnouncements 后台公告列表
func (h *Handler) ListAnnouncements(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	input := service.AnnouncementListInput{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		input.CategoryID = uint(categoryID)
	}
	if raw := strings.TrimSpace(c.Query("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		input.Featured = &featured
	}

	items, total, err := h.AnnouncementService.List(input)
	if err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetAnnouncement 公告详情
func (h *Handler) GetAnnouncement(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.AnnouncementService.Get(id)
	if err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_fetch_failed")
		return
	}
	response.Success(c, item)
}

// CreateAnnouncement 创建公告，当前管理员为作者
func (h *Handler) CreateAnnouncement(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.AnnouncementService.Create(c.Request.Context(), req.toInput(), adminID)
	if err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_create_failed")
		return
	}
	logger.Infow("admin_announcement_created",
		"admin_id", adminID,
		"announcement_id", item.ID,
		"status", item.Status,
	)
	response.Success(c, item)
}

// UpdateAnnouncement 更新公告
func (h *Handler) UpdateAnnouncement(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.AnnouncementService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_update_failed")
		return
	}
	response.Success(c, item)
}

// DeleteAnnouncement 删除公告（软删除）
func (h *Handler) DeleteAnnouncement(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.AnnouncementService.Delete(id); err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_delete_failed")
		return
	}
	logger.Infow("admin_announcement_deleted",
		"operator_admin_id", currentAdminID(c),
		"announcement_id", id,
	)
	response.Success(c, nil)
}

// DuplicateAnnouncement 复制为草稿
func (h *Handler) DuplicateAnnouncement(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.AnnouncementService.Duplicate(id, currentAdminID(c))
	if err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_create_failed")
		return
	}
	response.Success(c, item)
}

// TogglePublishAnnouncement 发布/撤回切换
func (h *Handler) TogglePublishAnnouncement(c *gin.Context) {
	h.transitionAnnouncement(c, h.AnnouncementService.TogglePublish)
}

// PublishAnnouncement 发布
func (h *Handler) PublishAnnouncement(c *gin.Context) {
	h.transitionAnnouncement(c, h.AnnouncementService.Publish)
}

// UnpublishAnnouncement 撤回为草稿
func (h *Handler) UnpublishAnnouncement(c *gin.Context) {
	h.transitionAnnouncement(c, h.AnnouncementService.Unpublish)
}

// ArchiveAnnouncement 归档
func (h *Handler) ArchiveAnnouncement(c *gin.Context) {
	h.transitionAnnouncement(c, h.AnnouncementService.Archive)
}

func (h *Handler) transitionAnnouncement(c *gin.Context, action func(ctx context.Context, id uint) (*models.Announcement, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := action(c.Request.Context(), id)
	if err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_update_failed")
		return
	}
	logger.Infow("admin_announcement_transition",
		"operator_admin_id", currentAdminID(c),
		"announcement_id", item.ID,
		"status", item.Status,
	)
	response.Success(c, item)
}

// RemoveAnnouncementCover 移除封面
func (h *Handler) RemoveAnnouncementCover(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.AnnouncementService.RemoveCover(id)
	if err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_update_failed")
		return
	}
	response.Success(c, item)
}

// PreviewAnnouncement 后台预览（不受发布状态限制，不计浏览）
func (h *Handler) PreviewAnnouncement(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	detail, err := h.PublicAnnouncementService.Preview(id)
	if err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_fetch_failed")
		return
	}
	response.Success(c, detail)
}

// ReorderAnnouncements 批量更新排序
func (h *Handler) ReorderAnnouncements(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AnnouncementService.Reorder(req.toMap()); err != nil {
		respondMapped(c, err, handlershared.AnnouncementErrorRules, response.CodeInternal, "error.announcement_update_failed")
		return
	}
	response.Success(c, nil)
}
