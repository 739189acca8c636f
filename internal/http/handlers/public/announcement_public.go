package public

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAnnouncements 前台公告列表，支持分类与关键词
func (h *Handler) ListAnnouncements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := h.PublicAnnouncementService.List(service.PublicListInput{
		Page:         page,
		CategorySlug: strings.TrimSpace(c.Query("category")),
		Query:        strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		respondPublicError(c, err, "error.announcement_fetch_failed")
		return
	}
	response.SuccessWithPage(c, result.Items, handlershared.BuildPagination(result.Page, result.PageSize, result.Total))
}

// SearchAnnouncements 即时搜索，空关键词返回空列表
func (h *Handler) SearchAnnouncements(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Success(c, []models.Announcement{})
		return
	}
	items, err := h.PublicAnnouncementService.Search(query, strings.TrimSpace(c.Query("category")))
	if err != nil {
		respondPublicError(c, err, "error.announcement_fetch_failed")
		return
	}
	response.Success(c, items)
}

// LatestAnnouncements 最新公告小组件
func (h *Handler) LatestAnnouncements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	featuredOnly, _ := strconv.ParseBool(c.DefaultQuery("featured", "false"))
	items, err := h.PublicAnnouncementService.Latest(service.LatestInput{
		Limit:        limit,
		CategorySlug: strings.TrimSpace(c.Query("category")),
		FeaturedOnly: featuredOnly,
	})
	if err != nil {
		respondPublicError(c, err, "error.announcement_fetch_failed")
		return
	}
	response.Success(c, items)
}

// ListCategories 启用分类及已发布数量
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.PublicAnnouncementService.Categories()
	if err != nil {
		respondPublicError(c, err, "error.category_fetch_failed")
		return
	}
	response.Success(c, categories)
}

// ShowAnnouncement 公告详情，按访客身份记录浏览
func (h *Handler) ShowAnnouncement(c *gin.Context) {
	cookieID := handlershared.EnsureVisitorCookie(c, h.Config.Announcements.VisitorCookieSecure)
	detail, err := h.PublicAnnouncementService.Show(c.Param("slug"), handlershared.VisitorRequest(c, cookieID))
	if err != nil {
		respondPublicError(c, err, "error.announcement_fetch_failed")
		return
	}
	response.Success(c, detail)
}

// ToggleLike 切换点赞
func (h *Handler) ToggleLike(c *gin.Context) {
	cookieID := handlershared.EnsureVisitorCookie(c, h.Config.Announcements.VisitorCookieSecure)
	result, err := h.PublicAnnouncementService.ToggleLike(c.Param("slug"), handlershared.VisitorRequest(c, cookieID))
	if err != nil {
		if policyErr, ok := service.AsPolicyError(err); ok {
			if policyErr.RequiresAuth {
				respondError(c, response.CodeUnauthorized, "error.like_requires_auth", nil)
				return
			}
			respondError(c, response.CodeForbidden, "error.likes_disabled", nil)
			return
		}
		if errors.Is(err, service.ErrIdentityMissing) {
			respondError(c, response.CodeBadRequest, "error.identity_missing", nil)
			return
		}
		respondPublicError(c, err, "error.like_failed")
		return
	}
	response.Success(c, result)
}

// RSSFeed RSS 2.0 输出
func (h *Handler) RSSFeed(c *gin.Context) {
	body, err := h.FeedService.BuildRSS()
	if err != nil {
		respondPublicError(c, err, "error.feed_failed")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(body))
}
