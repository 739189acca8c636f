package admin

import (
	"strings"

	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 创建/更新分类请求
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"omitempty,max=255,slug"`
	Description string `json:"description"`
	Color       string `json:"color" binding:"omitempty,hexcolor6"`
	Icon        string `json:"icon" binding:"omitempty,max=100"`
	Position    int    `json:"position" binding:"min=0"`
	IsActive    *bool  `json:"is_active"`
}

func (r CategoryRequest) toInput() service.CreateCategoryInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.CreateCategoryInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Color:       r.Color,
		Icon:        r.Icon,
		Position:    r.Position,
		IsActive:    active,
	}
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(strings.TrimSpace(c.Query("search")))
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetCategory 分类详情
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	category, err := h.CategoryService.Get(id)
	if err != nil {
		respondMapped(c, err, handlershared.CategoryErrorRules, response.CodeInternal, "error.category_fetch_failed")
		return
	}
	response.Success(c, category)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		respondMapped(c, err, handlershared.CategoryErrorRules, response.CodeInternal, "error.category_create_failed")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Update(id, req.toInput())
	if err != nil {
		respondMapped(c, err, handlershared.CategoryErrorRules, response.CodeInternal, "error.category_update_failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondMapped(c, err, handlershared.CategoryErrorRules, response.CodeInternal, "error.category_delete_failed")
		return
	}
	response.Success(c, nil)
}

// ReorderCategories 批量更新分类排序
func (h *Handler) ReorderCategories(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CategoryService.Reorder(req.toMap()); err != nil {
		respondMapped(c, err, handlershared.CategoryErrorRules, response.CodeInternal, "error.category_update_failed")
		return
	}
	response.Success(c, nil)
}
