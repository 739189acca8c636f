package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
	now  func() time.Time
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo, now: models.NowUTC}
}

// CreateCategoryInput 创建/更新分类输入
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description string
	Color       string
	Icon        string
	Position    int
	IsActive    bool
}

// ValidHexColor 是否为 #RRGGBB
func ValidHexColor(color string) bool {
	return hexColorPattern.MatchString(color)
}

// List 获取分类列表（含已发布公告数）
func (s *CategoryService) List(search string) ([]models.AnnouncementCategory, error) {
	return s.repo.List(repository.CategoryListFilter{
		Search:        search,
		WithPublished: true,
		PublishedAsOf: s.now(),
	})
}

// Get 获取分类
func (s *CategoryService) Get(id uint) (*models.AnnouncementCategory, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input CreateCategoryInput) (*models.AnnouncementCategory, error) {
	category := &models.AnnouncementCategory{}
	if err := s.apply(category, input, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CreateCategoryInput) (*models.AnnouncementCategory, error) {
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(category, input, &id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) apply(category *models.AnnouncementCategory, input CreateCategoryInput, excludeID *uint) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrNameRequired
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = constants.CategoryColorDefault
	}
	if !ValidHexColor(color) {
		return ErrColorInvalid
	}
	if input.Position < 0 {
		return ErrPositionInvalid
	}
	slug, err := resolveSlug(requestedSlug(input.Slug, category.Slug, excludeID), name, "category", excludeID, s.repo.CountBySlug)
	if err != nil {
		return err
	}

	category.Name = name
	category.Slug = slug
	category.Description = strings.TrimSpace(input.Description)
	category.Color = strings.ToLower(color)
	category.Icon = strings.TrimSpace(input.Icon)
	category.Position = input.Position
	category.IsActive = input.IsActive
	return nil
}

// Reorder 批量更新分类排序
func (s *CategoryService) Reorder(positions map[uint]int) error {
	for id, position := range positions {
		if id == 0 || position < 0 {
			return ErrPositionInvalid
		}
	}
	return s.repo.UpdatePositions(positions)
}

// Delete 删除分类，其公告保留但不再归属任何分类
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}
