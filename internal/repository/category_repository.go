package repository

import (
	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 公告分类数据访问接口
type CategoryRepository interface {
	List(filter CategoryListFilter) ([]models.AnnouncementCategory, error)
	GetByID(id uint) (*models.AnnouncementCategory, error)
	GetBySlug(slug string) (*models.AnnouncementCategory, error)
	Create(category *models.AnnouncementCategory) error
	Update(category *models.AnnouncementCategory) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	UpdatePositions(positions map[uint]int) error
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// List 分类列表（按排序与名称）
func (r *GormCategoryRepository) List(filter CategoryListFilter) ([]models.AnnouncementCategory, error) {
	var categories []models.AnnouncementCategory
	query := r.db.Model(&models.AnnouncementCategory{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	query = query.Scopes(matchAny(filter.Search, "name", "slug"))
	if err := query.Order("position ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	if !filter.WithPublished || len(categories) == 0 {
		return categories, nil
	}

	type countRow struct {
		CategoryID uint
		Total      int64
	}
	var rows []countRow
	if err := r.db.Model(&models.Announcement{}).
		Select("category_id, COUNT(*) as total").
		Where("category_id IS NOT NULL AND status = ? AND published_at IS NOT NULL AND published_at <= ?",
			constants.AnnouncementStatusPublished, filter.PublishedAsOf).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	for i := range categories {
		categories[i].PublishedCount = counts[categories[i].ID]
	}
	return categories, nil
}

// GetByID 根据 ID 获取分类
func (r *GormCategoryRepository) GetByID(id uint) (*models.AnnouncementCategory, error) {
	return firstOrNil[models.AnnouncementCategory](r.db, id)
}

// GetBySlug 根据 slug 获取分类
func (r *GormCategoryRepository) GetBySlug(slug string) (*models.AnnouncementCategory, error) {
	return firstOrNil[models.AnnouncementCategory](r.db.Where("slug = ?", slug))
}

// Create 创建分类
func (r *GormCategoryRepository) Create(category *models.AnnouncementCategory) error {
	return r.db.Create(category).Error
}

// Update 更新分类
func (r *GormCategoryRepository) Update(category *models.AnnouncementCategory) error {
	return r.db.Save(category).Error
}

// Delete 删除分类，关联公告的 category_id 置空
func (r *GormCategoryRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := NewAnnouncementRepository(tx).NullifyCategory(id); err != nil {
			return err
		}
		return tx.Delete(&models.AnnouncementCategory{}, id).Error
	})
}

// CountBySlug 统计 slug 数量（包含已软删除记录）
func (r *GormCategoryRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Unscoped().Model(&models.AnnouncementCategory{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdatePositions 批量更新分类排序
func (r *GormCategoryRepository) UpdatePositions(positions map[uint]int) error {
	if len(positions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for id, position := range positions {
			if err := tx.Model(&models.AnnouncementCategory{}).
				Where("id = ?", id).
				UpdateColumn("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
