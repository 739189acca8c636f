package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnnouncementRepository 公告数据访问接口
type AnnouncementRepository interface {
	WithTx(tx *gorm.DB) AnnouncementRepository
	Transaction(fn func(tx *gorm.DB) error) error
	List(filter AnnouncementListFilter) ([]models.Announcement, int64, error)
	GetByID(id uint) (*models.Announcement, error)
	GetByIDForUpdate(id uint) (*models.Announcement, error)
	GetBySlug(slug string, onlyPublished bool, now time.Time) (*models.Announcement, error)
	Create(item *models.Announcement) error
	Update(item *models.Announcement) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	UpdatePositions(positions map[uint]int) error
	ListDueScheduled(now time.Time) ([]models.Announcement, error)
	PublishScheduled(id uint) (bool, error)
	ListRelated(item *models.Announcement, limit int, now time.Time) ([]models.Announcement, error)
	GetAdjacent(item *models.Announcement, now time.Time) (*models.Announcement, *models.Announcement, error)
	AdjustCounter(id uint, column string, delta int64) (int64, error)
	Count(status string) (int64, error)
	SumLikes() (int64, error)
	ListTop(column string, limit int) ([]models.Announcement, error)
	NullifyCategory(categoryID uint) error
}

// GormAnnouncementRepository GORM 实现
type GormAnnouncementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository 创建公告仓库
func NewAnnouncementRepository(db *gorm.DB) *GormAnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAnnouncementRepository) WithTx(tx *gorm.DB) AnnouncementRepository {
	if tx == nil {
		return r
	}
	return &GormAnnouncementRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAnnouncementRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// AnnouncementOrderClause 将排序模式映射为 SQL 排序子句
func AnnouncementOrderClause(order string) string {
	switch order {
	case constants.OrderPositionDate:
		return "position ASC, published_at DESC, id DESC"
	case constants.OrderDate:
		return "published_at DESC, id DESC"
	default:
		return "featured DESC, position ASC, published_at DESC, id DESC"
	}
}

func publishedScope(query *gorm.DB, now time.Time) *gorm.DB {
	return query.Where("announcements.status = ? AND announcements.published_at IS NOT NULL AND announcements.published_at <= ?",
		constants.AnnouncementStatusPublished, now)
}

func withRelations(query *gorm.DB) *gorm.DB {
	return query.Preload("Category").Preload("Author")
}

// List 公告列表
func (r *GormAnnouncementRepository) List(filter AnnouncementListFilter) ([]models.Announcement, int64, error) {
	var items []models.Announcement
	query := r.db.Model(&models.Announcement{})

	if filter.OnlyPublished {
		query = publishedScope(query, filter.Now)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("announcements.status = ?", status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("announcements.category_id = ?", filter.CategoryID)
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.Where("announcements.category_id IN (?)",
			r.db.Model(&models.AnnouncementCategory{}).Select("id").Where("slug = ?", slug))
	}
	if filter.Featured != nil {
		query = query.Where("announcements.featured = ?", *filter.Featured)
	}
	query = query.Scopes(matchAny(filter.Search, announcementSearchColumns...))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC, id DESC"
	}
	if filter.WithRelations {
		query = withRelations(query)
	}
	if err := query.Order(orderBy).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByID 根据 ID 获取公告（含分类与作者）
func (r *GormAnnouncementRepository) GetByID(id uint) (*models.Announcement, error) {
	return firstOrNil[models.Announcement](withRelations(r.db), id)
}

// GetByIDForUpdate 根据 ID 获取公告并加行锁
func (r *GormAnnouncementRepository) GetByIDForUpdate(id uint) (*models.Announcement, error) {
	return firstOrNil[models.Announcement](r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// GetBySlug 根据 slug 获取公告
func (r *GormAnnouncementRepository) GetBySlug(slug string, onlyPublished bool, now time.Time) (*models.Announcement, error) {
	query := withRelations(r.db).Where("slug = ?", slug)
	if onlyPublished {
		query = publishedScope(query, now)
	}
	return firstOrNil[models.Announcement](query)
}

// Create 创建公告
func (r *GormAnnouncementRepository) Create(item *models.Announcement) error {
	return r.db.Omit(clause.Associations).Create(item).Error
}

// Update 更新公告（计数器由互动记录单独维护，不随保存覆盖）
func (r *GormAnnouncementRepository) Update(item *models.Announcement) error {
	return r.db.Omit(clause.Associations, "views_count", "likes_count").Save(item).Error
}

// Delete 删除公告（软删除）
func (r *GormAnnouncementRepository) Delete(id uint) error {
	return r.db.Delete(&models.Announcement{}, id).Error
}

// CountBySlug 统计 slug 数量（包含已软删除记录）
func (r *GormAnnouncementRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Unscoped().Model(&models.Announcement{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdatePositions 批量更新排序
func (r *GormAnnouncementRepository) UpdatePositions(positions map[uint]int) error {
	if len(positions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for id, position := range positions {
			if err := tx.Model(&models.Announcement{}).
				Where("id = ?", id).
				UpdateColumn("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListDueScheduled 获取已到发布时间的定时公告
func (r *GormAnnouncementRepository) ListDueScheduled(now time.Time) ([]models.Announcement, error) {
	var items []models.Announcement
	if err := r.db.
		Where("status = ? AND published_at IS NOT NULL AND published_at <= ?", constants.AnnouncementStatusScheduled, now).
		Order("published_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// PublishScheduled 将定时公告切换为已发布，返回是否发生状态变更
func (r *GormAnnouncementRepository) PublishScheduled(id uint) (bool, error) {
	result := r.db.Model(&models.Announcement{}).
		Where("id = ? AND status = ?", id, constants.AnnouncementStatusScheduled).
		Update("status", constants.AnnouncementStatusPublished)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListRelated 获取同分类的其它已发布公告
func (r *GormAnnouncementRepository) ListRelated(item *models.Announcement, limit int, now time.Time) ([]models.Announcement, error) {
	if item == nil || item.CategoryID == nil || limit <= 0 {
		return []models.Announcement{}, nil
	}
	var items []models.Announcement
	query := publishedScope(r.db.Model(&models.Announcement{}), now).
		Where("category_id = ? AND id <> ?", *item.CategoryID, item.ID)
	if err := query.Order("published_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetAdjacent 获取按发布时间相邻的上一篇与下一篇
func (r *GormAnnouncementRepository) GetAdjacent(item *models.Announcement, now time.Time) (*models.Announcement, *models.Announcement, error) {
	if item == nil || item.PublishedAt == nil {
		return nil, nil, nil
	}
	var previous models.Announcement
	prevErr := publishedScope(r.db.Model(&models.Announcement{}), now).
		Where("published_at < ? AND id <> ?", *item.PublishedAt, item.ID).
		Order("published_at DESC, id DESC").
		First(&previous).Error
	if prevErr != nil && !errors.Is(prevErr, gorm.ErrRecordNotFound) {
		return nil, nil, prevErr
	}
	var next models.Announcement
	nextErr := publishedScope(r.db.Model(&models.Announcement{}), now).
		Where("published_at > ? AND id <> ?", *item.PublishedAt, item.ID).
		Order("published_at ASC, id ASC").
		First(&next).Error
	if nextErr != nil && !errors.Is(nextErr, gorm.ErrRecordNotFound) {
		return nil, nil, nextErr
	}
	var prevPtr, nextPtr *models.Announcement
	if prevErr == nil {
		prevPtr = &previous
	}
	if nextErr == nil {
		nextPtr = &next
	}
	return prevPtr, nextPtr, nil
}

// AdjustCounter 原子调整计数器并返回最新值，递减不会低于 0
func (r *GormAnnouncementRepository) AdjustCounter(id uint, column string, delta int64) (int64, error) {
	if column != "views_count" && column != "likes_count" {
		return 0, errors.New("unsupported counter column: " + column)
	}
	query := r.db.Model(&models.Announcement{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where(column+" >= ?", -delta)
	}
	if delta != 0 {
		if err := query.UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error; err != nil {
			return 0, err
		}
	}
	var value int64
	if err := r.db.Model(&models.Announcement{}).
		Where("id = ?", id).
		Select(column).
		Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}

// Count 按状态统计公告数量，状态为空时统计全部
func (r *GormAnnouncementRepository) Count(status string) (int64, error) {
	var count int64
	query := r.db.Model(&models.Announcement{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumLikes 汇总全部公告点赞数
func (r *GormAnnouncementRepository) SumLikes() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Announcement{}).
		Select("COALESCE(SUM(likes_count), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListTop 按计数器获取排行
func (r *GormAnnouncementRepository) ListTop(column string, limit int) ([]models.Announcement, error) {
	if column != "views_count" && column != "likes_count" {
		return nil, errors.New("unsupported ranking column: " + column)
	}
	if limit <= 0 {
		limit = constants.GlobalLeaderboardLimit
	}
	var items []models.Announcement
	if err := r.db.
		Select("id", "title", "slug", "status", "views_count", "likes_count", "published_at").
		Order(column + " DESC, id ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// NullifyCategory 解除公告与分类的关联
func (r *GormAnnouncementRepository) NullifyCategory(categoryID uint) error {
	if categoryID == 0 {
		return nil
	}
	return r.db.Unscoped().Model(&models.Announcement{}).
		Where("category_id = ?", categoryID).
		UpdateColumn("category_id", nil).Error
}
