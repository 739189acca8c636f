package repository

import (
	"time"

	"github.com/dujiao-next/announcements/internal/models"

	"gorm.io/gorm"
)

// EngagementRepository 浏览与点赞事件数据访问接口
type EngagementRepository interface {
	WithTx(tx *gorm.DB) EngagementRepository
	Transaction(fn func(tx *gorm.DB) error) error
	HasViewSince(announcementID uint, userID *uint, ipHash string, since time.Time) (bool, error)
	CreateView(view *models.AnnouncementView) error
	FindLike(announcementID uint, userID *uint, ipHash string) (*models.AnnouncementLike, error)
	CreateLike(like *models.AnnouncementLike) error
	DeleteLike(id uint) error
	CountViews(announcementID uint) (int64, error)
	CountLikes(announcementID uint) (int64, error)
}

// GormEngagementRepository GORM 实现
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository 创建互动事件仓库
func NewEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormEngagementRepository) WithTx(tx *gorm.DB) EngagementRepository {
	if tx == nil {
		return r
	}
	return &GormEngagementRepository{db: tx}
}

// Transaction 执行事务
func (r *GormEngagementRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// identityScope 按身份过滤：有用户 ID 时按用户，否则按 IP 哈希
func identityScope(query *gorm.DB, userID *uint, ipHash string) *gorm.DB {
	if userID != nil && *userID != 0 {
		return query.Where("user_id = ?", *userID)
	}
	return query.Where("ip_hash = ?", ipHash)
}

// HasViewSince 判断身份在指定时间之后是否已有浏览记录
func (r *GormEngagementRepository) HasViewSince(announcementID uint, userID *uint, ipHash string, since time.Time) (bool, error) {
	var count int64
	query := r.db.Model(&models.AnnouncementView{}).
		Where("announcement_id = ? AND viewed_at >= ?", announcementID, since)
	if err := identityScope(query, userID, ipHash).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateView 写入浏览记录
func (r *GormEngagementRepository) CreateView(view *models.AnnouncementView) error {
	return r.db.Create(view).Error
}

// FindLike 查找身份对应的点赞记录
func (r *GormEngagementRepository) FindLike(announcementID uint, userID *uint, ipHash string) (*models.AnnouncementLike, error) {
	query := r.db.Where("announcement_id = ?", announcementID)
	return firstOrNil[models.AnnouncementLike](identityScope(query, userID, ipHash).Order("id ASC"))
}

// CreateLike 写入点赞记录
func (r *GormEngagementRepository) CreateLike(like *models.AnnouncementLike) error {
	return r.db.Create(like).Error
}

// DeleteLike 删除点赞记录
func (r *GormEngagementRepository) DeleteLike(id uint) error {
	return r.db.Delete(&models.AnnouncementLike{}, id).Error
}

// CountViews 统计公告浏览事件数（用于计数器一致性校验）
func (r *GormEngagementRepository) CountViews(announcementID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.AnnouncementView{}).
		Where("announcement_id = ?", announcementID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountLikes 统计公告点赞事件数（用于计数器一致性校验）
func (r *GormEngagementRepository) CountLikes(announcementID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.AnnouncementLike{}).
		Where("announcement_id = ?", announcementID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
