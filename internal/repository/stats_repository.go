package repository

import (
	"fmt"
	"time"

	"github.com/dujiao-next/announcements/internal/models"

	"gorm.io/gorm"
)

// StatsRepository 公告统计聚合查询接口
// 说明：仅聚合事件数据，不承载补零、周期换算等业务规则。
type StatsRepository interface {
	CountViewsByDay(announcementID uint, startAt, endAt time.Time) ([]DayCountRow, error)
	CountLikesByDay(announcementID uint, startAt, endAt time.Time) ([]DayCountRow, error)
	CountUniqueViewers(announcementID uint, startAt, endAt time.Time) (int64, error)
	CountViewsBetween(announcementID uint, startAt, endAt time.Time) (int64, error)
	TopReferrers(announcementID uint, startAt, endAt time.Time, limit int) ([]ReferrerCountRow, error)
}

// GormStatsRepository GORM 统计实现
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓库
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// eventScope 事件时间窗口过滤，announcementID 为 0 时统计全部公告
func eventScope(query *gorm.DB, announcementID uint, timeColumn string, startAt, endAt time.Time) *gorm.DB {
	query = query.Where(timeColumn+" >= ? AND "+timeColumn+" < ?", startAt, endAt)
	if announcementID != 0 {
		query = query.Where("announcement_id = ?", announcementID)
	}
	return query
}

func (r *GormStatsRepository) countByDay(model interface{}, announcementID uint, timeColumn string, startAt, endAt time.Time) ([]DayCountRow, error) {
	var rows []DayCountRow
	dayExpr := fmt.Sprintf("CAST(date(%s) AS TEXT)", timeColumn)
	if err := eventScope(r.db.Model(model), announcementID, timeColumn, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Group(dayExpr).
		Order("day asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountViewsByDay 按日统计浏览事件
func (r *GormStatsRepository) CountViewsByDay(announcementID uint, startAt, endAt time.Time) ([]DayCountRow, error) {
	return r.countByDay(&models.AnnouncementView{}, announcementID, "viewed_at", startAt, endAt)
}

// CountLikesByDay 按日统计点赞事件
func (r *GormStatsRepository) CountLikesByDay(announcementID uint, startAt, endAt time.Time) ([]DayCountRow, error) {
	return r.countByDay(&models.AnnouncementLike{}, announcementID, "created_at", startAt, endAt)
}

// CountUniqueViewers 统计窗口内去重 IP 哈希数
func (r *GormStatsRepository) CountUniqueViewers(announcementID uint, startAt, endAt time.Time) (int64, error) {
	var total int64
	if err := eventScope(r.db.Model(&models.AnnouncementView{}), announcementID, "viewed_at", startAt, endAt).
		Where("ip_hash IS NOT NULL AND ip_hash <> ''").
		Select("COUNT(DISTINCT ip_hash)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountViewsBetween 统计窗口内浏览事件总数
func (r *GormStatsRepository) CountViewsBetween(announcementID uint, startAt, endAt time.Time) (int64, error) {
	var total int64
	if err := eventScope(r.db.Model(&models.AnnouncementView{}), announcementID, "viewed_at", startAt, endAt).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// TopReferrers 统计窗口内来源排行
func (r *GormStatsRepository) TopReferrers(announcementID uint, startAt, endAt time.Time, limit int) ([]ReferrerCountRow, error) {
	if limit <= 0 {
		return []ReferrerCountRow{}, nil
	}
	var rows []ReferrerCountRow
	if err := eventScope(r.db.Model(&models.AnnouncementView{}), announcementID, "viewed_at", startAt, endAt).
		Select("referrer, COUNT(*) as total").
		Where("referrer IS NOT NULL AND referrer <> ''").
		Group("referrer").
		Order("total DESC, referrer ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
