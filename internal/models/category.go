package models

import (
	"time"

	"gorm.io/gorm"
)

// AnnouncementCategory 公告分类表
type AnnouncementCategory struct {
	ID             uint           `gorm:"primarykey" json:"id"`                               // 主键
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`             // 名称
	Slug           string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"` // 唯一标识
	Description    string         `gorm:"type:text" json:"description"`                       // 描述
	Color          string         `gorm:"type:varchar(7);default:'#3b82f6'" json:"color"`     // 颜色 #RRGGBB
	Icon           string         `gorm:"type:varchar(100)" json:"icon"`                      // 图标标识
	Position       int            `gorm:"default:0;index" json:"position"`                    // 排序
	IsActive       bool           `gorm:"not null;index" json:"is_active"`                    // 是否启用
	PublishedCount int64          `gorm:"-" json:"published_count,omitempty"`                 // 已发布公告数（查询填充）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                         // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (AnnouncementCategory) TableName() string {
	return "announcement_categories"
}
