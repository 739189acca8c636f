package models

import (
	"time"

	"github.com/dujiao-next/announcements/internal/constants"

	"gorm.io/gorm"
)

// Announcement 公告表
type Announcement struct {
	ID              uint                  `gorm:"primarykey" json:"id"`                                          // 主键
	Title           string                `gorm:"type:varchar(255);not null" json:"title"`                       // 标题
	Slug            string                `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`            // 唯一标识（含软删除行）
	Excerpt         string                `gorm:"type:text" json:"excerpt"`                                      // 摘要
	EditorMode      string                `gorm:"type:varchar(16);default:'markdown'" json:"editor_mode"`        // 编辑模式 markdown/html
	ContentMarkdown string                `gorm:"type:text" json:"content_markdown"`                             // Markdown 源文
	ContentHTML     string                `gorm:"type:text" json:"content_html"`                                 // 渲染后的 HTML
	Status          string                `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"` // 状态
	PublishedAt     *time.Time            `gorm:"index" json:"published_at"`                                     // 发布时间
	Featured        bool                  `gorm:"default:false;index" json:"featured"`                           // 是否置顶
	Position        int                   `gorm:"default:0;index" json:"position"`                               // 排序
	CoverImageURL   string                `gorm:"type:varchar(500)" json:"cover_image_url"`                      // 封面图
	CategoryID      *uint                 `gorm:"index" json:"category_id"`                                      // 分类（可空）
	AuthorID        *uint                 `gorm:"index" json:"author_id"`                                        // 作者（可空）
	ShowAuthor      bool                  `gorm:"not null" json:"show_author"`                                   // 是否展示作者
	MetaTitle       string                `gorm:"type:varchar(255)" json:"meta_title"`                           // SEO 标题
	MetaDescription string                `gorm:"type:varchar(500)" json:"meta_description"`                     // SEO 描述
	MetaKeywords    string                `gorm:"type:varchar(255)" json:"meta_keywords"`                        // SEO 关键词
	OGImageURL      string                `gorm:"type:varchar(500)" json:"og_image_url"`                         // OG 图片
	CanonicalURL    string                `gorm:"type:varchar(500)" json:"canonical_url"`                        // Canonical 链接
	Robots          string                `gorm:"type:varchar(64);default:'index,follow'" json:"robots"`         // robots 指令
	ViewsCount      int64                 `gorm:"not null;default:0" json:"views_count"`                         // 浏览计数
	LikesCount      int64                 `gorm:"not null;default:0" json:"likes_count"`                         // 点赞计数
	Category        *AnnouncementCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`               // 分类
	Author          *Admin                `gorm:"foreignKey:AuthorID" json:"author,omitempty"`                   // 作者
	CreatedAt       time.Time             `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time             `json:"updated_at"`                                                    // 更新时间
	DeletedAt       gorm.DeletedAt        `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (Announcement) TableName() string {
	return "announcements"
}

// IsPublishedAt 判断在给定时刻是否对外可见
func (a *Announcement) IsPublishedAt(now time.Time) bool {
	if a == nil || a.Status != constants.AnnouncementStatusPublished || a.PublishedAt == nil {
		return false
	}
	return !a.PublishedAt.After(now)
}
