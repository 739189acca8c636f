package models

import "time"

// AnnouncementLike 公告点赞记录
type AnnouncementLike struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                                                 // 主键
	AnnouncementID uint      `gorm:"not null;uniqueIndex:idx_ann_likes_item_user,priority:1;index" json:"announcement_id"` // 公告ID
	UserID         *uint     `gorm:"uniqueIndex:idx_ann_likes_item_user,priority:2" json:"user_id"`                        // 登录用户ID
	IPHash         string    `gorm:"type:varchar(64);index" json:"-"`                                                      // IP 哈希
	CookieID       string    `gorm:"type:varchar(64)" json:"-"`                                                            // 匿名访客 Cookie
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                                              // 点赞时间
	UpdatedAt      time.Time `json:"updated_at"`                                                                           // 更新时间
}

// TableName 指定表名
func (AnnouncementLike) TableName() string {
	return "announcement_likes"
}
