package models

import "time"

// AnnouncementView 公告浏览记录（追加写入，去重由业务窗口控制）
type AnnouncementView struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                                                                            // 主键
	AnnouncementID uint      `gorm:"not null;index:idx_ann_views_item_time,priority:1;index:idx_ann_views_item_ip,priority:1" json:"announcement_id"` // 公告ID
	UserID         *uint     `gorm:"index" json:"user_id"`                                                                                            // 登录用户ID
	IPHash         string    `gorm:"type:varchar(64);index:idx_ann_views_item_ip,priority:2" json:"-"`                                                // IP 哈希
	UserAgentHash  string    `gorm:"type:varchar(64)" json:"-"`                                                                                       // UA 哈希
	Referrer       string    `gorm:"type:varchar(255)" json:"referrer"`                                                                               // 来源（截断 255）
	ViewedAt       time.Time `gorm:"not null;index:idx_ann_views_item_time,priority:2;index:idx_ann_views_item_ip,priority:3" json:"viewed_at"`       // 浏览时间
}

// TableName 指定表名
func (AnnouncementView) TableName() string {
	return "announcement_views"
}
