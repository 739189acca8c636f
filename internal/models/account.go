package models

import (
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"

	"gorm.io/gorm"
)

// SessionFields 两类账号共用的 Token 吊销字段
type SessionFields struct {
	TokenVersion       uint64     `gorm:"not null;default:0" json:"-"` // 递增后旧 Token 全部失效
	TokenInvalidBefore *time.Time `gorm:"index" json:"-"`              // 早于该时间签发的 Token 失效
	LastLoginAt        *time.Time `json:"last_login_at"`
}

// Revoke 吊销此前签发的所有 Token
func (s *SessionFields) Revoke(now time.Time) {
	s.TokenVersion++
	s.TokenInvalidBefore = &now
}

// Admin 后台账号，同时是公告作者
type Admin struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName  string `gorm:"default:''" json:"display_name"` // 署名，为空时用账号
	PasswordHash string `gorm:"not null" json:"-"`
	IsSuper      bool   `gorm:"not null;default:false;index" json:"is_super"` // 跳过 RBAC
	SessionFields
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}

// AuthorName 作者展示名
func (a *Admin) AuthorName() string {
	if a == nil {
		return ""
	}
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// User 前台读者账号，authenticated 点赞模式下用于识别身份
type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `gorm:"default:''" json:"display_name"`
	Locale       string `gorm:"default:'zh-CN'" json:"locale"`
	Status       string `gorm:"default:'active'" json:"status"` // active / disabled
	SessionFields
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsActive 被禁用的读者按游客处理
func (u *User) IsActive() bool {
	return u != nil && strings.EqualFold(strings.TrimSpace(u.Status), constants.UserStatusActive)
}
