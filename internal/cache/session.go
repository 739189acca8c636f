package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dujiao-next/announcements/internal/models"
)

const sessionCacheTTL = 10 * time.Minute

// SessionKind 会话主体类型
type SessionKind string

const (
	SessionAdmin SessionKind = "admin"
	SessionUser  SessionKind = "user"
)

// Session 鉴权快照，命中时中间件无需查库
type Session struct {
	Kind          SessionKind `json:"kind"`
	SubjectID     uint        `json:"subject_id"`
	Active        bool        `json:"active"`
	IsSuper       bool        `json:"is_super"`
	Version       uint64      `json:"version"`
	InvalidBefore int64       `json:"invalid_before"` // Unix 秒，0 表示未设置
}

func sessionKey(kind SessionKind, id uint) string {
	return fmt.Sprintf("auth:%s:%d", kind, id)
}

func newSession(kind SessionKind, id uint, fields models.SessionFields) *Session {
	s := &Session{Kind: kind, SubjectID: id, Active: true, Version: fields.TokenVersion}
	if fields.TokenInvalidBefore != nil {
		s.InvalidBefore = fields.TokenInvalidBefore.Unix()
	}
	return s
}

// AdminSession 管理员快照
func AdminSession(admin *models.Admin) *Session {
	if admin == nil {
		return nil
	}
	s := newSession(SessionAdmin, admin.ID, admin.SessionFields)
	s.IsSuper = admin.IsSuper
	return s
}

// UserSession 读者快照，禁用账号 Active 为 false
func UserSession(user *models.User) *Session {
	if user == nil {
		return nil
	}
	s := newSession(SessionUser, user.ID, user.SessionFields)
	s.Active = user.IsActive()
	return s
}

// LoadSession 读取快照
func LoadSession(ctx context.Context, kind SessionKind, id uint) (*Session, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var s Session
	hit, err := GetJSON(ctx, sessionKey(kind, id), &s)
	if err != nil || !hit {
		return nil, false, err
	}
	return &s, true, nil
}

// StoreSession 写入快照，账号变更（登录、改密）后调用
func StoreSession(ctx context.Context, s *Session) error {
	if s == nil || s.SubjectID == 0 {
		return nil
	}
	return SetJSON(ctx, sessionKey(s.Kind, s.SubjectID), s, sessionCacheTTL)
}

// Accepts Token 版本一致且签发不早于吊销时间
func (s *Session) Accepts(tokenVersion uint64, issuedAtUnix int64) bool {
	if s == nil || s.Version != tokenVersion {
		return false
	}
	return s.InvalidBefore <= 0 || issuedAtUnix >= s.InvalidBefore
}
