package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/dujiao-next/announcements/internal/constants"
)

// VisitorIdentity 访客身份（IP 仅以哈希形式存在）
type VisitorIdentity struct {
	UserID   *uint
	IPHash   string
	CookieID string
}

// Anonymous 是否为匿名身份
func (i VisitorIdentity) Anonymous() bool {
	return i.UserID == nil || *i.UserID == 0
}

// Empty 是否无法识别身份
func (i VisitorIdentity) Empty() bool {
	return i.Anonymous() && i.IPHash == ""
}

// VisitorRequest 请求层传入的原始访客信息
type VisitorRequest struct {
	IP        string
	UserAgent string
	UserID    uint
	CookieID  string
	Referrer  string
}

// HashValue 计算 SHA-256 十六进制摘要，空值返回空字符串
func HashValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])
}

// ResolveIdentity 按点赞资格模式解析访客身份
func ResolveIdentity(rawIP string, userID uint, cookieID, likesMode string) VisitorIdentity {
	identity := VisitorIdentity{CookieID: strings.TrimSpace(cookieID)}
	ipHash := HashValue(rawIP)
	var uid *uint
	if userID != 0 {
		value := userID
		uid = &value
	}

	switch likesMode {
	case constants.LikesModeAuthenticated:
		identity.UserID = uid
	case constants.LikesModeIP:
		identity.IPHash = ipHash
	default:
		if uid != nil {
			identity.UserID = uid
		} else {
			identity.IPHash = ipHash
		}
	}
	return identity
}

// resolveViewIdentity 浏览身份：登录用户按用户，匿名按 IP 哈希，两者均保留以便统计去重
func resolveViewIdentity(req VisitorRequest) VisitorIdentity {
	identity := VisitorIdentity{
		IPHash:   HashValue(req.IP),
		CookieID: strings.TrimSpace(req.CookieID),
	}
	if req.UserID != 0 {
		value := req.UserID
		identity.UserID = &value
	}
	return identity
}
