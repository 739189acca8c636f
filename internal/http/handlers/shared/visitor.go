package shared

import (
	"net/http"
	"strings"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EnsureVisitorCookie 读取访客 Cookie，缺失时签发新的 UUID
func EnsureVisitorCookie(c *gin.Context, secure bool) string {
	if value, err := c.Cookie(constants.VisitorCookieName); err == nil {
		if parsed, err := uuid.Parse(strings.TrimSpace(value)); err == nil {
			return parsed.String()
		}
	}
	value := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.VisitorCookieName, value, constants.VisitorCookieMaxAge, "/", "", secure, true)
	return value
}

// VisitorRequest 从请求构建访客信息，user_id 由可选用户鉴权中间件写入
func VisitorRequest(c *gin.Context, cookieID string) service.VisitorRequest {
	return service.VisitorRequest{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		UserID:    OptionalContextID(c, "user_id"),
		CookieID:  cookieID,
		Referrer:  c.Request.Referer(),
	}
}
