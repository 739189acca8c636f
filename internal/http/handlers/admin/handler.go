package admin

import "github.com/dujiao-next/announcements/internal/provider"

// Handler 公告后台：内容、分类、统计、设置与权限管理
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
