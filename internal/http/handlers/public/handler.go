package public

import "github.com/dujiao-next/announcements/internal/provider"

// Handler 前台公告、订阅源与访客互动接口
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
