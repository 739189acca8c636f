package admin

import (
	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.RequireContextID(c, "admin_id", "error.admin_id_invalid", "error.admin_id_type_invalid")
}

// currentAdminID 仅用于日志与作者归属，缺失时为 0
func currentAdminID(c *gin.Context) uint {
	return handlershared.OptionalContextID(c, "admin_id")
}

func parseID(c *gin.Context) (uint, bool) {
	return handlershared.ParseUintParam(c, "id")
}
