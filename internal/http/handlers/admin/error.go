package admin

import (
	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondMapped(c *gin.Context, err error, rules []handlershared.MappedError, fallbackCode int, fallbackKey string) {
	handlershared.RespondWithMappedError(c, err, rules, fallbackCode, fallbackKey)
}
