package public

import (
	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondPublicError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondWithMappedError(c, err, handlershared.PublicErrorRules, response.CodeInternal, fallbackKey)
}
