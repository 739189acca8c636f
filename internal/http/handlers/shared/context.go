package shared

import (
	"github.com/dujiao-next/announcements/internal/http/response"

	"github.com/gin-gonic/gin"
)

type contextIDState int

const (
	contextIDOK contextIDState = iota
	contextIDMissing
	contextIDNegative
	contextIDWrongType
)

func readContextID(c *gin.Context, key string) (uint, contextIDState) {
	value, exists := c.Get(key)
	if !exists {
		return 0, contextIDMissing
	}
	switch v := value.(type) {
	case uint:
		return v, contextIDOK
	case int:
		if v < 0 {
			return 0, contextIDNegative
		}
		return uint(v), contextIDOK
	case float64:
		if v < 0 {
			return 0, contextIDNegative
		}
		return uint(v), contextIDOK
	default:
		return 0, contextIDWrongType
	}
}

// OptionalContextID 读取中间件写入的主体 ID，缺失或非法时返回 0
func OptionalContextID(c *gin.Context, key string) uint {
	id, state := readContextID(c, key)
	if state != contextIDOK {
		return 0
	}
	return id
}

// RequireContextID 读取必需的主体 ID，失败时直接写出错误响应
func RequireContextID(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	id, state := readContextID(c, key)
	switch state {
	case contextIDMissing:
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
	case contextIDNegative:
		RespondError(c, response.CodeBadRequest, invalidKey, nil)
	case contextIDWrongType:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
	default:
		return id, true
	}
	return 0, false
}
