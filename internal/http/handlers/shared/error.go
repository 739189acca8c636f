package shared

import (
	"errors"

	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/i18n"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c != nil {
		if id := c.GetString("request_id"); id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按请求语言翻译 key 后返回错误，附带原始错误时记录日志
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 直接使用已翻译的消息
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error", "code", code, "message", msg, "error", err)
	}
	response.Error(c, code, msg)
}

// RespondPasswordError 密码策略错误按具体规则提示，其余按映射规则处理
func RespondPasswordError(c *gin.Context, err error, fallbackKey string) {
	var perr service.PasswordPolicyError
	if errors.As(err, &perr) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), perr.Key(), perr.Args()...)
		RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	RespondWithMappedError(c, err, PasswordErrorRules, response.CodeInternal, fallbackKey)
}
