package shared

import (
	"errors"

	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 业务错误到接口错误响应的映射
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondWithMappedError 命中规则时按规则响应，否则记录原始错误并返回兜底响应
func RespondWithMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// ConcatMappedErrors 合并多组映射规则
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// AnnouncementErrorRules 公告与分类写入类错误
var AnnouncementErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.announcement_not_found"},
	{Target: service.ErrTitleRequired, Code: response.CodeBadRequest, Key: "error.title_required"},
	{Target: service.ErrSlugExists, Code: response.CodeBadRequest, Key: "error.slug_exists"},
	{Target: service.ErrSlugInvalid, Code: response.CodeBadRequest, Key: "error.slug_invalid"},
	{Target: service.ErrStatusInvalid, Code: response.CodeBadRequest, Key: "error.status_invalid"},
	{Target: service.ErrEditorModeInvalid, Code: response.CodeBadRequest, Key: "error.editor_mode_invalid"},
	{Target: service.ErrPublishedAtRequired, Code: response.CodeBadRequest, Key: "error.published_at_required"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeBadRequest, Key: "error.category_not_found"},
	{Target: service.ErrCategoryInactive, Code: response.CodeBadRequest, Key: "error.category_inactive"},
	{Target: service.ErrPositionInvalid, Code: response.CodeBadRequest, Key: "error.position_invalid"},
}

// CategoryErrorRules 分类写入类错误
var CategoryErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrNameRequired, Code: response.CodeBadRequest, Key: "error.name_required"},
	{Target: service.ErrSlugExists, Code: response.CodeBadRequest, Key: "error.slug_exists"},
	{Target: service.ErrSlugInvalid, Code: response.CodeBadRequest, Key: "error.slug_invalid"},
	{Target: service.ErrColorInvalid, Code: response.CodeBadRequest, Key: "error.color_invalid"},
	{Target: service.ErrPositionInvalid, Code: response.CodeBadRequest, Key: "error.position_invalid"},
}

// PublicErrorRules 前台读取类错误
var PublicErrorRules = []MappedError{
	{Target: service.ErrAnnouncementsDisabled, Code: response.CodeNotFound, Key: "error.announcements_disabled"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.announcement_not_found"},
	{Target: service.ErrFeedDisabled, Code: response.CodeNotFound, Key: "error.feed_disabled"},
}

// PasswordErrorRules 密码与账号类错误
var PasswordErrorRules = []MappedError{
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Key: "error.password_weak"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_incorrect"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrEmailExists, Code: response.CodeBadRequest, Key: "error.email_exists"},
	{Target: service.ErrUsernameExists, Code: response.CodeBadRequest, Key: "error.username_exists"},
	{Target: service.ErrNameRequired, Code: response.CodeBadRequest, Key: "error.name_required"},
}
