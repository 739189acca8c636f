package i18n

import (
	"fmt"
	"strings"

	"github.com/dujiao-next/announcements/internal/constants"

	"github.com/gin-gonic/gin"
)

const (
	localeHeader = "X-Locale"
	localeQuery  = "lang"
)

// ResolveLocale 解析请求语言（查询参数 > X-Locale > Accept-Language），无法识别时回退 zh-CN
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return constants.LocaleZhCN
	}
	candidates := []string{
		c.Query(localeQuery),
		c.GetHeader(localeHeader),
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag != "" {
			candidates = append(candidates, tag)
		}
	}
	for _, candidate := range candidates {
		if locale := NormalizeLocale(candidate); locale != "" {
			return locale
		}
	}
	return constants.LocaleZhCN
}

// NormalizeLocale 归一化语言标识，不支持时返回空字符串
func NormalizeLocale(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "_", "-")
	switch {
	case value == "zh-tw" || value == "zh-hk" || value == "zh-hant" || strings.HasPrefix(value, "zh-hant"):
		return constants.LocaleZhTW
	case strings.HasPrefix(value, "zh"):
		return constants.LocaleZhCN
	case strings.HasPrefix(value, "en"):
		return constants.LocaleEnUS
	}
	return ""
}

// T 翻译消息键，缺失时按支持语言顺序回退，最终返回键本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	for _, fallback := range constants.SupportedLocales {
		if msg, ok := messages[fallback][key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
