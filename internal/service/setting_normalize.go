package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"

	"github.com/spf13/cast"
)

// normalizeSettingValueByKey 已知键按结构体往返一次，丢弃未知字段并修正越界值
func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeyAnnouncementConfig:
		return AnnouncementSettingToMap(announcementSettingFromJSON(value, AnnouncementDefaultSetting()))
	case constants.SettingKeyNotificationConfig:
		return NotificationSettingToMap(notificationSettingFromJSON(value, NotificationDefaultSetting()))
	}
	return value
}

func normalizeSettingTextWithRuneLimit(raw interface{}, maxRuneCount int) string {
	text, _ := raw.(string)
	text = strings.TrimSpace(text)
	if maxRuneCount <= 0 || utf8.RuneCountInString(text) <= maxRuneCount {
		return text
	}
	return string([]rune(text)[:maxRuneCount])
}

// parseSettingBool 后台表单可能提交 "on"/"yes"
func parseSettingBool(raw interface{}) bool {
	if text, ok := raw.(string); ok {
		switch text = strings.ToLower(strings.TrimSpace(text)); text {
		case "yes", "on":
			return true
		default:
			raw = text
		}
	}
	value, err := cast.ToBoolE(raw)
	return err == nil && value
}

var errEmptySettingValue = errors.New("empty setting value")

// parseSettingInt JSON 数字解码为 float64，小数部分直接截断
func parseSettingInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case string:
		if v = strings.TrimSpace(v); v == "" {
			return 0, errEmptySettingValue
		}
		raw = v
	}
	return cast.ToIntE(raw)
}

func readSettingBool(raw models.JSON, key string, target *bool) {
	if value, ok := raw[key]; ok {
		*target = parseSettingBool(value)
	}
}

// readSettingInt 无法解析时保留原值
func readSettingInt(raw models.JSON, key string, target *int) {
	if value, ok := raw[key]; ok {
		if parsed, err := parseSettingInt(value); err == nil {
			*target = parsed
		}
	}
}

func readSettingText(raw models.JSON, key string, maxRuneCount int, target *string) {
	if value, ok := raw[key]; ok {
		*target = normalizeSettingTextWithRuneLimit(value, maxRuneCount)
	}
}
