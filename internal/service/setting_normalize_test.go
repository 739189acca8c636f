package service

import (
	"encoding/json"
	"testing"

	"github.com/dujiao-next/announcements/internal/constants"
)

func TestParseSettingValues(t *testing.T) {
	boolCases := map[interface{}]bool{
		true:     true,
		"yes":    true,
		" On ":   true,
		"0":      false,
		1:        true,
		0.0:      false,
		"random": false,
	}
	for raw, want := range boolCases {
		if got := parseSettingBool(raw); got != want {
			t.Fatalf("parseSettingBool(%#v) want %v got %v", raw, want, got)
		}
	}

	intCases := []struct {
		raw  interface{}
		want int
		ok   bool
	}{
		{raw: 12, want: 12, ok: true},
		{raw: float64(7.9), want: 7, ok: true},
		{raw: " 42 ", want: 42, ok: true},
		{raw: json.Number("15"), want: 15, ok: true},
		{raw: "", ok: false},
		{raw: "abc", ok: false},
		{raw: []int{1}, ok: false},
	}
	for _, tc := range intCases {
		got, err := parseSettingInt(tc.raw)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("parseSettingInt(%#v) want %d got %d err=%v", tc.raw, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parseSettingInt(%#v) expected error", tc.raw)
		}
	}
}

func TestNormalizeSettingTextWithRuneLimit(t *testing.T) {
	if got := normalizeSettingTextWithRuneLimit("  公告标题测试  ", 4); got != "公告标题" {
		t.Fatalf("rune limit got %q", got)
	}
	if got := normalizeSettingTextWithRuneLimit(123, 10); got != "" {
		t.Fatalf("non-string must normalize to empty, got %q", got)
	}
	if got := normalizeSettingTextWithRuneLimit(" keep ", 0); got != "keep" {
		t.Fatalf("zero limit must only trim, got %q", got)
	}
}

func TestUpdateNotificationSettingNormalized(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	result, err := svc.Update(constants.SettingKeyNotificationConfig, map[string]interface{}{
		"discord_enabled": "true",
		"webhook_url":     "   ",
		"color":           "blue",
		"title_template":  "",
		"show_image":      "off",
	})
	if err != nil {
		t.Fatalf("update notification config failed: %v", err)
	}
	if result["discord_enabled"] != false {
		t.Fatalf("discord must be disabled without webhook, got %v", result["discord_enabled"])
	}
	if result["color"] != notificationColorDefault {
		t.Fatalf("invalid color must fall back, got %v", result["color"])
	}
	if result["title_template"] != "{title}" {
		t.Fatalf("empty title template must fall back, got %v", result["title_template"])
	}
	if result["show_image"] != false {
		t.Fatalf("show_image want false got %v", result["show_image"])
	}

	loaded, err := svc.GetNotificationSetting()
	if err != nil {
		t.Fatalf("load notification setting failed: %v", err)
	}
	if loaded.DiscordEnabled || loaded.Color != notificationColorDefault || loaded.FooterTemplate != "{site_name}" {
		t.Fatalf("unexpected loaded setting %+v", loaded)
	}
}

func TestNormalizeSettingValueByKeyPassesUnknownKeys(t *testing.T) {
	raw := map[string]interface{}{"anything": "kept"}
	if got := normalizeSettingValueByKey("custom_config", raw); got["anything"] != "kept" {
		t.Fatalf("unknown key must pass through, got %v", got)
	}
}
