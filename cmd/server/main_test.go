package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dujiao-next/announcements/internal/config"
)

func TestCheckSecretsRejectsWeakInRelease(t *testing.T) {
	strong := strings.Repeat("k9", 20)
	cfg := &config.Config{
		JWT:     config.JWTConfig{SecretKey: strong},
		UserJWT: config.JWTConfig{SecretKey: "change-me-" + strong},
	}
	if err := checkSecrets(cfg, true); err == nil || !strings.Contains(err.Error(), "user_jwt") {
		t.Fatalf("release mode should reject default marker, got %v", err)
	}
	if err := checkSecrets(cfg, false); err != nil {
		t.Fatalf("debug mode should only warn, got %v", err)
	}
	cfg.UserJWT.SecretKey = strong
	if err := checkSecrets(cfg, true); err != nil {
		t.Fatalf("strong secrets should pass, got %v", err)
	}
}

func TestPrintBannerFallsBackToDefaultSiteName(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf, &config.Config{Server: config.ServerConfig{Host: "0.0.0.0", Port: "8080"}}, "api")
	out := buf.String()
	if !strings.Contains(out, "Announcements") || !strings.Contains(out, "mode=api") {
		t.Fatalf("unexpected banner %q", out)
	}
}
