package service

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
)

func encodeTestPNG(t *testing.T, width, height int) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func newTestUploadService(t *testing.T) *UploadService {
	t.Helper()
	svc := NewUploadService(config.UploadConfig{
		Dir:          t.TempDir(),
		AllowedTypes: []string{"image/png", "image/jpeg"},
		MaxWidth:     64,
		MaxHeight:    64,
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestUploadSaveStoresImageUnderScene(t *testing.T) {
	svc := newTestUploadService(t)
	url, err := svc.save(encodeTestPNG(t, 32, 16), ".png", "og")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/og/2026/03/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %q", url)
	}
	stored := filepath.Join(svc.Dir(), strings.TrimPrefix(url, "/uploads/"))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	url, err = svc.save(encodeTestPNG(t, 8, 8), ".png", "unknown")
	if err != nil || !strings.HasPrefix(url, "/uploads/cover/") {
		t.Fatalf("unknown scene must fall back to cover, got %q %v", url, err)
	}
}

func TestUploadSaveRejectsInvalidImages(t *testing.T) {
	svc := newTestUploadService(t)
	if _, err := svc.save(encodeTestPNG(t, 128, 8), ".png", "cover"); !errors.Is(err, ErrUploadImageInvalid) {
		t.Fatalf("oversized image want ErrUploadImageInvalid got %v", err)
	}
	if _, err := svc.save(bytes.NewReader([]byte("plain text body")), ".png", "cover"); !errors.Is(err, ErrUploadTypeInvalid) {
		t.Fatalf("text body want ErrUploadTypeInvalid got %v", err)
	}
	if _, err := svc.SaveImage(nil, "cover"); !errors.Is(err, ErrUploadImageInvalid) {
		t.Fatalf("nil file want ErrUploadImageInvalid got %v", err)
	}
}
