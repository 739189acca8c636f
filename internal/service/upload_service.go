package service

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/config"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// 上传用途：封面图、OG 图、编辑器内嵌图
var allowedUploadScenes = map[string]struct{}{
	"cover":  {},
	"og":     {},
	"editor": {},
}

// UploadService 公告图片上传
type UploadService struct {
	cfg config.UploadConfig
	now func() time.Time
}

// NewUploadService 创建上传服务
func NewUploadService(cfg config.UploadConfig) *UploadService {
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = "uploads"
	}
	return &UploadService{cfg: cfg, now: time.Now}
}

// Dir 本地存储根目录
func (s *UploadService) Dir() string {
	return s.cfg.Dir
}

// SaveImage 校验并保存图片，返回 /uploads 开头的相对地址
func (s *UploadService) SaveImage(file *multipart.FileHeader, scene string) (string, error) {
	if file == nil {
		return "", ErrUploadImageInvalid
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return "", fmt.Errorf("%w: max %d bytes", ErrUploadTooLarge, s.cfg.MaxSize)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 && (ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions)) {
		return "", fmt.Errorf("%w: %s", ErrUploadTypeInvalid, ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return s.save(src, ext, scene)
}

func (s *UploadService) save(src io.ReadSeeker, ext, scene string) (string, error) {
	sniff := make([]byte, 512)
	n, err := io.ReadFull(src, sniff)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return "", ErrUploadImageInvalid
		}
		return "", err
	}
	contentType := http.DetectContentType(sniff[:n])
	if !strings.HasPrefix(contentType, "image/") || !s.typeAllowed(contentType) {
		return "", fmt.Errorf("%w: %s", ErrUploadTypeInvalid, contentType)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	dims, _, err := image.DecodeConfig(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadImageInvalid, err)
	}
	if exceeds(dims.Width, s.cfg.MaxWidth) || exceeds(dims.Height, s.cfg.MaxHeight) {
		return "", fmt.Errorf("%w: %dx%d", ErrUploadImageInvalid, dims.Width, dims.Height)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	now := s.now()
	relative := path.Join(normalizeUploadScene(scene), now.Format("2006/01"), uuid.NewString()+ext)
	target := filepath.Join(s.cfg.Dir, filepath.FromSlash(relative))
	if err := writeFileAtomic(target, src); err != nil {
		return "", err
	}
	return "/uploads/" + relative, nil
}

// writeFileAtomic 先写同目录临时文件再改名，避免静态服务读到半截文件
func writeFileAtomic(target string, src io.Reader) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func exceeds(value, limit int) bool {
	return limit > 0 && value > limit
}

func (s *UploadService) typeAllowed(contentType string) bool {
	if len(s.cfg.AllowedTypes) == 0 {
		return true
	}
	return slices.ContainsFunc(s.cfg.AllowedTypes, func(t string) bool {
		return strings.EqualFold(strings.TrimSpace(t), contentType)
	})
}

func normalizeUploadScene(raw string) string {
	scene := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := allowedUploadScenes[scene]; ok {
		return scene
	}
	return "cover"
}

// isAllowedExtension 配置项可写 "png" 或 ".png"
func isAllowedExtension(ext string, allowed []string) bool {
	return slices.ContainsFunc(allowed, func(item string) bool {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			return false
		}
		return ext == item || ext == "."+item
	})
}
