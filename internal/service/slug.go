package service

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	slugPattern        = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugInvalidRunes   = regexp.MustCompile(`[^a-z0-9]+`)
	slugMaxLength      = 200
	slugFallbackPrefix = "announcement"
)

// slugCounter 统计 slug 占用数量（需包含软删除记录）
type slugCounter func(slug string, excludeID *uint) (int64, error)

// Slugify 将标题转换为 URL 友好的 slug，无法转换时返回空字符串
func Slugify(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	lowered = strings.ReplaceAll(lowered, "&", " and ")
	lowered = strings.ReplaceAll(lowered, "'", "")
	slug := strings.Trim(slugInvalidRunes.ReplaceAllString(lowered, "-"), "-")
	if len(slug) > slugMaxLength {
		slug = strings.Trim(slug[:slugMaxLength], "-")
	}
	return slug
}

// ValidSlug 校验 slug 格式
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// resolveSlug 处理输入 slug：为空时由标题生成并自动追加序号，非空时要求格式合法且未被占用
func resolveSlug(requested, title, fallback string, excludeID *uint, count slugCounter) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		if !ValidSlug(requested) {
			return "", ErrSlugInvalid
		}
		total, err := count(requested, excludeID)
		if err != nil {
			return "", err
		}
		if total > 0 {
			return "", ErrSlugExists
		}
		return requested, nil
	}

	base := Slugify(title)
	if base == "" {
		base = fallback
	}
	return uniqueSlug(base, excludeID, count)
}

// requestedSlug 更新时未填写 slug 则沿用已有值，只有新建才由标题生成
func requestedSlug(input, current string, excludeID *uint) string {
	if strings.TrimSpace(input) == "" && excludeID != nil {
		return current
	}
	return input
}

// uniqueSlug 在 base 基础上追加 -1、-2 ... 直到不冲突
func uniqueSlug(base string, excludeID *uint, count slugCounter) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		total, err := count(candidate, excludeID)
		if err != nil {
			return "", err
		}
		if total == 0 {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
