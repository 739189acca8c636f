package service

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ContentRenderer 公告正文渲染：Markdown 转 HTML 并做白名单过滤
type ContentRenderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	strict   *bluemonday.Policy
}

// NewContentRenderer 创建正文渲染器
func NewContentRenderer() *ContentRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span", "div")
	policy.AllowAttrs("checked", "disabled", "type").OnElements("input")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &ContentRenderer{
		// 未开启 WithUnsafe：Markdown 中的原始 HTML 会被省略
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: policy,
		strict: bluemonday.StrictPolicy(),
	}
}

// RenderMarkdown 渲染 Markdown 为安全 HTML，同一输入总是得到同一输出
func (r *ContentRenderer) RenderMarkdown(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Sanitize 过滤 HTML 编辑模式下的正文
func (r *ContentRenderer) Sanitize(rawHTML string) string {
	return r.policy.Sanitize(rawHTML)
}

// PlainText 去除标签后截断为纯文本，maxRunes<=0 表示不截断
func (r *ContentRenderer) PlainText(rawHTML string, maxRunes int) string {
	text := html.UnescapeString(r.strict.Sanitize(rawHTML))
	text = strings.Join(strings.Fields(text), " ")
	return truncateRunes(text, maxRunes)
}

func truncateRunes(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}
