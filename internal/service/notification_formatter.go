package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/webhook"
)

// notificationTokens 模板变量（大小写敏感，未知变量原样保留）
var notificationTokens = []string{
	"{title}",
	"{slug}",
	"{excerpt}",
	"{url}",
	"{author}",
	"{category}",
	"{status}",
	"{published_at}",
	"{views}",
	"{likes}",
	"{site_name}",
	"{site_url}",
}

const (
	discordTitleLimit       = 256
	discordDescriptionLimit = 4096
	discordFooterLimit      = 2048
	discordContentLimit     = 2000
)

// SiteInfo 站点信息
type SiteInfo struct {
	Name       string
	URL        string
	PublicPath string
}

// AnnouncementURL 公告前台地址
func (s SiteInfo) AnnouncementURL(slug string) string {
	base := strings.TrimRight(s.URL, "/")
	path := strings.Trim(s.PublicPath, "/")
	if path == "" {
		path = "announcements"
	}
	return base + "/" + path + "/" + slug
}

// NotificationFormatter 发布通知内容构建
type NotificationFormatter struct {
	site          SiteInfo
	renderer      *ContentRenderer
	anonymousName string
}

// NewNotificationFormatter 创建通知格式化器
func NewNotificationFormatter(site SiteInfo, renderer *ContentRenderer, anonymousName string) *NotificationFormatter {
	if renderer == nil {
		renderer = NewContentRenderer()
	}
	if strings.TrimSpace(anonymousName) == "" {
		anonymousName = constants.AnonymousAuthorNameDefault
	}
	return &NotificationFormatter{site: site, renderer: renderer, anonymousName: anonymousName}
}

// ApplyTemplate 字面替换模板变量，替换结果不会被再次展开
func ApplyTemplate(template string, vars map[string]string) string {
	if template == "" || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(notificationTokens)*2)
	for _, token := range notificationTokens {
		if value, ok := vars[token]; ok {
			pairs = append(pairs, token, value)
		}
	}
	if len(pairs) == 0 {
		return template
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func (f *NotificationFormatter) authorName(item *models.Announcement) string {
	if item.ShowAuthor && item.Author != nil {
		if name := item.Author.AuthorName(); name != "" {
			return name
		}
	}
	return f.anonymousName
}

// excerpt 摘要为空时使用去标签后的正文截断
func (f *NotificationFormatter) excerpt(item *models.Announcement) string {
	if text := strings.TrimSpace(item.Excerpt); text != "" {
		return text
	}
	return f.renderer.PlainText(item.ContentHTML, constants.NotificationExcerptFallback)
}

// TemplateVars 构建公告对应的模板变量
func (f *NotificationFormatter) TemplateVars(item *models.Announcement) map[string]string {
	category := ""
	if item.Category != nil {
		category = item.Category.Name
	}
	publishedAt := ""
	if item.PublishedAt != nil {
		publishedAt = item.PublishedAt.UTC().Format("2006-01-02 15:04")
	}
	return map[string]string{
		"{title}":        item.Title,
		"{slug}":         item.Slug,
		"{excerpt}":      f.excerpt(item),
		"{url}":          f.site.AnnouncementURL(item.Slug),
		"{author}":       f.authorName(item),
		"{category}":     category,
		"{status}":       item.Status,
		"{published_at}": publishedAt,
		"{views}":        strconv.FormatInt(item.ViewsCount, 10),
		"{likes}":        strconv.FormatInt(item.LikesCount, 10),
		"{site_name}":    f.site.Name,
		"{site_url}":     f.site.URL,
	}
}

// Build 构建 Discord 消息
func (f *NotificationFormatter) Build(item *models.Announcement, setting NotificationSetting) webhook.DiscordPayload {
	vars := f.TemplateVars(item)
	embed := webhook.DiscordEmbed{
		Title:       truncateRunes(ApplyTemplate(setting.TitleTemplate, vars), discordTitleLimit),
		Description: truncateRunes(ApplyTemplate(setting.DescriptionTemplate, vars), discordDescriptionLimit),
		URL:         vars["{url}"],
		Color:       parseHexColor(setting.Color),
		Fields:      []webhook.DiscordEmbedField{},
	}
	if setting.ShowTimestamp && item.PublishedAt != nil {
		embed.Timestamp = item.PublishedAt.UTC().Format(time.RFC3339)
	}
	if setting.ShowAuthor {
		embed.Author = &webhook.DiscordEmbedAuthor{Name: vars["{author}"]}
	}
	if footer := truncateRunes(ApplyTemplate(setting.FooterTemplate, vars), discordFooterLimit); footer != "" {
		embed.Footer = &webhook.DiscordEmbedFooter{Text: footer}
	}
	if setting.ShowThumbnail && item.CoverImageURL != "" {
		embed.Thumbnail = &webhook.DiscordEmbedImage{URL: item.CoverImageURL}
	}
	if setting.ShowImage {
		image := item.OGImageURL
		if image == "" {
			image = item.CoverImageURL
		}
		if image != "" {
			embed.Image = &webhook.DiscordEmbedImage{URL: image}
		}
	}
	if setting.ShowCategory && vars["{category}"] != "" {
		embed.Fields = append(embed.Fields, webhook.DiscordEmbedField{Name: "Category", Value: vars["{category}"], Inline: true})
	}
	if setting.ShowStatsFields {
		embed.Fields = append(embed.Fields,
			webhook.DiscordEmbedField{Name: "Views", Value: vars["{views}"], Inline: true},
			webhook.DiscordEmbedField{Name: "Likes", Value: vars["{likes}"], Inline: true},
		)
	}

	return webhook.DiscordPayload{
		Content:   truncateRunes(ApplyTemplate(setting.ContentTemplate, vars), discordContentLimit),
		Username:  setting.Username,
		AvatarURL: setting.AvatarURL,
		Embeds:    []webhook.DiscordEmbed{embed},
	}
}

func parseHexColor(color string) int {
	value, err := strconv.ParseInt(strings.TrimPrefix(color, "#"), 16, 32)
	if err != nil {
		value, _ = strconv.ParseInt(strings.TrimPrefix(notificationColorDefault, "#"), 16, 32)
	}
	return int(value)
}
