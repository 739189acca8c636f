package webhook

// DiscordPayload Discord Webhook 请求体
type DiscordPayload struct {
	Content   string         `json:"content,omitempty"`
	Username  string         `json:"username,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Embeds    []DiscordEmbed `json:"embeds,omitempty"`
}

// DiscordEmbed 嵌入卡片
type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Author      *DiscordEmbedAuthor `json:"author,omitempty"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Thumbnail   *DiscordEmbedImage  `json:"thumbnail,omitempty"`
	Image       *DiscordEmbedImage  `json:"image,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// DiscordEmbedAuthor 卡片作者
type DiscordEmbedAuthor struct {
	Name string `json:"name"`
}

// DiscordEmbedFooter 卡片页脚
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// DiscordEmbedImage 卡片图片
type DiscordEmbedImage struct {
	URL string `json:"url"`
}

// DiscordEmbedField 卡片字段
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DeliveryResult 投递结果；失败不会以错误形式返回
type DeliveryResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
