package i18n

import "github.com/dujiao-next/announcements/internal/constants"

var messages = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":                  "请求参数错误",
		"error.unauthorized":                 "未登录或登录已失效",
		"error.forbidden":                    "无权限访问",
		"error.internal":                     "服务器内部错误",
		"error.jwt_secret_missing":           "JWT 密钥未配置",
		"error.auth_header_missing":          "缺少 Authorization 请求头",
		"error.auth_header_invalid":          "Authorization 请求头格式错误",
		"error.token_invalid":                "登录凭证无效",
		"error.token_revoked":                "登录凭证已失效，请重新登录",
		"error.user_disabled":                "账号已被禁用",
		"error.rate_limited":                 "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":       "限流服务暂不可用",
		"error.login_too_many":               "登录尝试次数过多，请 %d 秒后再试",
		"error.admin_login_invalid":          "用户名或密码错误",
		"error.user_login_invalid":           "邮箱或密码错误",
		"error.email_exists":                 "邮箱已被注册",
		"error.password_min_length":          "密码长度至少为 %d 位",
		"error.password_require_upper":       "密码需包含大写字母",
		"error.password_require_lower":       "密码需包含小写字母",
		"error.password_require_number":      "密码需包含数字",
		"error.password_require_special":     "密码需包含特殊字符",
		"error.login_failed":                 "登录失败",
		"error.register_failed":              "注册失败",
		"error.slug_exists":                  "标识已存在",
		"error.slug_invalid":                 "标识格式错误，仅允许小写字母、数字与连字符",
		"error.color_invalid":                "颜色格式错误，需为 #RRGGBB",
		"error.status_invalid":               "公告状态不合法",
		"error.editor_mode_invalid":          "编辑器模式不合法",
		"error.period_invalid":               "统计周期不合法",
		"error.announcement_not_found":       "公告不存在",
		"error.announcement_fetch_failed":    "获取公告失败",
		"error.announcement_create_failed":   "创建公告失败",
		"error.announcement_update_failed":   "更新公告失败",
		"error.announcement_delete_failed":   "删除公告失败",
		"error.announcements_disabled":       "公告模块未启用",
		"error.category_not_found":           "分类不存在",
		"error.category_inactive":            "分类已停用",
		"error.category_fetch_failed":        "获取分类失败",
		"error.category_create_failed":       "创建分类失败",
		"error.category_update_failed":       "更新分类失败",
		"error.category_delete_failed":       "删除分类失败",
		"error.likes_disabled":               "点赞功能未开启",
		"error.like_requires_auth":           "请先登录后再点赞",
		"error.like_failed":                  "点赞失败",
		"error.identity_missing":             "无法识别访客身份",
		"error.stats_fetch_failed":           "获取统计数据失败",
		"error.stats_export_failed":          "导出统计数据失败",
		"error.settings_fetch_failed":        "获取设置失败",
		"error.settings_save_failed":         "保存设置失败",
		"error.feed_disabled":                "RSS 订阅未开启",
		"error.feed_failed":                  "生成 RSS 失败",
		"error.webhook_not_configured":       "未配置 Discord Webhook",
		"error.webhook_test_failed":          "Discord 测试消息发送失败",
		"error.admin_id_invalid":             "管理员 ID 无效",
		"error.admin_id_type_invalid":        "管理员 ID 类型错误",
		"error.user_id_invalid":              "用户 ID 无效",
		"error.user_id_type_invalid":         "用户 ID 类型错误",
		"error.title_required":               "标题不能为空",
		"error.published_at_required":        "定时发布需要设置发布时间",
		"error.position_invalid":             "排序参数不合法",
		"error.name_required":                "名称不能为空",
		"error.password_incorrect":           "当前密码错误",
		"error.password_weak":                "密码不符合安全策略",
		"error.password_change_failed":       "修改密码失败",
		"error.profile_update_failed":        "更新资料失败",
		"error.username_exists":              "用户名已存在",
		"error.email_invalid":                "邮箱格式错误",
		"error.upload_too_large":             "文件超过大小限制",
		"error.upload_type_invalid":          "文件类型不被允许",
		"error.upload_image_invalid":         "图片无效或尺寸超出限制",
		"error.upload_failed":                "上传失败",
		"error.admin_not_found":              "管理员不存在",
		"error.admin_create_failed":          "创建管理员失败",
		"error.role_invalid":                 "角色不合法",
		"error.role_builtin":                 "内置角色不可修改",
		"error.authz_failed":                 "权限操作失败",
		"announcement.notification.test":     "这是一条测试通知",
		"announcement.notification.test_msg": "测试消息已发送",
	},
	constants.LocaleZhTW: {
		"error.bad_request":              "請求參數錯誤",
		"error.unauthorized":             "未登入或登入已失效",
		"error.forbidden":                "無權限存取",
		"error.internal":                 "伺服器內部錯誤",
		"error.rate_limited":             "請求過於頻繁，請 %d 秒後再試",
		"error.login_too_many":           "登入嘗試次數過多，請 %d 秒後再試",
		"error.announcement_not_found":   "公告不存在",
		"error.category_not_found":       "分類不存在",
		"error.likes_disabled":           "按讚功能未開啟",
		"error.like_requires_auth":       "請先登入後再按讚",
		"error.announcements_disabled":   "公告模組未啟用",
		"error.slug_exists":              "標識已存在",
		"error.period_invalid":           "統計週期不合法",
		"error.feed_disabled":            "RSS 訂閱未開啟",
		"error.webhook_not_configured":   "未設定 Discord Webhook",
		"error.title_required":           "標題不能為空",
		"error.upload_too_large":         "檔案超過大小限制",
		"announcement.notification.test": "這是一則測試通知",
	},
	constants.LocaleEnUS: {
		"error.bad_request":                  "Invalid request parameters",
		"error.unauthorized":                 "Not signed in or session expired",
		"error.forbidden":                    "Access denied",
		"error.internal":                     "Internal server error",
		"error.jwt_secret_missing":           "JWT secret is not configured",
		"error.auth_header_missing":          "Missing Authorization header",
		"error.auth_header_invalid":          "Malformed Authorization header",
		"error.token_invalid":                "Invalid token",
		"error.token_revoked":                "Token revoked, please sign in again",
		"error.user_disabled":                "Account disabled",
		"error.rate_limited":                 "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":       "Rate limiter unavailable",
		"error.login_too_many":               "Too many login attempts, retry in %d seconds",
		"error.admin_login_invalid":          "Invalid username or password",
		"error.user_login_invalid":           "Invalid email or password",
		"error.email_exists":                 "Email already registered",
		"error.password_min_length":          "Password must be at least %d characters",
		"error.password_require_upper":       "Password must contain an uppercase letter",
		"error.password_require_lower":       "Password must contain a lowercase letter",
		"error.password_require_number":      "Password must contain a digit",
		"error.password_require_special":     "Password must contain a special character",
		"error.login_failed":                 "Login failed",
		"error.register_failed":              "Registration failed",
		"error.slug_exists":                  "Slug already exists",
		"error.slug_invalid":                 "Slug may only contain lowercase letters, digits and hyphens",
		"error.color_invalid":                "Color must be #RRGGBB",
		"error.status_invalid":               "Invalid announcement status",
		"error.editor_mode_invalid":          "Invalid editor mode",
		"error.period_invalid":               "Invalid stats period",
		"error.announcement_not_found":       "Announcement not found",
		"error.announcement_fetch_failed":    "Failed to load announcements",
		"error.announcement_create_failed":   "Failed to create announcement",
		"error.announcement_update_failed":   "Failed to update announcement",
		"error.announcement_delete_failed":   "Failed to delete announcement",
		"error.announcements_disabled":       "Announcements are disabled",
		"error.category_not_found":           "Category not found",
		"error.category_inactive":            "Category is inactive",
		"error.category_fetch_failed":        "Failed to load categories",
		"error.category_create_failed":       "Failed to create category",
		"error.category_update_failed":       "Failed to update category",
		"error.category_delete_failed":       "Failed to delete category",
		"error.likes_disabled":               "Likes are disabled",
		"error.like_requires_auth":           "Please sign in to like",
		"error.like_failed":                  "Failed to toggle like",
		"error.identity_missing":             "Visitor identity unavailable",
		"error.stats_fetch_failed":           "Failed to load statistics",
		"error.stats_export_failed":          "Failed to export statistics",
		"error.settings_fetch_failed":        "Failed to load settings",
		"error.settings_save_failed":         "Failed to save settings",
		"error.feed_disabled":                "RSS feed is disabled",
		"error.feed_failed":                  "Failed to build RSS feed",
		"error.webhook_not_configured":       "Discord webhook is not configured",
		"error.webhook_test_failed":          "Failed to send Discord test message",
		"error.admin_id_invalid":             "Invalid admin id",
		"error.admin_id_type_invalid":        "Invalid admin id type",
		"error.user_id_invalid":              "Invalid user id",
		"error.user_id_type_invalid":         "Invalid user id type",
		"error.title_required":               "Title is required",
		"error.published_at_required":        "Scheduled announcements need a publish date",
		"error.position_invalid":             "Invalid position",
		"error.name_required":                "Name is required",
		"error.password_incorrect":           "Current password is incorrect",
		"error.password_weak":                "Password does not meet the policy",
		"error.password_change_failed":       "Failed to change password",
		"error.profile_update_failed":        "Failed to update profile",
		"error.username_exists":              "Username already exists",
		"error.email_invalid":                "Invalid email address",
		"error.upload_too_large":             "File exceeds the size limit",
		"error.upload_type_invalid":          "File type not allowed",
		"error.upload_image_invalid":         "Image invalid or too large",
		"error.upload_failed":                "Upload failed",
		"error.admin_not_found":              "Admin not found",
		"error.admin_create_failed":          "Failed to create admin",
		"error.role_invalid":                 "Invalid role",
		"error.role_builtin":                 "Built-in roles cannot be modified",
		"error.authz_failed":                 "Permission operation failed",
		"announcement.notification.test":     "This is a test notification",
		"announcement.notification.test_msg": "Test message sent",
	},
}
