package service

import "errors"

// 业务错误定义
var (
	ErrNotFound              = errors.New("resource not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrWeakPassword          = errors.New("password does not satisfy policy")
	ErrEmailExists           = errors.New("email already exists")
	ErrInvalidEmail          = errors.New("invalid email")
	ErrUserDisabled          = errors.New("user disabled")
	ErrSlugExists            = errors.New("slug already exists")
	ErrSlugInvalid           = errors.New("slug format invalid")
	ErrColorInvalid          = errors.New("color must be #RRGGBB")
	ErrStatusInvalid         = errors.New("announcement status invalid")
	ErrEditorModeInvalid     = errors.New("editor mode invalid")
	ErrPeriodInvalid         = errors.New("stats period invalid")
	ErrCategoryInactive      = errors.New("category inactive")
	ErrAnnouncementsDisabled = errors.New("announcements disabled")
	ErrLikesDisabled         = errors.New("likes disabled")
	ErrLikeRequiresAuth      = errors.New("like requires authenticated user")
	ErrIdentityMissing       = errors.New("visitor identity missing")
	ErrFeedDisabled          = errors.New("rss feed disabled")
	ErrWebhookNotConfigured  = errors.New("discord webhook not configured")
	ErrTitleRequired         = errors.New("title is required")
	ErrPublishedAtRequired   = errors.New("scheduled announcement requires published_at")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrPositionInvalid       = errors.New("position invalid")
	ErrNameRequired          = errors.New("name is required")
	ErrInvalidPassword       = errors.New("current password incorrect")
	ErrUsernameExists        = errors.New("username already exists")
	ErrUploadTooLarge        = errors.New("upload exceeds size limit")
	ErrUploadTypeInvalid     = errors.New("upload type not allowed")
	ErrUploadImageInvalid    = errors.New("upload image invalid")
)

// PolicyError 策略拒绝（区别于未找到与参数错误），调用方据此决定提示登录或通用错误
type PolicyError struct {
	Reason       string
	RequiresAuth bool
	err          error
}

func (e *PolicyError) Error() string {
	if e == nil {
		return ""
	}
	return e.Reason
}

func (e *PolicyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func newPolicyError(err error, requiresAuth bool) *PolicyError {
	return &PolicyError{Reason: err.Error(), RequiresAuth: requiresAuth, err: err}
}

// AsPolicyError 提取策略拒绝错误
func AsPolicyError(err error) (*PolicyError, bool) {
	var policyErr *PolicyError
	if errors.As(err, &policyErr) {
		return policyErr, true
	}
	return nil, false
}
