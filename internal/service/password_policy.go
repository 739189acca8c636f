package service

import (
	"unicode"

	"github.com/dujiao-next/announcements/internal/config"
)

// PasswordPolicyError 携带 i18n key 与参数，handler 据此渲染具体提示
type PasswordPolicyError struct {
	key  string
	args []interface{}
}

func (e PasswordPolicyError) Error() string        { return e.key }
func (e PasswordPolicyError) Is(target error) bool { return target == ErrWeakPassword }
func (e PasswordPolicyError) Key() string          { return e.key }
func (e PasswordPolicyError) Args() []interface{}  { return e.args }

type charClassRule struct {
	required bool
	match    func(rune) bool
	key      string
}

// validatePassword 管理员与前台用户共用同一套策略
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return PasswordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}
	isSpecial := func(r rune) bool {
		return !unicode.IsUpper(r) && !unicode.IsLower(r) && !unicode.IsDigit(r)
	}
	rules := []charClassRule{
		{policy.RequireUpper, unicode.IsUpper, "error.password_require_upper"},
		{policy.RequireLower, unicode.IsLower, "error.password_require_lower"},
		{policy.RequireNumber, unicode.IsDigit, "error.password_require_number"},
		{policy.RequireSpecial, isSpecial, "error.password_require_special"},
	}
	for _, rule := range rules {
		if rule.required && !containsRune(password, rule.match) {
			return PasswordPolicyError{key: rule.key}
		}
	}
	return nil
}

func containsRune(s string, match func(rune) bool) bool {
	for _, r := range s {
		if match(r) {
			return true
		}
	}
	return false
}
