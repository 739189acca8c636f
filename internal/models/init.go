package models

import (
	"strings"

	"github.com/dujiao-next/announcements/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// InitDefaultAdmin 首次启动时创建超级管理员（同时作为默认作者）
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		// 保证至少存在一个超级管理员
		var supers int64
		if err := DB.Model(&Admin{}).Where("is_super = ?", true).Count(&supers).Error; err != nil {
			return err
		}
		if supers == 0 {
			var first Admin
			if err := DB.Order("id ASC").First(&first).Error; err != nil {
				return err
			}
			if err := DB.Model(&first).Update("is_super", true).Error; err != nil {
				logger.Warnw("ensure_default_admin_super_failed", "admin_id", first.ID, "error", err)
			}
		}
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultAdminUsername
	}
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		IsSuper:      true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Infow("default_admin_created", "username", username)
	}
	return nil
}
