package service

import (
	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
)

// SettingService 设置业务服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	normalized := normalizeSettingValueByKey(key, value)

	setting, err := s.repo.Upsert(key, normalized)
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// AnnouncementSettingsBundle 公告模块全部设置
type AnnouncementSettingsBundle struct {
	Announcements AnnouncementSetting `json:"announcements"`
	Notification  NotificationSetting `json:"notification"`
}

// GetAnnouncementSettingsBundle 获取公告模块全部设置
func (s *SettingService) GetAnnouncementSettingsBundle() (AnnouncementSettingsBundle, error) {
	bundle := AnnouncementSettingsBundle{
		Announcements: AnnouncementDefaultSetting(),
		Notification:  NormalizeNotificationSetting(NotificationDefaultSetting()),
	}
	rows, err := s.repo.ListByKeys([]string{constants.SettingKeyAnnouncementConfig, constants.SettingKeyNotificationConfig})
	if err != nil {
		return bundle, err
	}
	for _, row := range rows {
		switch row.Key {
		case constants.SettingKeyAnnouncementConfig:
			bundle.Announcements = announcementSettingFromJSON(row.ValueJSON, bundle.Announcements)
		case constants.SettingKeyNotificationConfig:
			bundle.Notification = notificationSettingFromJSON(row.ValueJSON, NotificationDefaultSetting())
		}
	}
	return bundle, nil
}

// AnnouncementSettingsPatch 设置部分更新，未提供的分组保持不变
type AnnouncementSettingsPatch struct {
	Announcements map[string]interface{} `json:"announcements"`
	Notification  map[string]interface{} `json:"notification"`
}

// UpdateAnnouncementSettingsBundle 合并已有配置后写入，返回更新后的全部设置
func (s *SettingService) UpdateAnnouncementSettingsBundle(patch AnnouncementSettingsPatch) (AnnouncementSettingsBundle, error) {
	current, err := s.GetAnnouncementSettingsBundle()
	if err != nil {
		return current, err
	}
	if len(patch.Announcements) > 0 {
		if err := s.mergeAndUpdate(constants.SettingKeyAnnouncementConfig, AnnouncementSettingToMap(current.Announcements), patch.Announcements); err != nil {
			return current, err
		}
	}
	if len(patch.Notification) > 0 {
		if err := s.mergeAndUpdate(constants.SettingKeyNotificationConfig, NotificationSettingToMap(current.Notification), patch.Notification); err != nil {
			return current, err
		}
	}
	return s.GetAnnouncementSettingsBundle()
}

func (s *SettingService) mergeAndUpdate(key string, base, patch map[string]interface{}) error {
	for k, v := range patch {
		base[k] = v
	}
	_, err := s.Update(key, base)
	return err
}

// AnnouncementSettingProvider 公告配置读取接口
type AnnouncementSettingProvider interface {
	GetAnnouncementSetting() (AnnouncementSetting, error)
}

// NotificationSettingProvider 通知配置读取接口
type NotificationSettingProvider interface {
	GetNotificationSetting() (NotificationSetting, error)
}

// StaticSettings 固定配置（测试或命令行工具使用）
type StaticSettings struct {
	Announcement AnnouncementSetting
	Notification NotificationSetting
}

// GetAnnouncementSetting 返回固定公告配置
func (s StaticSettings) GetAnnouncementSetting() (AnnouncementSetting, error) {
	return NormalizeAnnouncementSetting(s.Announcement), nil
}

// GetNotificationSetting 返回固定通知配置
func (s StaticSettings) GetNotificationSetting() (NotificationSetting, error) {
	return NormalizeNotificationSetting(s.Notification), nil
}
