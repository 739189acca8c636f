package service

import (
	"context"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/i18n"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/metrics"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/queue"
	"github.com/dujiao-next/announcements/internal/repository"
	"github.com/dujiao-next/announcements/internal/webhook"
)

// AnnouncementNotifier 公告发布通知触发接口
type AnnouncementNotifier interface {
	NotifyPublished(ctx context.Context, announcementID uint)
}

// NotificationService 公告发布通知服务
// 说明：投递失败只记录日志与指标，不影响发布流程。
type NotificationService struct {
	announcementRepo repository.AnnouncementRepository
	settings         NotificationSettingProvider
	formatter        *NotificationFormatter
	sender           webhook.Sender
	queueClient      *queue.Client
	metrics          metrics.Recorder
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	announcementRepo repository.AnnouncementRepository,
	settings NotificationSettingProvider,
	formatter *NotificationFormatter,
	sender webhook.Sender,
	queueClient *queue.Client,
	recorder metrics.Recorder,
) *NotificationService {
	return &NotificationService{
		announcementRepo: announcementRepo,
		settings:         settings,
		formatter:        formatter,
		sender:           sender,
		queueClient:      queueClient,
		metrics:          metrics.OrNop(recorder),
	}
}

func (s *NotificationService) loadSetting() (NotificationSetting, bool) {
	if s == nil || s.settings == nil || s.sender == nil {
		return NotificationSetting{}, false
	}
	setting, err := s.settings.GetNotificationSetting()
	if err != nil {
		logger.Warnw("notification_setting_load_failed", "error", err)
		return NotificationSetting{}, false
	}
	return setting, setting.DiscordEnabled && setting.WebhookURL != ""
}

// NotifyPublished 公告进入已发布状态时触发；队列可用时异步投递，否则同步投递
func (s *NotificationService) NotifyPublished(ctx context.Context, announcementID uint) {
	if _, enabled := s.loadSetting(); !enabled {
		return
	}
	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueAnnouncementNotify(queue.AnnouncementNotifyPayload{
			AnnouncementID: announcementID,
			Event:          constants.NotificationEventPublish,
		})
		if err == nil {
			return
		}
		logger.Warnw("notification_enqueue_failed_fallback_inline",
			"announcement_id", announcementID,
			"error", err,
		)
	}
	if _, err := s.DeliverPublished(ctx, announcementID); err != nil {
		logger.Warnw("notification_deliver_skipped", "announcement_id", announcementID, "error", err)
	}
}

// DeliverPublished 构建并投递发布通知（队列消费者与同步路径共用）
func (s *NotificationService) DeliverPublished(ctx context.Context, announcementID uint) (webhook.DeliveryResult, error) {
	setting, enabled := s.loadSetting()
	if !enabled {
		return webhook.DeliveryResult{}, ErrWebhookNotConfigured
	}
	item, err := s.announcementRepo.GetByID(announcementID)
	if err != nil {
		return webhook.DeliveryResult{}, err
	}
	if item == nil {
		return webhook.DeliveryResult{}, ErrNotFound
	}
	result := s.deliver(ctx, constants.NotificationEventPublish, setting, item)
	return result, nil
}

// SendTest 发送测试通知（不要求已开启，只要求配置了 Webhook）
func (s *NotificationService) SendTest(ctx context.Context, locale string) (webhook.DeliveryResult, error) {
	if s == nil || s.settings == nil || s.sender == nil {
		return webhook.DeliveryResult{}, ErrWebhookNotConfigured
	}
	setting, err := s.settings.GetNotificationSetting()
	if err != nil {
		return webhook.DeliveryResult{}, err
	}
	if setting.WebhookURL == "" {
		return webhook.DeliveryResult{}, ErrWebhookNotConfigured
	}
	now := time.Now().UTC()
	sample := &models.Announcement{
		Title:       i18n.T(locale, "announcement.notification.test"),
		Slug:        "test-notification",
		Excerpt:     i18n.T(locale, "announcement.notification.test"),
		Status:      constants.AnnouncementStatusPublished,
		PublishedAt: &now,
	}
	return s.deliver(ctx, constants.NotificationEventTest, setting, sample), nil
}

func (s *NotificationService) deliver(ctx context.Context, event string, setting NotificationSetting, item *models.Announcement) webhook.DeliveryResult {
	payload := s.formatter.Build(item, setting)
	result := s.sender.Send(ctx, setting.WebhookURL, payload)
	s.metrics.RecordNotification(event, result.Success, result.StatusCode)
	if result.Success {
		logger.Infow("notification_delivered",
			"event", event,
			"announcement_id", item.ID,
			"status_code", result.StatusCode,
		)
	} else {
		logger.Warnw("notification_delivery_failed",
			"event", event,
			"announcement_id", item.ID,
			"status_code", result.StatusCode,
			"message", result.Message,
		)
	}
	return result
}
