package worker

import (
	"context"
	"errors"

	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/provider"
	"github.com/dujiao-next/announcements/internal/queue"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskAnnouncementNotify, c.handleAnnouncementNotify)
}

// handleAnnouncementNotify 投递失败只记录，任务不重试
func (c *Consumer) handleAnnouncementNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_announcement_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseAnnouncementNotifyPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_announcement_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.AnnouncementID == 0 {
		logger.Debugw("worker_announcement_notify_skip_invalid_payload", "announcement_id", payload.AnnouncementID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_announcement_notify_skip_service_nil", "announcement_id", payload.AnnouncementID)
		return nil
	}
	result, err := c.NotificationService.DeliverPublished(ctx, payload.AnnouncementID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookNotConfigured):
			logger.Debugw("worker_announcement_notify_skip_disabled", "announcement_id", payload.AnnouncementID)
			return nil
		case errors.Is(err, service.ErrNotFound):
			logger.Debugw("worker_announcement_notify_skip_not_found", "announcement_id", payload.AnnouncementID)
			return nil
		default:
			logger.Warnw("worker_announcement_notify_failed", "announcement_id", payload.AnnouncementID, "error", err)
			return err
		}
	}
	if !result.Success {
		logger.Warnw("worker_announcement_notify_delivery_failed",
			"announcement_id", payload.AnnouncementID,
			"status_code", result.StatusCode,
			"message", result.Message,
		)
	}
	return nil
}
