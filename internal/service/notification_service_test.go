package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/repository"
	"github.com/dujiao-next/announcements/internal/webhook"
)

// recordingSender 记录投递内容的假发送器
type recordingSender struct {
	mu       sync.Mutex
	urls     []string
	payloads []webhook.DiscordPayload
	result   webhook.DeliveryResult
}

func (s *recordingSender) Send(_ context.Context, webhookURL string, payload webhook.DiscordPayload) webhook.DeliveryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, webhookURL)
	s.payloads = append(s.payloads, payload)
	return s.result
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func enabledNotificationSettings() StaticSettings {
	notification := NotificationDefaultSetting()
	notification.DiscordEnabled = true
	notification.WebhookURL = "https://discord.example.com/api/webhooks/1/abc"
	return StaticSettings{Announcement: AnnouncementDefaultSetting(), Notification: notification}
}

func TestNotifyPublishedDeliversInlineWithoutQueue(t *testing.T) {
	db := setupServiceTestDB(t)
	item := seedAnnouncement(t, db, "launch", constants.AnnouncementStatusPublished, nil)
	sender := &recordingSender{result: webhook.DeliveryResult{Success: true, StatusCode: 204}}
	svc := NewNotificationService(repository.NewAnnouncementRepository(db), enabledNotificationSettings(),
		NewNotificationFormatter(SiteInfo{Name: "Shop", URL: "https://shop.example.com"}, nil, ""), sender, nil, nil)

	svc.NotifyPublished(context.Background(), item.ID)

	if sender.count() != 1 {
		t.Fatalf("want 1 delivery got %d", sender.count())
	}
	if sender.urls[0] != "https://discord.example.com/api/webhooks/1/abc" {
		t.Fatalf("unexpected webhook url %s", sender.urls[0])
	}
	if sender.payloads[0].Embeds[0].Title != "Launch" {
		t.Fatalf("unexpected embed title %q", sender.payloads[0].Embeds[0].Title)
	}
}

func TestNotifyPublishedSkipsWhenDisabled(t *testing.T) {
	db := setupServiceTestDB(t)
	item := seedAnnouncement(t, db, "quiet", constants.AnnouncementStatusPublished, nil)
	sender := &recordingSender{}
	svc := NewNotificationService(repository.NewAnnouncementRepository(db), staticAnnouncementSettings(nil),
		NewNotificationFormatter(SiteInfo{}, nil, ""), sender, nil, nil)

	svc.NotifyPublished(context.Background(), item.ID)
	if sender.count() != 0 {
		t.Fatalf("disabled notification must not deliver")
	}
	if _, err := svc.DeliverPublished(context.Background(), item.ID); !errors.Is(err, ErrWebhookNotConfigured) {
		t.Fatalf("want ErrWebhookNotConfigured got %v", err)
	}
}

func TestDeliverPublishedReportsFailureWithoutError(t *testing.T) {
	db := setupServiceTestDB(t)
	item := seedAnnouncement(t, db, "broken", constants.AnnouncementStatusPublished, nil)
	sender := &recordingSender{result: webhook.DeliveryResult{StatusCode: 500, Message: "boom"}}
	svc := NewNotificationService(repository.NewAnnouncementRepository(db), enabledNotificationSettings(),
		NewNotificationFormatter(SiteInfo{}, nil, ""), sender, nil, nil)

	result, err := svc.DeliverPublished(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("delivery failure must not be an error, got %v", err)
	}
	if result.Success || result.StatusCode != 500 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSendTestRequiresWebhook(t *testing.T) {
	sender := &recordingSender{result: webhook.DeliveryResult{Success: true, StatusCode: 204}}
	svc := NewNotificationService(nil, staticAnnouncementSettings(nil), NewNotificationFormatter(SiteInfo{}, nil, ""), sender, nil, nil)
	if _, err := svc.SendTest(context.Background(), constants.LocaleEnUS); !errors.Is(err, ErrWebhookNotConfigured) {
		t.Fatalf("want ErrWebhookNotConfigured got %v", err)
	}

	svc.settings = enabledNotificationSettings()
	result, err := svc.SendTest(context.Background(), constants.LocaleEnUS)
	if err != nil || !result.Success {
		t.Fatalf("test send want success got %+v err %v", result, err)
	}
	if sender.payloads[0].Embeds[0].Title != "This is a test notification" {
		t.Fatalf("unexpected test title %q", sender.payloads[0].Embeds[0].Title)
	}
}
