package service

import (
	"context"
	"sync"
	"time"

	"github.com/dujiao-next/announcements/internal/cache"
	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/metrics"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
)

const publisherLockTTLDefault = 55 * time.Second

// 扫描跳过原因
const (
	SweepSkipRunning  = "running"
	SweepSkipDisabled = "disabled"
	SweepSkipLocked   = "locked"
)

// PublisherService 定时发布扫描
// 说明：同一进程内 TryLock 保证不重入，启用 Redis 时再以 SET NX 锁避免多实例同时扫描；重叠时直接跳过而非排队。
type PublisherService struct {
	announcementRepo repository.AnnouncementRepository
	settings         AnnouncementSettingProvider
	notifier         AnnouncementNotifier
	metrics          metrics.Recorder
	lockTTL          time.Duration
	acquireLock      func(ctx context.Context, key string, ttl time.Duration) (sweepLock, bool, error)
	now              func() time.Time
	running          sync.Mutex
}

type sweepLock interface {
	Unlock(ctx context.Context) error
}

func acquireCacheLock(ctx context.Context, key string, ttl time.Duration) (sweepLock, bool, error) {
	lock, acquired, err := s.acquireLock(ctx, constants.PublisherLockKey, s.lockTTL)
	if err != nil {
		return SweepResult{}, err
	}
	if !acquired {
		return s.skip(SweepSkipLocked), nil
	}

	result, err := s.promoteDue(lock)
	// 通知在释放锁之后发送
	if s.notifier != nil {
		for _, id := range result.PromotedIDs {
			s.notifier.NotifyPublished(ctx, id)
		}
	}
	return result, err
}

func (s *PublisherService) promoteDue(lock sweepLock) (SweepResult, error) {
	defer func() {
		if err := lock.Unlock(context.Background()); err != nil {
			logger.Warnw("publisher_lock_release_failed", "error", err)
		}
	}()

	started := time.Now()
	result := SweepResult{PromotedIDs: []uint{}}
	due, err := s.announcementRepo.ListDueScheduled(s.now())
	if err != nil {
		return result, err
	}
	for _, item := range due {
		changed, err := s.announcementRepo.PublishScheduled(item.ID)
		if err != nil {
			logger.Errorw("publisher_promote_failed", "announcement_id", item.ID, "error", err)
			s.metrics.RecordPublisherSweep(result.Promoted, time.Since(started))
			return result, err
		}
		if !changed {
			continue
		}
		result.Promoted++
		result.PromotedIDs = append(result.PromotedIDs, item.ID)
		logger.Infow("publisher_announcement_published", "announcement_id", item.ID, "slug", item.Slug)
	}
	s.metrics.RecordPublisherSweep(result.Promoted, time.Since(started))
	return result, nil
}
