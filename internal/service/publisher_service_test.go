package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/repository"
)

type recordingNotifier struct {
	mu  sync.Mutex
	ids []uint
}

func (n *recordingNotifier) NotifyPublished(_ context.Context, announcementID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, announcementID)
}

func TestSweepPromotesOnlyDueItems(t *testing.T) {
	db := setupServiceTestDB(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	due := seedAnnouncement(t, db, "due", constants.AnnouncementStatusScheduled, timePtrUTC(now.Add(-time.Minute)))
	later := seedAnnouncement(t, db, "later", constants.AnnouncementStatusScheduled, timePtrUTC(now.Add(time.Hour)))
	draft := seedAnnouncement(t, db, "draft", constants.AnnouncementStatusDraft, timePtrUTC(now.Add(-time.Hour)))

	notifier := &recordingNotifier{}
	svc := NewPublisherService(repository.NewAnnouncementRepository(db), staticAnnouncementSettings(nil), notifier, nil, time.Second)
	svc.now = func() time.Time { return now }

	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Promoted != 1 || len(result.PromotedIDs) != 1 || result.PromotedIDs[0] != due.ID {
		t.Fatalf("unexpected sweep result %+v", result)
	}
	promoted := reloadAnnouncement(t, db, due.ID)
	if promoted.Status != constants.AnnouncementStatusPublished {
		t.Fatalf("due item want published got %s", promoted.Status)
	}
	if !promoted.PublishedAt.Equal(now.Add(-time.Minute)) {
		t.Fatalf("published_at must be unchanged, got %v", promoted.PublishedAt)
	}
	if got := reloadAnnouncement(t, db, later.ID).Status; got != constants.AnnouncementStatusScheduled {
		t.Fatalf("future item want scheduled got %s", got)
	}
	if got := reloadAnnouncement(t, db, draft.ID).Status; got != constants.AnnouncementStatusDraft {
		t.Fatalf("draft item must stay draft got %s", got)
	}
	if len(notifier.ids) != 1 || notifier.ids[0] != due.ID {
		t.Fatalf("notifier want [%d] got %v", due.ID, notifier.ids)
	}

	again, err := svc.Sweep(context.Background())
	if err != nil || again.Promoted != 0 {
		t.Fatalf("second sweep must be a noop, got %+v err %v", again, err)
	}
}

func TestSweepSkipsWhenAlreadyRunning(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewPublisherService(repository.NewAnnouncementRepository(db), staticAnnouncementSettings(nil), nil, nil, time.Second)

	svc.running.Lock()
	result, err := svc.Sweep(context.Background())
	svc.running.Unlock()
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if !result.Skipped || result.Reason != SweepSkipRunning {
		t.Fatalf("overlapping sweep must be skipped, got %+v", result)
	}
}

func TestSweepSkipsWhenSchedulingDisabled(t *testing.T) {
	db := setupServiceTestDB(t)
	now := time.Now().UTC()
	item := seedAnnouncement(t, db, "paused", constants.AnnouncementStatusScheduled, timePtrUTC(now.Add(-time.Minute)))
	settings := staticAnnouncementSettings(func(s *AnnouncementSetting) { s.SchedulingEnabled = false })
	svc := NewPublisherService(repository.NewAnnouncementRepository(db), settings, nil, nil, time.Second)

	result, err := svc.Sweep(context.Background())
	if err != nil || !result.Skipped || result.Reason != SweepSkipDisabled {
		t.Fatalf("disabled scheduling must skip, got %+v err %v", result, err)
	}
	if got := reloadAnnouncement(t, db, item.ID).Status; got != constants.AnnouncementStatusScheduled {
		t.Fatalf("item must stay scheduled got %s", got)
	}
}

func timePtrUTC(value time.Time) *time.Time {
	v := value.UTC()
	return &v
}

type flagLock struct {
	released bool
}

func (l *flagLock) Unlock(context.Context) error {
	l.released = true
	return nil
}

type notifyFunc func(ctx context.Context, announcementID uint)

func (f notifyFunc) NotifyPublished(ctx context.Context, announcementID uint) { f(ctx, announcementID) }

func TestSweepNotifiesAfterReleasingLock(t *testing.T) {
	db := setupServiceTestDB(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	first := seedAnnouncement(t, db, "first", constants.AnnouncementStatusScheduled, timePtrUTC(now.Add(-2*time.Minute)))
	second := seedAnnouncement(t, db, "second", constants.AnnouncementStatusScheduled, timePtrUTC(now.Add(-time.Minute)))

	lock := &flagLock{}
	var notified []uint
	notifier := notifyFunc(func(_ context.Context, id uint) {
		if !lock.released {
			t.Fatalf("announcement %d notified while the sweep lock was held", id)
		}
		notified = append(notified, id)
	})
	svc := NewPublisherService(repository.NewAnnouncementRepository(db), staticAnnouncementSettings(nil), notifier, nil, time.Second)
	svc.now = func() time.Time { return now }
	svc.acquireLock = func(context.Context, string, time.Duration) (sweepLock, bool, error) {
		return lock, true, nil
	}

	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Promoted != 2 || len(notified) != 2 {
		t.Fatalf("want 2 promoted and notified, got %+v notified=%v", result, notified)
	}
	if !(notified[0] == first.ID && notified[1] == second.ID) && !(notified[0] == second.ID && notified[1] == first.ID) {
		t.Fatalf("unexpected notified ids %v", notified)
	}
}
