package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/cache"
	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
)

const statsCacheTTLDefault = 45 * time.Second

// StatsService 公告统计服务
// 说明：按日序列为每日增量（非累计），窗口从 today-N 天 00:00 UTC 起至今日结束。
type StatsService struct {
	announcementRepo repository.AnnouncementRepository
	statsRepo        repository.StatsRepository
	cacheTTL         time.Duration
	now              func() time.Time
}

// NewStatsService 创建统计服务
func NewStatsService(announcementRepo repository.AnnouncementRepository, statsRepo repository.StatsRepository, cacheTTL time.Duration) *StatsService {
	if cacheTTL <= 0 {
		cacheTTL = statsCacheTTLDefault
	}
	return &StatsService{
		announcementRepo: announcementRepo,
		statsRepo:        statsRepo,
		cacheTTL:         cacheTTL,
		now:              models.NowUTC,
	}
}

// DailyPoint 按日统计点
type DailyPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ReferrerStat 来源统计
type ReferrerStat struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

// AnnouncementStats 单篇公告统计
type AnnouncementStats struct {
	AnnouncementID uint           `json:"announcement_id"`
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Period         string         `json:"period"`
	From           string         `json:"from"`
	To             string         `json:"to"`
	TotalViews     int64          `json:"total_views"`
	UniqueViews    int64          `json:"unique_views"`
	TotalLikes     int64          `json:"total_likes"`
	ViewsByDay     []DailyPoint   `json:"views_by_day"`
	LikesByDay     []DailyPoint   `json:"likes_by_day"`
	TopReferrers   []ReferrerStat `json:"top_referrers"`
}

// LeaderboardItem 排行项
type LeaderboardItem struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Status     string `json:"status"`
	ViewsCount int64  `json:"views_count"`
	LikesCount int64  `json:"likes_count"`
}

// GlobalStats 全局统计
// 说明：窗口浏览总数来自事件表，点赞总数与排行为全量计数器，两者口径不同。
type GlobalStats struct {
	Period         string            `json:"period"`
	From           string            `json:"from"`
	To             string            `json:"to"`
	TotalItems     int64             `json:"total_items"`
	PublishedItems int64             `json:"published_items"`
	DraftItems     int64             `json:"draft_items"`
	ScheduledItems int64             `json:"scheduled_items"`
	ArchivedItems  int64             `json:"archived_items"`
	ViewsInPeriod  int64             `json:"views_in_period"`
	UniqueViewers  int64             `json:"unique_viewers"`
	TotalLikes     int64             `json:"total_likes"`
	ViewsByDay     []DailyPoint      `json:"views_by_day"`
	TopReferrers   []ReferrerStat    `json:"top_referrers"`
	TopByViews     []LeaderboardItem `json:"top_by_views"`
	TopByLikes     []LeaderboardItem `json:"top_by_likes"`
	GeneratedAt    string            `json:"generated_at"`
	FromCache      bool              `json:"from_cache"`
}

// GlobalStatsInput 全局统计查询输入
type GlobalStatsInput struct {
	Period       string
	ForceRefresh bool
}

type statsWindow struct {
	period  string
	startAt time.Time
	endAt   time.Time
}

// resolveStatsWindow 将周期映射为 [startAt, endAt) 窗口，两端按自然日包含
func resolveStatsWindow(period string, now time.Time) (statsWindow, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = constants.StatsPeriod30d
	}
	now = now.UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	window := statsWindow{period: period, endAt: todayStart.AddDate(0, 0, 1)}

	switch period {
	case constants.StatsPeriod7d:
		window.startAt = todayStart.AddDate(0, 0, -7)
	case constants.StatsPeriod30d:
		window.startAt = todayStart.AddDate(0, 0, -30)
	case constants.StatsPeriod90d:
		window.startAt = todayStart.AddDate(0, 0, -90)
	case constants.StatsPeriod1y:
		window.startAt = todayStart.AddDate(-1, 0, 0)
	default:
		return statsWindow{}, ErrPeriodInvalid
	}
	return window, nil
}

// NormalizeStatsPeriod 校验并归一化统计周期
func NormalizeStatsPeriod(period string) (string, error) {
	window, err := resolveStatsWindow(period, time.Now())
	if err != nil {
		return "", err
	}
	return window.period, nil
}

// buildDaySeries 逐日补零
func buildDaySeries(rows []repository.DayCountRow, window statsWindow) []DailyPoint {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		day := strings.TrimSpace(row.Day)
		if len(day) > 10 {
			day = day[:10]
		}
		counts[day] += row.Total
	}
	points := make([]DailyPoint, 0)
	for cursor := window.startAt; cursor.Before(window.endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		points = append(points, DailyPoint{Date: day, Count: counts[day]})
	}
	return points
}

func toReferrerStats(rows []repository.ReferrerCountRow) []ReferrerStat {
	result := make([]ReferrerStat, 0, len(rows))
	for _, row := range rows {
		result = append(result, ReferrerStat{Referrer: row.Referrer, Count: row.Total})
	}
	return result
}

func toLeaderboard(items []models.Announcement) []LeaderboardItem {
	result := make([]LeaderboardItem, 0, len(items))
	for _, item := range items {
		result = append(result, LeaderboardItem{
			ID:         item.ID,
			Title:      item.Title,
			Slug:       item.Slug,
			Status:     item.Status,
			ViewsCount: item.ViewsCount,
			LikesCount: item.LikesCount,
		})
	}
	return result
}

// GetStats 获取单篇公告统计
func (s *StatsService) GetStats(announcementID uint, period string) (*AnnouncementStats, error) {
	window, err := resolveStatsWindow(period, s.now())
	if err != nil {
		return nil, err
	}
	item, err := s.announcementRepo.GetByID(announcementID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	viewRows, err := s.statsRepo.CountViewsByDay(item.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	likeRows, err := s.statsRepo.CountLikesByDay(item.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	unique, err := s.statsRepo.CountUniqueViewers(item.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	referrers, err := s.statsRepo.TopReferrers(item.ID, window.startAt, window.endAt, constants.TopReferrersLimit)
	if err != nil {
		return nil, err
	}

	return &AnnouncementStats{
		AnnouncementID: item.ID,
		Slug:           item.Slug,
		Title:          item.Title,
		Period:         window.period,
		From:           window.startAt.Format("2006-01-02"),
		To:             window.endAt.AddDate(0, 0, -1).Format("2006-01-02"),
		TotalViews:     item.ViewsCount,
		UniqueViews:    unique,
		TotalLikes:     item.LikesCount,
		ViewsByDay:     buildDaySeries(viewRows, window),
		LikesByDay:     buildDaySeries(likeRows, window),
		TopReferrers:   toReferrerStats(referrers),
	}, nil
}

// GetGlobalStats 获取全局统计（短时缓存）
func (s *StatsService) GetGlobalStats(ctx context.Context, input GlobalStatsInput) (*GlobalStats, error) {
	now := s.now()
	window, err := resolveStatsWindow(input.Period, now)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(constants.GlobalStatsCacheKeyFmt, window.period)
	if !input.ForceRefresh {
		var cached GlobalStats
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	stats := &GlobalStats{
		Period:      window.period,
		From:        window.startAt.Format("2006-01-02"),
		To:          window.endAt.AddDate(0, 0, -1).Format("2006-01-02"),
		GeneratedAt: now.Format(time.RFC3339),
	}
	counts := []struct {
		status string
		target *int64
	}{
		{"", &stats.TotalItems},
		{constants.AnnouncementStatusPublished, &stats.PublishedItems},
		{constants.AnnouncementStatusDraft, &stats.DraftItems},
		{constants.AnnouncementStatusScheduled, &stats.ScheduledItems},
		{constants.AnnouncementStatusArchived, &stats.ArchivedItems},
	}
	for _, entry := range counts {
		value, err := s.announcementRepo.Count(entry.status)
		if err != nil {
			return nil, err
		}
		*entry.target = value
	}

	if stats.ViewsInPeriod, err = s.statsRepo.CountViewsBetween(0, window.startAt, window.endAt); err != nil {
		return nil, err
	}
	if stats.UniqueViewers, err = s.statsRepo.CountUniqueViewers(0, window.startAt, window.endAt); err != nil {
		return nil, err
	}
	if stats.TotalLikes, err = s.announcementRepo.SumLikes(); err != nil {
		return nil, err
	}
	viewRows, err := s.statsRepo.CountViewsByDay(0, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	stats.ViewsByDay = buildDaySeries(viewRows, window)
	referrers, err := s.statsRepo.TopReferrers(0, window.startAt, window.endAt, constants.TopReferrersLimit)
	if err != nil {
		return nil, err
	}
	stats.TopReferrers = toReferrerStats(referrers)

	topViews, err := s.announcementRepo.ListTop(counterViews, constants.GlobalLeaderboardLimit)
	if err != nil {
		return nil, err
	}
	topLikes, err := s.announcementRepo.ListTop(counterLikes, constants.GlobalLeaderboardLimit)
	if err != nil {
		return nil, err
	}
	stats.TopByViews = toLeaderboard(topViews)
	stats.TopByLikes = toLeaderboard(topLikes)

	_ = cache.SetJSON(ctx, cacheKey, stats, s.cacheTTL)
	return stats, nil
}
