package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/metrics"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"

	"gorm.io/gorm"
)

const (
	counterViews = "views_count"
	counterLikes = "likes_count"
)

// EngagementService 浏览与点赞记录服务
type EngagementService struct {
	announcementRepo repository.AnnouncementRepository
	engagementRepo   repository.EngagementRepository
	settings         AnnouncementSettingProvider
	metrics          metrics.Recorder
	now              func() time.Time
}

// NewEngagementService 创建互动服务
func NewEngagementService(
	announcementRepo repository.AnnouncementRepository,
	engagementRepo repository.EngagementRepository,
	settings AnnouncementSettingProvider,
	recorder metrics.Recorder,
) *EngagementService {
	return &EngagementService{
		announcementRepo: announcementRepo,
		engagementRepo:   engagementRepo,
		settings:         settings,
		metrics:          metrics.OrNop(recorder),
		now:              models.NowUTC,
	}
}

// ViewResult 浏览记录结果，Counted=false 表示被去重或按策略忽略（非错误）
type ViewResult struct {
	Counted    bool  `json:"counted"`
	ViewsCount int64 `json:"views_count"`
}

// LikeResult 点赞切换结果
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

func (s *EngagementService) loadSetting() AnnouncementSetting {
	if s.settings == nil {
		return AnnouncementDefaultSetting()
	}
	setting, err := s.settings.GetAnnouncementSetting()
	if err != nil {
		logger.Warnw("engagement_setting_load_failed", "error", err)
		return AnnouncementDefaultSetting()
	}
	return setting
}

// RecordView 按 view_mode 记录一次浏览
func (s *EngagementService) RecordView(announcementID uint, req VisitorRequest) (*ViewResult, error) {
	setting := s.loadSetting()
	if setting.ViewMode == constants.ViewModeAuthenticated && req.UserID == 0 {
		item, err := s.announcementRepo.GetByID(announcementID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, ErrNotFound
		}
		s.metrics.RecordView(false)
		return &ViewResult{Counted: false, ViewsCount: item.ViewsCount}, nil
	}

	identity := resolveViewIdentity(req)
	window := time.Duration(setting.ViewWindow) * time.Minute
	if setting.ViewMode == constants.ViewModeTotal {
		window = 0
	}
	return s.recordView(announcementID, identity, HashValue(req.UserAgent), req.Referrer, window)
}

// recordView 在事务内检查窗口内是否已有同身份浏览，未命中时写入事件并递增计数；window<=0 表示不去重
func (s *EngagementService) recordView(announcementID uint, identity VisitorIdentity, userAgentHash, referrer string, window time.Duration) (*ViewResult, error) {
	if identity.Empty() {
		return nil, ErrIdentityMissing
	}
	now := s.now()
	result := &ViewResult{}

	err := s.announcementRepo.Transaction(func(tx *gorm.DB) error {
		announcementRepo := s.announcementRepo.WithTx(tx)
		engagementRepo := s.engagementRepo.WithTx(tx)

		item, err := announcementRepo.GetByIDForUpdate(announcementID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrNotFound
		}

		if window > 0 {
			seen, err := engagementRepo.HasViewSince(announcementID, identity.UserID, identity.IPHash, now.Add(-window))
			if err != nil {
				return err
			}
			if seen {
				result.ViewsCount = item.ViewsCount
				return nil
			}
		}

		view := &models.AnnouncementView{
			AnnouncementID: announcementID,
			UserID:         identity.UserID,
			IPHash:         identity.IPHash,
			UserAgentHash:  userAgentHash,
			Referrer:       truncateReferrer(referrer),
			ViewedAt:       now,
		}
		if err := engagementRepo.CreateView(view); err != nil {
			return err
		}
		count, err := announcementRepo.AdjustCounter(announcementID, counterViews, 1)
		if err != nil {
			return err
		}
		result.Counted = true
		result.ViewsCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordView(result.Counted)
	return result, nil
}

// checkLikePolicy 点赞策略校验（关闭、需登录）
func checkLikePolicy(setting AnnouncementSetting, req VisitorRequest) error {
	if !setting.LikesEnabled {
		return newPolicyError(ErrLikesDisabled, false)
	}
	if setting.LikesMode == constants.LikesModeAuthenticated && req.UserID == 0 {
		return newPolicyError(ErrLikeRequiresAuth, true)
	}
	return nil
}

// ToggleLike 切换点赞状态
func (s *EngagementService) ToggleLike(announcementID uint, req VisitorRequest) (*LikeResult, error) {
	setting := s.loadSetting()
	if err := checkLikePolicy(setting, req); err != nil {
		return nil, err
	}
	identity := ResolveIdentity(req.IP, req.UserID, req.CookieID, setting.LikesMode)
	return s.toggleLike(announcementID, identity)
}

func (s *EngagementService) toggleLike(announcementID uint, identity VisitorIdentity) (*LikeResult, error) {
	if identity.Empty() {
		return nil, ErrIdentityMissing
	}
	result := &LikeResult{}

	err := s.announcementRepo.Transaction(func(tx *gorm.DB) error {
		announcementRepo := s.announcementRepo.WithTx(tx)
		engagementRepo := s.engagementRepo.WithTx(tx)

		item, err := announcementRepo.GetByIDForUpdate(announcementID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrNotFound
		}

		existing, err := engagementRepo.FindLike(announcementID, identity.UserID, identity.IPHash)
		if err != nil {
			return err
		}
		delta := int64(1)
		if existing != nil {
			if err := engagementRepo.DeleteLike(existing.ID); err != nil {
				return err
			}
			delta = -1
		} else {
			like := &models.AnnouncementLike{
				AnnouncementID: announcementID,
				UserID:         identity.UserID,
				IPHash:         identity.IPHash,
				CookieID:       identity.CookieID,
			}
			if err := engagementRepo.CreateLike(like); err != nil {
				return err
			}
			result.Liked = true
		}
		count, err := announcementRepo.AdjustCounter(announcementID, counterLikes, delta)
		if err != nil {
			return err
		}
		result.LikesCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLike(result.Liked)
	logger.Debugw("engagement_like_toggled",
		"announcement_id", announcementID,
		"liked", result.Liked,
		"likes_count", result.LikesCount,
	)
	return result, nil
}

// HasLiked 当前访客是否已点赞，策略不允许时返回 false
func (s *EngagementService) HasLiked(announcementID uint, req VisitorRequest) (bool, error) {
	setting := s.loadSetting()
	if checkLikePolicy(setting, req) != nil {
		return false, nil
	}
	identity := ResolveIdentity(req.IP, req.UserID, req.CookieID, setting.LikesMode)
	if identity.Empty() {
		return false, nil
	}
	like, err := s.engagementRepo.FindLike(announcementID, identity.UserID, identity.IPHash)
	if err != nil {
		return false, err
	}
	return like != nil, nil
}

func truncateReferrer(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if utf8.RuneCountInString(referrer) <= constants.ReferrerMaxLength {
		return referrer
	}
	return string([]rune(referrer)[:constants.ReferrerMaxLength])
}
