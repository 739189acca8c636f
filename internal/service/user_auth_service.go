package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/cache"
	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/constants"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
)

// UserAuthService 读者账号，authenticated 点赞模式依赖此身份
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository) *UserAuthService {
	return &UserAuthService{cfg: cfg, userRepo: userRepo, now: models.NowUTC}
}

// IssueToken 签发读者 Token，ttl<=0 时使用默认有效期
func (s *UserAuthService) IssueToken(user *models.User, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = hoursOr(s.cfg.UserJWT.ExpireHours, 24)
	}
	claims := UserClaims{
		UserID:           user.ID,
		Email:            user.Email,
		TokenVersion:     user.TokenVersion,
		RegisteredClaims: registeredClaims(s.now(), ttl),
	}
	signed, err := signHS256(s.cfg.UserJWT.SecretKey, claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

// ParseToken 解析读者 Token
func (s *UserAuthService) ParseToken(raw string) (*UserClaims, error) {
	return ParseUserToken(s.cfg.UserJWT.SecretKey, raw)
}

// RegisterInput 读者注册
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Locale      string
}

// Register 注册后直接登录
func (s *UserAuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, time.Time, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if existing != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = emailLocalPart(email)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Locale:       resolveUserLocale(input.Locale),
		Status:       constants.UserStatusActive,
	}
	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, err
	}
	return s.startSession(ctx, user, 0)
}

// Login 登录，rememberMe 时使用更长的有效期
func (s *UserAuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if VerifyPassword(user.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	ttl := hoursOr(s.cfg.UserJWT.ExpireHours, 24)
	if rememberMe {
		ttl = hoursOr(s.cfg.UserJWT.RememberMeExpireHours, int(ttl/time.Hour))
	}
	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	return s.startSession(ctx, user, ttl)
}

func (s *UserAuthService) startSession(ctx context.Context, user *models.User, ttl time.Duration) (*models.User, string, time.Time, error) {
	token, expiresAt, err := s.IssueToken(user, ttl)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.StoreSession(ctx, cache.UserSession(user))
	return user, token, expiresAt, nil
}

// GetUserByID 当前读者资料
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveUserLocale(locale string) string {
	for _, supported := range constants.SupportedLocales {
		if strings.EqualFold(strings.TrimSpace(locale), supported) {
			return supported
		}
	}
	return constants.LocaleZhCN
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
