package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/cache"
	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/models"
	"github.com/dujiao-next/announcements/internal/repository"
)

// AuthService 后台账号：登录、建号、改密与署名
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
	now       func() time.Time
}

func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, adminRepo: adminRepo, now: models.NowUTC}
}

// ValidatePassword 按配置的密码策略校验
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// IssueToken 签发后台 Token
func (s *AuthService) IssueToken(admin *models.Admin) (string, time.Time, error) {
	claims := AdminClaims{
		AdminID:          admin.ID,
		Username:         admin.Username,
		TokenVersion:     admin.TokenVersion,
		RegisteredClaims: registeredClaims(s.now(), hoursOr(s.cfg.JWT.ExpireHours, 24)),
	}
	signed, err := signHS256(s.cfg.JWT.SecretKey, claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

// ParseToken 解析后台 Token
func (s *AuthService) ParseToken(raw string) (*AdminClaims, error) {
	return ParseAdminToken(s.cfg.JWT.SecretKey, raw)
}

// Login 校验账号密码并签发 Token
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil || VerifyPassword(admin.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.IssueToken(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := s.now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.StoreSession(ctx, cache.AdminSession(admin))
	return admin, token, expiresAt, nil
}

// CreateAdminInput 新建后台账号
type CreateAdminInput struct {
	Username    string
	DisplayName string
	Password    string
	IsSuper     bool
}

// CreateAdmin 新建后台账号（种子命令与账号管理）
func (s *AuthService) CreateAdmin(input CreateAdminInput) (*models.Admin, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}
	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Username:     username,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
		IsSuper:      input.IsSuper,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ChangePassword 改密后吊销该账号全部旧 Token
func (s *AuthService) ChangePassword(ctx context.Context, adminID uint, oldPassword, newPassword string) error {
	admin, err := s.mustGet(adminID)
	if err != nil {
		return err
	}
	if VerifyPassword(admin.PasswordHash, oldPassword) != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hash
	admin.Revoke(s.now())
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	_ = cache.StoreSession(ctx, cache.AdminSession(admin))
	return nil
}

// UpdateProfile 修改作者署名，空值时公告回退为账号名
func (s *AuthService) UpdateProfile(adminID uint, displayName string) (*models.Admin, error) {
	admin, err := s.mustGet(adminID)
	if err != nil {
		return nil, err
	}
	admin.DisplayName = strings.TrimSpace(displayName)
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) mustGet(adminID uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}
	return admin, nil
}
