package repository

import (
	"strings"

	"github.com/dujiao-next/announcements/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 后台账号（公告作者）
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	List() ([]models.Admin, error)
	ListByIDs(ids []uint) ([]models.Admin, error)
	Count() (int64, error)
	Create(admin *models.Admin) error
	Update(admin *models.Admin) error
}

// UserRepository 前台读者账号
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
}

type GormAdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	return firstOrNil[models.Admin](r.db.Where("username = ?", username))
}

func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	return firstOrNil[models.Admin](r.db, id)
}

// List 按创建顺序返回全部账号
func (r *GormAdminRepository) List() ([]models.Admin, error) {
	var admins []models.Admin
	if err := r.db.Order("id ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

// ListByIDs 批量加载作者署名，仅取公开字段
func (r *GormAdminRepository) ListByIDs(ids []uint) ([]models.Admin, error) {
	admins := make([]models.Admin, 0, len(ids))
	if len(ids) == 0 {
		return admins, nil
	}
	if err := r.db.Select("id", "username", "display_name", "is_super", "created_at").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *GormAdminRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

func (r *GormAdminRepository) Update(admin *models.Admin) error {
	return r.db.Save(admin).Error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail 邮箱大小写不敏感
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return firstOrNil[models.User](r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	return firstOrNil[models.User](r.db, id)
}

func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}
