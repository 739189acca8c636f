package repository

import (
	"github.com/dujiao-next/announcements/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 键值设置存取
type SettingRepository interface {
	GetByKey(key string) (*models.Setting, error)
	ListByKeys(keys []string) ([]models.Setting, error)
	Upsert(key string, value models.JSON) (*models.Setting, error)
}

type GormSettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

func (r *GormSettingRepository) GetByKey(key string) (*models.Setting, error) {
	return firstOrNil[models.Setting](r.db.Where("key = ?", key))
}

// ListByKeys 缺失的键不报错，直接不出现在结果中
func (r *GormSettingRepository) ListByKeys(keys []string) ([]models.Setting, error) {
	settings := []models.Setting{}
	if len(keys) == 0 {
		return settings, nil
	}
	if err := r.db.Where("key IN ?", keys).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Upsert 单条语句写入，主键冲突时覆盖 value
func (r *GormSettingRepository) Upsert(key string, value models.JSON) (*models.Setting, error) {
	setting := &models.Setting{Key: key, ValueJSON: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_json", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}
