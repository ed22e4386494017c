package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aoyama/taskvault/internal/faults"
	"github.com/aoyama/taskvault/internal/models"
)

// GormSettingRepository is a GORM implementation of SettingRepository
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &GormSettingRepository{db: db}
}

// Get returns ("", false) when the key is absent
func (r *GormSettingRepository) Get(key string) (string, bool, error) {
	var setting models.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, faults.Storage("get setting", err)
	}
	return setting.Value, true, nil
}

// Put inserts or replaces a value
func (r *GormSettingRepository) Put(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return faults.Storage("put setting", err)
	}
	return nil
}

// All returns every setting row
func (r *GormSettingRepository) All() ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.Find(&settings).Error; err != nil {
		return nil, faults.Storage("get settings", err)
	}
	return settings, nil
}
