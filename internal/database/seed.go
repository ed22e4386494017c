package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/aoyama/taskvault/internal/constants"
	"github.com/aoyama/taskvault/internal/models"
)

// Seed inserts the default categories and theme setting. Categories are
// seeded only when the table is empty, so user-deleted defaults stay deleted.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}

	if count == 0 {
		defaults := models.DefaultCategories()
		if err := db.Create(&defaults).Error; err != nil {
			return fmt.Errorf("failed to seed default categories: %w", err)
		}
		log.Println("Default categories initialized")
	}

	var theme models.Setting
	err := db.Where("key = ?", constants.SettingTheme).First(&theme).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		theme = models.Setting{Key: constants.SettingTheme, Value: constants.ThemeLight}
		if err := db.Create(&theme).Error; err != nil {
			return fmt.Errorf("failed to seed theme setting: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to read theme setting: %w", err)
	}

	return nil
}
