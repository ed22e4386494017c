package database

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aoyama/taskvault/internal/constants"
	"github.com/aoyama/taskvault/internal/models"
)

// Migrate brings the store schema up to the current version: table shapes via
// AutoMigrate, the secondary index sets, and the recorded schema version.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Task{},
		&models.Category{},
		&models.Setting{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := addIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	stored, err := storedSchemaVersion(db)
	if err != nil {
		return err
	}
	if stored < constants.SchemaVersion {
		if err := migrateFrom(db, stored, constants.SchemaVersion); err != nil {
			return fmt.Errorf("failed to upgrade schema from v%d: %w", stored, err)
		}
		if err := recordSchemaVersion(db, constants.SchemaVersion); err != nil {
			return err
		}
	}

	return nil
}

// addIndexes creates the secondary indexes the query surface relies on.
// Index definition changes must be paired with a SchemaVersion bump.
func addIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for the category/status/date query paths
		{"tasks", "idx_tasks_category", "category"},
		{"tasks", "idx_tasks_completed", "completed"},
		{"tasks", "idx_tasks_due_date", "due_date"},
		{"tasks", "idx_tasks_priority", "priority"},
		{"tasks", "idx_tasks_created_at", "created_at"},

		// Category manual sort order
		{"categories", "idx_categories_sort_order", "sort_order"},
	}

	for _, idx := range indexes {
		sql := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// migrateFrom hosts stepwise upgrades between schema versions. Version 1 is
// the first published schema, so opening an unversioned (v0) store needs no
// data rewriting; future index reshapes hang their transitions here.
func migrateFrom(db *gorm.DB, from, to int) error {
	for v := from; v < to; v++ {
		switch v {
		case 0:
			// v0 -> v1: initial schema, nothing to rewrite.
		default:
			return fmt.Errorf("no upgrade path from schema v%d", v)
		}
	}
	log.Printf("Schema upgraded from v%d to v%d", from, to)
	return nil
}

func storedSchemaVersion(db *gorm.DB) (int, error) {
	var setting models.Setting
	err := db.Where("key = ?", constants.SettingSchemaVersion).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	version, err := strconv.Atoi(setting.Value)
	if err != nil {
		return 0, fmt.Errorf("stored schema version %q is not a number: %w", setting.Value, err)
	}
	return version, nil
}

func recordSchemaVersion(db *gorm.DB, version int) error {
	setting := models.Setting{Key: constants.SettingSchemaVersion, Value: strconv.Itoa(version)}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
