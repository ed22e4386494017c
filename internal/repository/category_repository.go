package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/aoyama/taskvault/internal/faults"
	"github.com/aoyama/taskvault/internal/models"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

// GetAll returns all categories ordered by their manual sort key
func (r *GormCategoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("sort_order ASC").Find(&categories).Error; err != nil {
		return nil, faults.Storage("get categories", err)
	}
	return categories, nil
}

// GetByID is a tolerant read: a missing category reports (nil, nil) rather
// than a fault.
func (r *GormCategoryRepository) GetByID(id string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Storage("get category", err)
	}
	return &category, nil
}

// Add constructs a category with defaults, persists it and returns it
func (r *GormCategoryRepository) Add(data models.Category) (*models.Category, error) {
	category := models.NewCategory(data)
	if err := r.db.Create(&category).Error; err != nil {
		return nil, faults.Storage("add category", err)
	}
	return &category, nil
}

// Update merges changes into a category and returns the full record
func (r *GormCategoryRepository) Update(id string, changes CategoryChanges) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, faults.NotFound("category", id)
	}
	if err != nil {
		return nil, faults.Storage("find category", err)
	}

	if changes.Name != nil {
		category.Name = *changes.Name
	}
	if changes.Icon != nil {
		category.Icon = *changes.Icon
	}
	if changes.Color != nil {
		category.Color = *changes.Color
	}
	if changes.Order != nil {
		category.Order = *changes.Order
	}

	if err := r.db.Save(&category).Error; err != nil {
		return nil, faults.Storage("update category", err)
	}
	return &category, nil
}

// Delete removes a category unless tasks still reference it. The guard and
// the delete run in one transaction so a concurrent insert cannot slip a
// referencing task past the check.
func (r *GormCategoryRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Task{}).Where("category = ?", id).Count(&count).Error
		if err != nil {
			return faults.Storage("count category tasks", err)
		}
		if count > 0 {
			return faults.ErrCategoryInUse
		}

		if err := tx.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
			return faults.Storage("delete category", err)
		}
		return nil
	})
}

// Reorder rewrites sort keys to the positional index of each id. The input
// must be a permutation of every existing category id; partial sequences are
// rejected so no category silently loses its place.
func (r *GormCategoryRepository) Reorder(idsInOrder []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&models.Category{}).Count(&total).Error; err != nil {
			return faults.Storage("count categories", err)
		}
		if int64(len(idsInOrder)) != total {
			return faults.Conflict("reorder sequence must include every category")
		}

		seen := make(map[string]struct{}, len(idsInOrder))
		for position, id := range idsInOrder {
			if _, dup := seen[id]; dup {
				return faults.Conflict("reorder sequence contains duplicate ids")
			}
			seen[id] = struct{}{}

			result := tx.Model(&models.Category{}).Where("id = ?", id).
				Update("sort_order", position)
			if result.Error != nil {
				return faults.Storage("reorder categories", result.Error)
			}
			if result.RowsAffected == 0 {
				return faults.NotFound("category", id)
			}
		}
		return nil
	})
}
