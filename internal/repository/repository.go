package repository

import (
	"github.com/aoyama/taskvault/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// GetAll returns every task
	GetAll() ([]models.Task, error)

	// GetByCategory returns tasks referencing a category
	GetByCategory(categoryID string) ([]models.Task, error)

	// GetByStatus returns tasks filtered by completion state
	GetByStatus(completed bool) ([]models.Task, error)

	// GetToday returns tasks due within the current local day
	GetToday() ([]models.Task, error)

	// GetOverdue returns uncompleted tasks whose due date has passed
	GetOverdue() ([]models.Task, error)

	// Add constructs a task with defaults, persists it and returns it
	Add(data models.Task) (*models.Task, error)

	// Update merges changes into a task, stamps UpdatedAt and returns the
	// full updated record
	Update(id string, changes TaskChanges) (*models.Task, error)

	// Delete removes a task by id
	Delete(id string) error

	// ToggleCompletion flips a task's completed flag and returns the new
	// value; a missing record is a no-op reported as (false, nil)
	ToggleCompletion(id string) (bool, error)

	// Search matches a query case-insensitively against title, description
	// and tags
	Search(query string) ([]models.Task, error)

	// CountByCategory counts tasks referencing a category
	CountByCategory(categoryID string) (int64, error)
}

// TaskChanges holds the fields an update may touch; nil pointers leave the
// stored value alone. ClearDueDate removes the due date entirely.
type TaskChanges struct {
	Title        *string
	Description  *string
	Completed    *bool
	Priority     *models.Priority
	CategoryID   *string
	Tags         *models.Tags
	DueDate      *string
	ClearDueDate bool
	Order        *int
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// GetAll returns all categories ordered by their manual sort key
	GetAll() ([]models.Category, error)

	// GetByID returns (nil, nil) when the category does not exist
	GetByID(id string) (*models.Category, error)

	// Add constructs a category with defaults, persists it and returns it
	Add(data models.Category) (*models.Category, error)

	// Update merges changes into a category and returns the full record
	Update(id string, changes CategoryChanges) (*models.Category, error)

	// Delete removes a category; rejected with a conflict fault while any
	// task still references it
	Delete(id string) error

	// Reorder rewrites sort keys to the positional index of each id
	Reorder(idsInOrder []string) error
}

// CategoryChanges holds the fields a category update may touch.
type CategoryChanges struct {
	Name  *string
	Icon  *string
	Color *string
	Order *int
}

// SettingRepository defines the interface for the key/value settings rows
type SettingRepository interface {
	// Get returns ("", false) when the key is absent
	Get(key string) (string, bool, error)

	// Put inserts or replaces a value
	Put(key, value string) error

	// All returns every setting row
	All() ([]models.Setting, error)
}
