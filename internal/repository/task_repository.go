package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aoyama/taskvault/internal/faults"
	"github.com/aoyama/taskvault/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// GetAll returns every task
func (r *GormTaskRepository) GetAll() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Find(&tasks).Error; err != nil {
		return nil, faults.Storage("get tasks", err)
	}
	return tasks, nil
}

// GetByCategory returns tasks referencing a category
func (r *GormTaskRepository) GetByCategory(categoryID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("category = ?", categoryID).Find(&tasks).Error; err != nil {
		return nil, faults.Storage("get tasks by category", err)
	}
	return tasks, nil
}

// GetByStatus returns tasks filtered by completion state
func (r *GormTaskRepository) GetByStatus(completed bool) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("completed = ?", completed).Find(&tasks).Error; err != nil {
		return nil, faults.Storage("get tasks by status", err)
	}
	return tasks, nil
}

// GetToday returns tasks whose due date falls within the current local day.
// Candidates are narrowed on the due_date index, then filtered through the
// same parsed-time window the in-memory views use, so both stay consistent
// across the date formats an imported document may carry.
func (r *GormTaskRepository) GetToday() ([]models.Task, error) {
	candidates, err := r.dueDated("get today tasks")
	if err != nil {
		return nil, err
	}

	start, end := models.DayWindow(time.Now())
	var tasks []models.Task
	for _, t := range candidates {
		if due, ok := t.DueTime(); ok && !due.Before(start) && due.Before(end) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// GetOverdue returns uncompleted tasks whose due date is strictly in the past
func (r *GormTaskRepository) GetOverdue() ([]models.Task, error) {
	var candidates []models.Task
	err := r.db.Where("due_date IS NOT NULL AND due_date <> '' AND completed = ?", false).
		Find(&candidates).Error
	if err != nil {
		return nil, faults.Storage("get overdue tasks", err)
	}

	now := time.Now()
	var tasks []models.Task
	for _, t := range candidates {
		if due, ok := t.DueTime(); ok && due.Before(now) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// Add constructs a task with defaults, persists it and returns it
func (r *GormTaskRepository) Add(data models.Task) (*models.Task, error) {
	task := models.NewTask(data)
	if err := r.db.Create(&task).Error; err != nil {
		return nil, faults.Storage("add task", err)
	}
	return &task, nil
}

// Update merges changes into a task, stamps UpdatedAt and returns the full
// updated record
func (r *GormTaskRepository) Update(id string, changes TaskChanges) (*models.Task, error) {
	task, err := r.find(id)
	if err != nil {
		return nil, err
	}

	applyTaskChanges(task, changes)
	task.UpdatedAt = time.Now().UnixMilli()

	if err := r.db.Save(task).Error; err != nil {
		return nil, faults.Storage("update task", err)
	}
	return task, nil
}

// Delete removes a task by id
func (r *GormTaskRepository) Delete(id string) error {
	if err := r.db.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
		return faults.Storage("delete task", err)
	}
	return nil
}

// ToggleCompletion flips a task's completed flag. A missing record degrades
// to (false, nil) rather than failing; the flip itself still bumps UpdatedAt
// through the regular update path.
func (r *GormTaskRepository) ToggleCompletion(id string) (bool, error) {
	task, err := r.find(id)
	if faults.IsCode(err, faults.CodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	flipped := !task.Completed
	_, err = r.Update(id, TaskChanges{Completed: &flipped})
	if err != nil {
		return false, err
	}
	return flipped, nil
}

// Search matches query case-insensitively against title, description and any
// tag. Short-circuiting empty queries is the caller's responsibility.
func (r *GormTaskRepository) Search(query string) ([]models.Task, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var tasks []models.Task
	for _, t := range all {
		if taskMatches(t, needle) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// CountByCategory counts tasks referencing a category
func (r *GormTaskRepository) CountByCategory(categoryID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("category = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, faults.Storage("count tasks by category", err)
	}
	return count, nil
}

func (r *GormTaskRepository) find(id string) (*models.Task, error) {
	var task models.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, faults.NotFound("task", id)
	}
	if err != nil {
		return nil, faults.Storage("find task", err)
	}
	return &task, nil
}

func (r *GormTaskRepository) dueDated(op string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("due_date IS NOT NULL AND due_date <> ''").Find(&tasks).Error
	if err != nil {
		return nil, faults.Storage(op, err)
	}
	return tasks, nil
}

func applyTaskChanges(task *models.Task, changes TaskChanges) {
	if changes.Title != nil {
		task.Title = *changes.Title
	}
	if changes.Description != nil {
		task.Description = *changes.Description
	}
	if changes.Completed != nil {
		task.Completed = *changes.Completed
	}
	if changes.Priority != nil {
		task.Priority = *changes.Priority
	}
	if changes.CategoryID != nil {
		task.CategoryID = *changes.CategoryID
	}
	if changes.Tags != nil {
		task.Tags = *changes.Tags
	}
	if changes.ClearDueDate {
		task.DueDate = nil
	} else if changes.DueDate != nil {
		task.DueDate = changes.DueDate
	}
	if changes.Order != nil {
		task.Order = *changes.Order
	}
}

func taskMatches(t models.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	if t.Description != "" && strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
