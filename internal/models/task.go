package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Tags is an ordered list of tag strings, stored as a JSON column.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(value interface{}) error {
	if value == nil {
		*t = Tags{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tags column type %T", value)
	}
}

type Task struct {
	ID          string   `gorm:"primarykey;type:varchar(36)" json:"id"`
	Title       string   `gorm:"type:varchar(200);not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Completed   bool     `gorm:"index;not null;default:false" json:"completed"`
	Priority    Priority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	CategoryID  string   `gorm:"column:category;index;type:varchar(36);not null;default:'personal'" json:"category"`
	Tags        Tags     `gorm:"type:text" json:"tags"`
	DueDate     *string  `gorm:"index" json:"dueDate"`
	CreatedAt   int64    `gorm:"index;autoCreateTime:false" json:"createdAt"`
	UpdatedAt   int64    `gorm:"autoUpdateTime:false" json:"updatedAt"`
	Order       int      `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// NewTask builds a task from partial data, filling in the defaults a record
// gets on creation: a generated id, medium priority, the personal category
// and matching creation/update timestamps.
func NewTask(data Task) Task {
	now := time.Now().UnixMilli()
	task := data
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	if task.CategoryID == "" {
		task.CategoryID = DefaultCategoryID
	}
	if task.Tags == nil {
		task.Tags = Tags{}
	}
	if task.CreatedAt == 0 {
		task.CreatedAt = now
	}
	if task.UpdatedAt == 0 {
		task.UpdatedAt = task.CreatedAt
	}
	return task
}

// DueTime parses the task's due date. ok is false when the task has no due
// date or the stored value does not parse.
func (t Task) DueTime() (due time.Time, ok bool) {
	if t.DueDate == nil || *t.DueDate == "" {
		return time.Time{}, false
	}
	return ParseDate(*t.DueDate)
}

// ParseDate accepts the date shapes the export document carries: RFC 3339
// with or without offset, and a bare calendar date (interpreted in local time).
func ParseDate(value string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
