package models

import "github.com/google/uuid"

const (
	DefaultCategoryID    = "personal"
	DefaultCategoryIcon  = "📋"
	DefaultCategoryColor = "#3b82f6"
)

type Category struct {
	ID    string `gorm:"primarykey;type:varchar(36)" json:"id"`
	Name  string `gorm:"type:varchar(50);not null" json:"name"`
	Icon  string `gorm:"type:varchar(16)" json:"icon"`
	Color string `gorm:"type:varchar(16)" json:"color"`
	Order int    `gorm:"column:sort_order;index;not null;default:0" json:"order"`
}

// NewCategory builds a category from partial data with generated id and
// default icon/color.
func NewCategory(data Category) Category {
	cat := data
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	if cat.Icon == "" {
		cat.Icon = DefaultCategoryIcon
	}
	if cat.Color == "" {
		cat.Color = DefaultCategoryColor
	}
	return cat
}

// DefaultCategories returns the four seed categories in display order. They
// are inserted exactly once, when the category table is empty.
func DefaultCategories() []Category {
	return []Category{
		{ID: "personal", Name: "Personal", Icon: "👤", Color: "#3b82f6", Order: 0},
		{ID: "work", Name: "Work", Icon: "💼", Color: "#8b5cf6", Order: 1},
		{ID: "study", Name: "Study", Icon: "📚", Color: "#10b981", Order: 2},
		{ID: "health", Name: "Health", Icon: "💪", Color: "#f59e0b", Order: 3},
	}
}
