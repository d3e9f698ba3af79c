package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is a user-defined expense label. A fixed set is seeded per user as
// defaults; the AI categorizer is constrained to the same names.
type Category struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    uint      `gorm:"index;not null;uniqueIndex:idx_user_category" json:"userId"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_user_category" json:"name"`
	Icon      string    `gorm:"size:64" json:"icon,omitempty"`
	Color     string    `gorm:"size:32" json:"color,omitempty"`
	IsDefault bool      `gorm:"default:false" json:"isDefault"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name required")
	}
	return nil
}

// DefaultCategories are the labels seeded for every new user and offered to
// the categorizer when no explicit category is supplied.
var DefaultCategories = []string{
	"food", "transport", "entertainment", "shopping",
	"utilities", "healthcare", "education", "other",
}
