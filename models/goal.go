package models

import (
	"fmt"
	"strings"
	"time"
)

// Goal is a savings target the user works towards.
type Goal struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	UserID        uint       `gorm:"index;not null" json:"userId"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	TargetAmount  Cents      `gorm:"not null" json:"targetAmount"`
	CurrentAmount Cents      `gorm:"default:0" json:"currentAmount"`
	Category      string     `gorm:"size:64" json:"category,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	IsCompleted   bool       `gorm:"default:false" json:"isCompleted"`
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("name required")
	}
	if g.TargetAmount < 0 || g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}
