package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Budget is a per-user spending ceiling, optionally scoped to a category.
type Budget struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Category  string     `gorm:"size:64" json:"category,omitempty"`
	Amount    Cents      `gorm:"not null" json:"amount"`
	Period    string     `gorm:"size:16;not null" json:"period"`
	StartDate time.Time  `gorm:"not null" json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("name required")
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	switch b.Period {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
	default:
		return fmt.Errorf("invalid period %q", b.Period)
	}
	if b.StartDate.IsZero() {
		return fmt.Errorf("startDate required")
	}
	return nil
}
