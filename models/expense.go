package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

// Expense represents one money movement (expense or income) belonging to a
// user. The amount is always non-negative; direction is encoded in Type.
// OccurredAt is the date the movement is attributed to, not the insert time,
// and every aggregation window is defined over it.
type Expense struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	Amount      Cents     `gorm:"not null" json:"amount"`
	Type        string    `gorm:"size:16;not null;index" json:"type"`
	Description string    `gorm:"size:512;not null" json:"description"`
	Category    string    `gorm:"size:64;not null;index" json:"category"`
	OccurredAt  time.Time `gorm:"not null;index" json:"occurredAt"`
	Location    string    `gorm:"size:255" json:"location,omitempty"`
	Mood        string    `gorm:"size:32" json:"mood,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	Tags        []string  `gorm:"serializer:json" json:"tags,omitempty"`
	ReceiptURL  string    `gorm:"size:512" json:"receiptUrl,omitempty"`
}

// Validate rejects malformed records before they touch the store.
func (e Expense) Validate() error {
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if e.Type != TypeExpense && e.Type != TypeIncome {
		return fmt.Errorf("invalid type %q (want %q or %q)", e.Type, TypeExpense, TypeIncome)
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("description required")
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("occurredAt required")
	}
	if e.Rating != 0 && (e.Rating < 1 || e.Rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
