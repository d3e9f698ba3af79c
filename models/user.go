package models

import (
	"time"
)

// User model. Preference columns mirror what the settings page edits; they
// travel with the data export, the password hash never does.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `gorm:"index" json:"-"`
	Username       string     `gorm:"size:255;not null;unique" json:"username"`
	HashedPassword []byte     `gorm:"not null" json:"-"`
	Email          string     `gorm:"size:255" json:"email,omitempty"`
	FirstName      string     `gorm:"size:255" json:"firstName,omitempty"`
	LastName       string     `gorm:"size:255" json:"lastName,omitempty"`

	// Preferences
	Language            string `gorm:"size:8;default:en" json:"language"`
	Currency            string `gorm:"size:8;default:USD" json:"currency"`
	Timezone            string `gorm:"size:64;default:UTC" json:"timezone"`
	Theme               string `gorm:"size:16;default:light" json:"theme"`
	OnboardingCompleted bool   `gorm:"default:false" json:"onboardingCompleted"`

	Expenses []Expense `json:"-"`
}
