package models

import "time"

// RefreshToken stores the sha256 of a refresh token for rotation and
// revocation. The raw token is only ever returned to the client once.
type RefreshToken struct {
	ID        uint `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	TokenHash string    `gorm:"size:128;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"-"`
	Revoked   bool      `gorm:"default:false" json:"-"`
}
