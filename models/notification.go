package models

import "time"

// Notification is an in-app message for the user (budget warnings, goal
// milestones). Created internally, never by the API directly.
type Notification struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Message   string    `gorm:"size:1024;not null" json:"message"`
	Type      string    `gorm:"size:16;not null" json:"type"` // info, warning, success, error
	IsRead    bool      `gorm:"default:false" json:"isRead"`
}
