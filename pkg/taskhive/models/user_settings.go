package models

import (
	"time"

	"gorm.io/gorm"
)

// UserSettings holds per-user preferences. One row per user, created at registration.
type UserSettings struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	UserID             uint           `gorm:"not null;uniqueIndex" json:"user_id"`
	Theme              string         `gorm:"type:varchar(20);default:'system'" json:"theme"`
	Locale             string         `gorm:"type:varchar(10);default:'en'" json:"locale"`
	EmailNotifications bool           `gorm:"default:true" json:"email_notifications"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
