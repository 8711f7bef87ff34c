package models

import (
	"time"

	"gorm.io/gorm"
)

// Goal represents a personal goal, private to its owner
type Goal struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	TargetDate  *time.Time     `json:"target_date,omitempty"`
	Progress    uint           `gorm:"default:0" json:"progress"` // 0-100
	Done        bool           `gorm:"default:false" json:"done"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
