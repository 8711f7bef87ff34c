package models

import (
	"time"

	"gorm.io/gorm"
)

// SystemRole represents a user's system-wide role
type SystemRole string

const (
	SystemRoleAdmin SystemRole = "admin"
	SystemRoleUser  SystemRole = "user"
)

// User represents a user in the system
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Active       bool           `gorm:"default:true" json:"active"`
	SystemRole   SystemRole     `gorm:"type:varchar(20);default:'user'" json:"system_role"`

	// Relationships
	Settings             *UserSettings         `gorm:"foreignKey:UserID" json:"settings,omitempty"`
	WorkspaceMemberships []WorkspaceMember     `gorm:"foreignKey:UserID" json:"workspace_memberships,omitempty"`
	Invitations          []WorkspaceInvitation `gorm:"foreignKey:UserID" json:"invitations,omitempty"`
	Notifications        []Notification        `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
	Goals                []Goal                `gorm:"foreignKey:UserID" json:"goals,omitempty"`
}
