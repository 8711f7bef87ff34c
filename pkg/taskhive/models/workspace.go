package models

import (
	"time"

	"gorm.io/gorm"
)

// EntityStatus represents the lifecycle status of a workspace and, through
// cascades, of its groups and items. Status changes flow one way only:
// workspace -> groups -> items.
type EntityStatus string

const (
	EntityStatusActive   EntityStatus = "ACTIVE"
	EntityStatusArchived EntityStatus = "ARCHIVED"
	EntityStatusDeleted  EntityStatus = "DELETED"
)

// ValidEntityStatus reports whether s is a known lifecycle status
func ValidEntityStatus(s EntityStatus) bool {
	switch s {
	case EntityStatusActive, EntityStatusArchived, EntityStatusDeleted:
		return true
	}
	return false
}

// Workspace represents a tenant/project container owned by a user.
// Its status is the controlling field for the visibility of all descendant
// groups and items.
type Workspace struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	OwnerID         uint           `gorm:"not null;index" json:"owner_id"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `json:"description"`
	Status          EntityStatus   `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`
	StatusChangedAt *time.Time     `json:"status_changed_at,omitempty"`
	StatusChangedBy *uint          `json:"status_changed_by,omitempty"`
	Categories      string         `json:"categories"` // comma-separated labels

	// Relationships
	Owner       User                  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members     []WorkspaceMember     `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Invitations []WorkspaceInvitation `gorm:"foreignKey:WorkspaceID" json:"invitations,omitempty"`
	Groups      []Group               `gorm:"foreignKey:WorkspaceID" json:"groups,omitempty"`
}
