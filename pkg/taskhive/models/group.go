package models

import (
	"time"

	"gorm.io/gorm"
)

// Group represents a sub-container of items within a workspace.
// Its status mirrors workspace-level cascades but can also be changed
// independently (the change then cascades to the group's items).
type Group struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	WorkspaceID uint           `gorm:"not null;index" json:"workspace_id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Status      EntityStatus   `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`

	// Relationships
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Items     []Item    `gorm:"foreignKey:GroupID" json:"items,omitempty"`
}
