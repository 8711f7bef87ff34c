package models

import (
	"time"

	"gorm.io/gorm"
)

// WorkspaceRole represents a user's role within a workspace
type WorkspaceRole string

const (
	WorkspaceRoleOwner  WorkspaceRole = "OWNER"
	WorkspaceRoleAdmin  WorkspaceRole = "ADMIN"
	WorkspaceRoleMember WorkspaceRole = "MEMBER"
	WorkspaceRoleViewer WorkspaceRole = "VIEWER"
)

// roleRanks orders roles for permission checks: OWNER > ADMIN > MEMBER > VIEWER
var roleRanks = map[WorkspaceRole]int{
	WorkspaceRoleOwner:  3,
	WorkspaceRoleAdmin:  2,
	WorkspaceRoleMember: 1,
	WorkspaceRoleViewer: 0,
}

// Rank returns the numeric rank of a role, or -1 for an unknown role
func (r WorkspaceRole) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// AtLeast reports whether r ranks at or above min
func (r WorkspaceRole) AtLeast(min WorkspaceRole) bool {
	return r.Rank() >= min.Rank() && r.Rank() >= 0
}

// WorkspaceMember represents the many-to-many relationship between users and
// workspaces. One row per (workspace, user) pair.
type WorkspaceMember struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	WorkspaceID uint           `gorm:"not null;uniqueIndex:idx_workspace_user" json:"workspace_id"`
	UserID      uint           `gorm:"not null;uniqueIndex:idx_workspace_user" json:"user_id"`
	Role        WorkspaceRole  `gorm:"type:varchar(20);default:'MEMBER'" json:"role"`

	// Relationships
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
