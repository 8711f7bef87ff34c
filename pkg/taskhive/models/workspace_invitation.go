package models

import (
	"time"

	"gorm.io/gorm"
)

// InvitationStatus represents the lifecycle of a workspace invitation.
// PENDING is the only non-terminal status.
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "PENDING"
	InvitationStatusAccepted  InvitationStatus = "ACCEPTED"
	InvitationStatusDeclined  InvitationStatus = "DECLINED"
	InvitationStatusCancelled InvitationStatus = "CANCELLED"
	InvitationStatusExpired   InvitationStatus = "EXPIRED"
)

// WorkspaceInvitation represents an invitation for a user to join a workspace.
// At most one PENDING invitation may exist per (workspace, user) pair; the
// schema allows one row per pair per status history, so the rule is enforced
// by pre-checks in the invitation handlers.
type WorkspaceInvitation struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
	WorkspaceID uint             `gorm:"not null;index:idx_invitation_workspace_user" json:"workspace_id"`
	UserID      uint             `gorm:"not null;index:idx_invitation_workspace_user" json:"user_id"`
	InvitedBy   uint             `gorm:"not null" json:"invited_by"`
	Token       string           `gorm:"uniqueIndex;not null" json:"token"`
	Status      InvitationStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	ExpiresAt   time.Time        `gorm:"not null" json:"expires_at"`

	// Relationships
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Inviter   User      `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
}

// IsPending reports whether the invitation is still open and unexpired
func (i *WorkspaceInvitation) IsPending() bool {
	return i.Status == InvitationStatusPending && time.Now().Before(i.ExpiresAt)
}
