package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType identifies what a notification refers to. The type decides
// which table the ReferenceID is validated against before the row is created.
type NotificationType string

const (
	NotificationFriendRequest   NotificationType = "FRIEND_REQUEST"
	NotificationFriendAccepted  NotificationType = "FRIEND_ACCEPTED"
	NotificationWorkspaceInvite NotificationType = "WORKSPACE_INVITE"
	NotificationWorkspaceStatus NotificationType = "WORKSPACE_STATUS"
	NotificationItemAssigned    NotificationType = "ITEM_ASSIGNED"
	NotificationItemStatus      NotificationType = "ITEM_STATUS"
	NotificationChatMessage     NotificationType = "CHAT_MESSAGE"
)

// Notification represents an in-app notification addressed to a user
type Notification struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
	UserID      uint             `gorm:"not null;index" json:"user_id"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Message     string           `gorm:"not null" json:"message"`
	ReferenceID uint             `gorm:"not null" json:"reference_id"`
	Read        bool             `gorm:"default:false" json:"read"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
