package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendStatus represents the state of a friend relationship
type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "PENDING"
	FriendStatusAccepted FriendStatus = "ACCEPTED"
)

// UserFriend represents a friendship between two users. A single row covers
// both directions; uniqueness across (requester, addressee) in either order is
// enforced by an OR lookup before creation, since the schema only guards the
// literal column order.
type UserFriend struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	RequesterID uint           `gorm:"not null;uniqueIndex:idx_requester_addressee" json:"requester_id"`
	AddresseeID uint           `gorm:"not null;uniqueIndex:idx_requester_addressee" json:"addressee_id"`
	Status      FriendStatus   `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee User `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
}
