package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemStatus represents the work state of an item
type ItemStatus string

const (
	ItemStatusTodo       ItemStatus = "TODO"
	ItemStatusInProgress ItemStatus = "IN_PROGRESS"
	ItemStatusDone       ItemStatus = "DONE"
)

// ItemPriority represents item priority
type ItemPriority string

const (
	ItemPriorityLow    ItemPriority = "LOW"
	ItemPriorityMedium ItemPriority = "MEDIUM"
	ItemPriorityHigh   ItemPriority = "HIGH"
	ItemPriorityUrgent ItemPriority = "URGENT"
)

// Item represents a task/work unit belonging to a group.
// EntityStatus mirrors the owning group/workspace lifecycle status and is
// only written by cascades; Status is the item's own work state.
type Item struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	GroupID      uint           `gorm:"not null;index" json:"group_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `json:"description"`
	Status       ItemStatus     `gorm:"type:varchar(20);default:'TODO'" json:"status"`
	Priority     ItemPriority   `gorm:"type:varchar(20);default:'MEDIUM'" json:"priority"`
	Complexity   uint           `gorm:"default:1" json:"complexity"`
	AssignedTo   *uint          `gorm:"index" json:"assigned_to,omitempty"`
	Term         *time.Time     `json:"term,omitempty"`
	EntityStatus EntityStatus   `gorm:"type:varchar(20);default:'ACTIVE'" json:"entity_status"`

	// Relationships
	Group    Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Assignee *User `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}
