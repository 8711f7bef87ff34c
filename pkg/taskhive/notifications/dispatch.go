// Package notifications persists in-app notifications and fans them out after
// workspace/item/friend mutations commit. Fan-out is best-effort: each send
// settles independently and failures are logged, never propagated.
package notifications

import (
	"sync"

	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/logging"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/gorm"
)

// Request describes a notification to be created
type Request struct {
	UserID      uint
	Type        models.NotificationType
	Message     string
	ReferenceID uint
}

// Create validates a notification request and persists it. The target user
// must exist, and the referenced entity must exist in the table matching the
// notification type. Nothing is persisted when any check fails.
func Create(db *gorm.DB, req Request) (*models.Notification, error) {
	var user models.User
	if err := db.First(&user, req.UserID).Error; err != nil {
		return nil, apperrors.NewNotFound("Notification target user not found")
	}

	switch req.Type {
	case models.NotificationFriendRequest, models.NotificationFriendAccepted, models.NotificationChatMessage:
		var ref models.User
		if err := db.First(&ref, req.ReferenceID).Error; err != nil {
			return nil, apperrors.NewNotFound("Referenced user not found")
		}
	case models.NotificationWorkspaceInvite, models.NotificationWorkspaceStatus:
		var ref models.Workspace
		if err := db.First(&ref, req.ReferenceID).Error; err != nil {
			return nil, apperrors.NewNotFound("Referenced workspace not found")
		}
	case models.NotificationItemAssigned, models.NotificationItemStatus:
		var ref models.Item
		if err := db.First(&ref, req.ReferenceID).Error; err != nil {
			return nil, apperrors.NewNotFound("Referenced item not found")
		}
	default:
		return nil, apperrors.NewValidation("Unknown notification type")
	}

	notification := models.Notification{
		UserID:      req.UserID,
		Type:        req.Type,
		Message:     req.Message,
		ReferenceID: req.ReferenceID,
	}
	if err := db.Create(&notification).Error; err != nil {
		return nil, apperrors.FromORM(err)
	}
	return &notification, nil
}

// FanOut creates one notification per request concurrently and waits for all
// of them to settle. Individual failures are logged and do not affect the
// other sends or the already-committed rows that triggered them.
func FanOut(db *gorm.DB, reqs []Request) {
	var wg sync.WaitGroup
	for _, req := range reqs {
		wg.Add(1)
		go func(r Request) {
			defer wg.Done()
			if _, err := Create(db, r); err != nil {
				logging.Log.WithFields(logging.Fields{
					"user_id":      r.UserID,
					"type":         r.Type,
					"reference_id": r.ReferenceID,
				}).Warnf("notification fan-out failed: %v", err)
			}
		}(req)
	}
	wg.Wait()
}
