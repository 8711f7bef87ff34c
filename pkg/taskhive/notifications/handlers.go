package notifications

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// Handler handles notification-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new notifications handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	ReferenceID uint   `json:"reference_id"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"created_at"`
}

func toResponse(n models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Type:        string(n.Type),
		Message:     n.Message,
		ReferenceID: n.ReferenceID,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// List returns the current user's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Router /notifications [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var rows []models.Notification
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch notifications"))
		return
	}

	out := make([]NotificationResponse, len(rows))
	for i, n := range rows {
		out[i] = toResponse(n)
	}
	response.OK(c, out)
}

// UnreadCount returns the number of unread notifications
func (h *Handler) UnreadCount(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var count int64
	if err := h.db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&count).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to count notifications"))
		return
	}
	response.OK(c, gin.H{"unread": count})
}

// MarkRead marks one of the current user's notifications as read
func (h *Handler) MarkRead(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid notification ID")
		return
	}

	var notification models.Notification
	if err := h.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("Notification not found"))
		return
	}

	notification.Read = true
	if err := h.db.Save(&notification).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.OK(c, toResponse(notification))
}

// MarkAllRead marks all of the current user's notifications as read
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.Message(c, "All notifications marked as read")
}

// RegisterRoutes registers notification routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread", h.UnreadCount)
	rg.POST("/:id/read", h.MarkRead)
	rg.POST("/read-all", h.MarkAllRead)
}
