package friends

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/notifications"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// Handler handles friend-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new friends handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RequestFriendRequest represents the request to send a friend request
type RequestFriendRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// FriendResponse represents a friendship in API responses
type FriendResponse struct {
	ID          uint   `json:"id"`
	RequesterID uint   `json:"requester_id"`
	AddresseeID uint   `json:"addressee_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func friendToResponse(f models.UserFriend) FriendResponse {
	return FriendResponse{
		ID:          f.ID,
		RequesterID: f.RequesterID,
		AddresseeID: f.AddresseeID,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// List returns the current user's friendships in both directions
// @Summary List friends
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Router /friends [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var rows []models.UserFriend
	if err := h.db.Where("requester_id = ? OR addressee_id = ?", userID, userID).Find(&rows).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch friends"))
		return
	}

	out := make([]FriendResponse, len(rows))
	for i, f := range rows {
		out[i] = friendToResponse(f)
	}
	response.OK(c, out)
}

// Request sends a friend request. Symmetric uniqueness is enforced with an OR
// lookup of both directions before the row is created, since the schema only
// guards the literal (requester, addressee) order.
// @Summary Send a friend request
// @Tags friends
// @Accept json
// @Produce json
// @Param request body RequestFriendRequest true "Target user"
// @Success 201 {object} FriendResponse
// @Failure 409 {object} response.ErrorBody "Already friends or pending"
// @Security BearerAuth
// @Router /friends [post]
func (h *Handler) Request(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req RequestFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.UserID == userID {
		response.HandleError(c, apperrors.NewValidation("Cannot befriend yourself"))
		return
	}

	var target models.User
	if err := h.db.First(&target, req.UserID).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("User not found"))
		return
	}

	var existing models.UserFriend
	err := h.db.Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		userID, req.UserID, req.UserID, userID).First(&existing).Error
	if err == nil {
		response.HandleError(c, apperrors.NewDuplicate("Friend request already exists"))
		return
	}

	friend := models.UserFriend{
		RequesterID: userID,
		AddresseeID: req.UserID,
		Status:      models.FriendStatusPending,
	}
	if err := h.db.Create(&friend).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	notifications.FanOut(h.db, []notifications.Request{{
		UserID:      req.UserID,
		Type:        models.NotificationFriendRequest,
		Message:     "You have a new friend request",
		ReferenceID: userID,
	}})

	response.Created(c, friendToResponse(friend))
}

// Accept accepts a pending friend request addressed to the caller
// @Summary Accept a friend request
// @Tags friends
// @Produce json
// @Param id path int true "Friendship ID"
// @Security BearerAuth
// @Router /friends/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	friendID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid friendship ID")
		return
	}

	var friend models.UserFriend
	if err := h.db.Where("id = ? AND addressee_id = ? AND status = ?",
		friendID, userID, models.FriendStatusPending).First(&friend).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("No pending friend request found"))
		return
	}

	friend.Status = models.FriendStatusAccepted
	if err := h.db.Save(&friend).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	notifications.FanOut(h.db, []notifications.Request{{
		UserID:      friend.RequesterID,
		Type:        models.NotificationFriendAccepted,
		Message:     "Your friend request was accepted",
		ReferenceID: userID,
	}})

	response.OK(c, friendToResponse(friend))
}

// Remove removes a friendship or declines a pending request
// @Summary Remove a friend
// @Tags friends
// @Produce json
// @Param id path int true "Friendship ID"
// @Security BearerAuth
// @Router /friends/{id} [delete]
func (h *Handler) Remove(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	friendID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid friendship ID")
		return
	}

	var friend models.UserFriend
	if err := h.db.Where("id = ? AND (requester_id = ? OR addressee_id = ?)",
		friendID, userID, userID).First(&friend).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("Friendship not found"))
		return
	}

	if err := h.db.Delete(&friend).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.Message(c, "Friend removed")
}

// RegisterRoutes registers friend routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Request)
	rg.POST("/:id/accept", h.Accept)
	rg.DELETE("/:id", h.Remove)
}
