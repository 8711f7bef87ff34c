// Package admin implements the system-admin surface: user management and
// platform statistics. Every route is gated by auth.RequireAdmin.
package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/logging"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// Handler handles admin requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	ID             uint   `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	SystemRole     string `json:"system_role"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"`
	WorkspaceCount int64  `json:"workspace_count"`
	GoalCount      int64  `json:"goal_count"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	SystemRole *string `json:"system_role"`
	Active     *bool   `json:"active"`
}

// StatsResponse represents system statistics
type StatsResponse struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveUsers         int64 `json:"active_users"`
	AdminUsers          int64 `json:"admin_users"`
	TotalWorkspaces     int64 `json:"total_workspaces"`
	ActiveWorkspaces    int64 `json:"active_workspaces"`
	TotalGroups         int64 `json:"total_groups"`
	TotalItems          int64 `json:"total_items"`
	PendingInvitations  int64 `json:"pending_invitations"`
	UnreadNotifications int64 `json:"unread_notifications"`
}

func (h *Handler) userToResponse(user models.User) UserResponse {
	var workspaceCount, goalCount int64
	h.db.Model(&models.WorkspaceMember{}).Where("user_id = ?", user.ID).Count(&workspaceCount)
	h.db.Model(&models.Goal{}).Where("user_id = ?", user.ID).Count(&goalCount)

	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		SystemRole:     string(user.SystemRole),
		Active:         user.Active,
		CreatedAt:      user.CreatedAt.Format("2006-01-02T15:04:05Z"),
		WorkspaceCount: workspaceCount,
		GoalCount:      goalCount,
	}
}

// ListUsers returns all users, newest first
// @Summary List users (admin only)
// @Tags admin
// @Produce json
// @Param q query string false "Search by email or name"
// @Param role query string false "Filter by system role"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	query := h.db.Order("created_at DESC")

	// Optional search by email or name
	if search := c.Query("q"); search != "" {
		query = query.Where("email LIKE ? OR name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	// Optional filter by role
	if role := c.Query("role"); role != "" {
		query = query.Where("system_role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch users"))
		return
	}

	out := make([]UserResponse, len(users))
	for i, user := range users {
		out[i] = h.userToResponse(user)
	}
	response.OK(c, out)
}

// GetUser returns a single user by ID
// @Summary Get a user (admin only)
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("User not found"))
		return
	}
	response.OK(c, h.userToResponse(user))
}

// UpdateUser updates a user's name, system role or active flag
// @Summary Update a user (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Security BearerAuth
// @Router /admin/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("User not found"))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// An admin cannot demote or deactivate themselves
	currentUserID, _ := auth.GetUserID(c)
	if uint(id) == currentUserID {
		if req.SystemRole != nil && *req.SystemRole != string(models.SystemRoleAdmin) {
			response.HandleError(c, apperrors.NewValidation("Cannot demote yourself"))
			return
		}
		if req.Active != nil && !*req.Active {
			response.HandleError(c, apperrors.NewValidation("Cannot deactivate yourself"))
			return
		}
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SystemRole != nil {
		if *req.SystemRole != string(models.SystemRoleAdmin) && *req.SystemRole != string(models.SystemRoleUser) {
			response.HandleError(c, apperrors.NewValidation("Invalid system role"))
			return
		}
		updates["system_role"] = *req.SystemRole
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			response.HandleError(c, apperrors.NewInternal("Failed to update user"))
			return
		}
		adminEmail, _ := auth.GetEmail(c)
		logging.Log.WithFields(logging.Fields{
			"admin":   adminEmail,
			"user_id": user.ID,
		}).Info("Admin updated user")
	}

	h.db.First(&user, id)
	response.OK(c, h.userToResponse(user))
}

// DeactivateUser disables a user account. Deactivated users keep their data
// but can no longer log in; login rejects inactive accounts.
// @Summary Deactivate a user (admin only)
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *Handler) DeactivateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	currentUserID, _ := auth.GetUserID(c)
	if uint(id) == currentUserID {
		response.HandleError(c, apperrors.NewValidation("Cannot deactivate yourself"))
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("User not found"))
		return
	}

	if err := h.db.Model(&user).Update("active", false).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to deactivate user"))
		return
	}

	adminEmail, _ := auth.GetEmail(c)
	logging.Log.WithFields(logging.Fields{
		"admin":   adminEmail,
		"user_id": user.ID,
	}).Info("Admin deactivated user")

	response.Message(c, "User deactivated successfully")
}

// GetStats returns system-wide statistics
// @Summary System statistics (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.User{}).Where("active = ?", true).Count(&stats.ActiveUsers)
	h.db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&stats.AdminUsers)
	h.db.Model(&models.Workspace{}).Count(&stats.TotalWorkspaces)
	h.db.Model(&models.Workspace{}).Where("status = ?", models.EntityStatusActive).Count(&stats.ActiveWorkspaces)
	h.db.Model(&models.Group{}).Count(&stats.TotalGroups)
	h.db.Model(&models.Item{}).Count(&stats.TotalItems)
	h.db.Model(&models.WorkspaceInvitation{}).Where("status = ?", models.InvitationStatusPending).Count(&stats.PendingInvitations)
	h.db.Model(&models.Notification{}).Where("read = ?", false).Count(&stats.UnreadNotifications)

	response.OK(c, stats)
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeactivateUser)
}
