package workspaces

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
)

// MemberResponse represents a workspace member in API responses
type MemberResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// UpdateMemberRequest represents the request to update a member's role.
// OWNER is not assignable; ownership never moves through this endpoint.
type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN MEMBER VIEWER"`
}

// ListMembers returns all members of a workspace
// @Summary List workspace members
// @Tags workspaces
// @Produce json
// @Param id path int true "Workspace ID"
// @Security BearerAuth
// @Router /workspaces/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleViewer); err != nil {
		response.HandleError(c, err)
		return
	}

	var memberships []models.WorkspaceMember
	if err := h.db.Preload("User").Where("workspace_id = ?", workspaceID).Find(&memberships).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch members"))
		return
	}

	members := make([]MemberResponse, len(memberships))
	for i, m := range memberships {
		members[i] = MemberResponse{
			ID:        m.ID,
			UserID:    m.UserID,
			Email:     m.User.Email,
			Name:      m.User.Name,
			Role:      string(m.Role),
			CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	response.OK(c, members)
}

// UpdateMember changes a member's role (ADMIN or above). The owner's row is
// immutable, and an admin cannot promote anyone to OWNER.
// @Summary Update a member's role
// @Tags workspaces
// @Accept json
// @Produce json
// @Param id path int true "Workspace ID"
// @Param userId path int true "User ID"
// @Security BearerAuth
// @Router /workspaces/{id}/members/{userId} [put]
func (h *Handler) UpdateMember(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if _, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleAdmin); err != nil {
		response.HandleError(c, err)
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var membership models.WorkspaceMember
	if err := h.db.Preload("User").Where("workspace_id = ? AND user_id = ?", workspaceID, targetUserID).First(&membership).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("Member not found"))
		return
	}

	if membership.Role == models.WorkspaceRoleOwner {
		response.HandleError(c, apperrors.NewPermission("The owner's role cannot be changed"))
		return
	}

	membership.Role = models.WorkspaceRole(req.Role)
	if err := h.db.Save(&membership).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	response.OK(c, MemberResponse{
		ID:        membership.ID,
		UserID:    membership.UserID,
		Email:     membership.User.Email,
		Name:      membership.User.Name,
		Role:      string(membership.Role),
		CreatedAt: membership.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// RemoveMember removes a member from a workspace. Admins can remove anyone
// below OWNER; any member can remove themselves. The owner cannot leave.
// @Summary Remove a workspace member
// @Tags workspaces
// @Produce json
// @Param id path int true "Workspace ID"
// @Param userId path int true "User ID"
// @Security BearerAuth
// @Router /workspaces/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if userID != targetUserID {
		if _, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleAdmin); err != nil {
			response.HandleError(c, err)
			return
		}
	}

	var membership models.WorkspaceMember
	if err := h.db.Where("workspace_id = ? AND user_id = ?", workspaceID, targetUserID).First(&membership).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("Member not found"))
		return
	}

	if membership.Role == models.WorkspaceRoleOwner {
		response.HandleError(c, apperrors.NewPermission("The owner cannot be removed"))
		return
	}

	if err := h.db.Delete(&membership).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.Message(c, "Member removed")
}
