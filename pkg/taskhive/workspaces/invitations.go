package workspaces

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/logging"
	"github.com/taskhive/taskhive/pkg/taskhive/mailer"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/notifications"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// invitationTTL is how long an invitation stays acceptable
const invitationTTL = 7 * 24 * time.Hour

// InviteRequest represents the request to invite users to a workspace
type InviteRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required,min=1"`
}

// InvitationResponse represents an invitation in API responses
type InvitationResponse struct {
	ID             uint   `json:"id"`
	WorkspaceID    uint   `json:"workspace_id"`
	WorkspaceTitle string `json:"workspace_title,omitempty"`
	UserID         uint   `json:"user_id"`
	InvitedBy      uint   `json:"invited_by"`
	Status         string `json:"status"`
	ExpiresAt      string `json:"expires_at"`
	CreatedAt      string `json:"created_at"`
}

func invitationToResponse(inv models.WorkspaceInvitation) InvitationResponse {
	out := InvitationResponse{
		ID:          inv.ID,
		WorkspaceID: inv.WorkspaceID,
		UserID:      inv.UserID,
		InvitedBy:   inv.InvitedBy,
		Status:      string(inv.Status),
		ExpiresAt:   inv.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		CreatedAt:   inv.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if inv.Workspace.ID != 0 {
		out.WorkspaceTitle = inv.Workspace.Title
	}
	return out
}

// createInvitations resolves invitee ids to existing users and bulk-inserts
// invitation rows inside the caller's transaction, returning the created rows
// and the invited users. Users who are already members or already hold a
// PENDING invitation are skipped silently. When NO invitee id resolves to an
// existing user the whole transaction fails with NotFound, which differs
// deliberately from the post-commit fan-out where partial failure is
// tolerated.
func createInvitations(tx *gorm.DB, workspace *models.Workspace, inviterID uint, inviteeIDs []uint) ([]models.WorkspaceInvitation, []models.User, error) {
	var users []models.User
	if err := tx.Where("id IN ? AND id != ?", inviteeIDs, inviterID).Find(&users).Error; err != nil {
		return nil, nil, err
	}
	if len(users) == 0 {
		return nil, nil, apperrors.NewNotFound("No invitee found")
	}

	var invited []models.User
	rows := make([]models.WorkspaceInvitation, 0, len(users))
	for _, user := range users {
		var existing models.WorkspaceMember
		if err := tx.Where("workspace_id = ? AND user_id = ?", workspace.ID, user.ID).First(&existing).Error; err == nil {
			continue
		}

		var pending models.WorkspaceInvitation
		if err := tx.Where("workspace_id = ? AND user_id = ? AND status = ?",
			workspace.ID, user.ID, models.InvitationStatusPending).First(&pending).Error; err == nil {
			continue
		}

		rows = append(rows, models.WorkspaceInvitation{
			WorkspaceID: workspace.ID,
			UserID:      user.ID,
			InvitedBy:   inviterID,
			Token:       uuid.NewString(),
			Status:      models.InvitationStatusPending,
			ExpiresAt:   time.Now().Add(invitationTTL),
		})
		invited = append(invited, user)
	}

	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return nil, nil, err
		}
	}
	return rows, invited, nil
}

// fanOutInvites dispatches one WORKSPACE_INVITE notification per invitee and
// a best-effort invite email. Runs after the invitation transaction commits;
// failures are logged and never undo committed rows.
func (h *Handler) fanOutInvites(workspace models.Workspace, inviterID uint, invited []models.User) {
	reqs := make([]notifications.Request, len(invited))
	for i, user := range invited {
		reqs[i] = notifications.Request{
			UserID:      user.ID,
			Type:        models.NotificationWorkspaceInvite,
			Message:     "You have been invited to the workspace " + workspace.Title,
			ReferenceID: workspace.ID,
		}
	}
	notifications.FanOut(h.db, reqs)

	var inviter models.User
	if err := h.db.First(&inviter, inviterID).Error; err != nil {
		logging.Log.Warnf("invite email fan-out: inviter %d not found: %v", inviterID, err)
		return
	}

	var wg sync.WaitGroup
	for _, user := range invited {
		var settings models.UserSettings
		if err := h.db.Where("user_id = ?", user.ID).First(&settings).Error; err == nil && !settings.EmailNotifications {
			continue
		}

		wg.Add(1)
		go func(u models.User) {
			defer wg.Done()
			err := h.mail.SendInvite(u.Email, mailer.Invite{
				WorkspaceTitle: workspace.Title,
				InviterName:    inviter.Name,
				AcceptURL:      h.baseURL + "/invitations",
			})
			if err != nil {
				logging.Log.WithFields(logging.Fields{"to": u.Email}).Warnf("invite email failed: %v", err)
			}
		}(user)
	}
	wg.Wait()
}

// Invite invites users to an existing workspace (ADMIN or above)
// @Summary Invite users to a workspace
// @Tags invitations
// @Accept json
// @Produce json
// @Param id path int true "Workspace ID"
// @Param request body InviteRequest true "Invitee user ids"
// @Success 201 {array} InvitationResponse
// @Failure 404 {object} response.ErrorBody "No invitee found"
// @Security BearerAuth
// @Router /workspaces/{id}/invitations [post]
func (h *Handler) Invite(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	workspace, err := ValidateWorkspaceExists(h.db, workspaceID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if _, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleAdmin); err != nil {
		response.HandleError(c, err)
		return
	}
	if workspace.Status != models.EntityStatusActive {
		response.HandleError(c, apperrors.NewValidation("Cannot invite to an inactive workspace"))
		return
	}

	var rows []models.WorkspaceInvitation
	var invited []models.User
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		rows, invited, txErr = createInvitations(tx, workspace, userID, req.UserIDs)
		return txErr
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	if len(invited) > 0 {
		h.fanOutInvites(*workspace, userID, invited)
	}

	out := make([]InvitationResponse, len(rows))
	for i, inv := range rows {
		out[i] = invitationToResponse(inv)
	}
	response.Created(c, out)
}

// ListMyInvitations returns the caller's pending invitations
// @Summary List my invitations
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Router /workspaces/invitations [get]
func (h *Handler) ListMyInvitations(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var rows []models.WorkspaceInvitation
	if err := h.db.Preload("Workspace").
		Where("user_id = ? AND status = ?", userID, models.InvitationStatusPending).
		Find(&rows).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch invitations"))
		return
	}

	out := make([]InvitationResponse, len(rows))
	for i, inv := range rows {
		out[i] = invitationToResponse(inv)
	}
	response.OK(c, out)
}

// ListWorkspaceInvitations returns a workspace's invitations (ADMIN or above)
// @Summary List workspace invitations
// @Tags invitations
// @Produce json
// @Param id path int true "Workspace ID"
// @Security BearerAuth
// @Router /workspaces/{id}/invitations [get]
func (h *Handler) ListWorkspaceInvitations(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleAdmin); err != nil {
		response.HandleError(c, err)
		return
	}

	var rows []models.WorkspaceInvitation
	if err := h.db.Where("workspace_id = ?", workspaceID).Find(&rows).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch invitations"))
		return
	}

	out := make([]InvitationResponse, len(rows))
	for i, inv := range rows {
		out[i] = invitationToResponse(inv)
	}
	response.OK(c, out)
}

// AcceptInvitation accepts one of the caller's PENDING invitations. The state
// flip and the membership insert happen in one transaction, so a second accept
// finds no PENDING row and gets NotFound. An expired invitation is flipped to
// EXPIRED on the spot instead of being accepted.
// @Summary Accept an invitation
// @Tags invitations
// @Produce json
// @Param id path int true "Invitation ID"
// @Failure 404 {object} response.ErrorBody "No pending invitation"
// @Security BearerAuth
// @Router /workspaces/invitations/{id}/accept [post]
func (h *Handler) AcceptInvitation(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	invitationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var invitation models.WorkspaceInvitation
	err := h.db.Where("id = ? AND user_id = ? AND status = ?",
		invitationID, userID, models.InvitationStatusPending).First(&invitation).Error
	if err != nil {
		response.HandleError(c, apperrors.NewNotFound("No pending invitation found"))
		return
	}

	if time.Now().After(invitation.ExpiresAt) {
		invitation.Status = models.InvitationStatusExpired
		h.db.Save(&invitation)
		response.HandleError(c, apperrors.NewValidation("Invitation has expired"))
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		invitation.Status = models.InvitationStatusAccepted
		if err := tx.Save(&invitation).Error; err != nil {
			return err
		}
		member := models.WorkspaceMember{
			WorkspaceID: invitation.WorkspaceID,
			UserID:      userID,
			Role:        models.WorkspaceRoleMember,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	response.OK(c, invitationToResponse(invitation))
}

// DeclineInvitation declines one of the caller's PENDING invitations
// @Summary Decline an invitation
// @Tags invitations
// @Produce json
// @Param id path int true "Invitation ID"
// @Security BearerAuth
// @Router /workspaces/invitations/{id}/decline [post]
func (h *Handler) DeclineInvitation(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	invitationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var invitation models.WorkspaceInvitation
	err := h.db.Where("id = ? AND user_id = ? AND status = ?",
		invitationID, userID, models.InvitationStatusPending).First(&invitation).Error
	if err != nil {
		response.HandleError(c, apperrors.NewNotFound("No pending invitation found"))
		return
	}

	invitation.Status = models.InvitationStatusDeclined
	if err := h.db.Save(&invitation).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.OK(c, invitationToResponse(invitation))
}

// CancelInvitation cancels a PENDING invitation (ADMIN or above)
// @Summary Cancel an invitation
// @Tags invitations
// @Produce json
// @Param id path int true "Workspace ID"
// @Param invitationId path int true "Invitation ID"
// @Security BearerAuth
// @Router /workspaces/{id}/invitations/{invitationId} [delete]
func (h *Handler) CancelInvitation(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	invitationID, ok := parseIDParam(c, "invitationId")
	if !ok {
		return
	}

	if _, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleAdmin); err != nil {
		response.HandleError(c, err)
		return
	}

	var invitation models.WorkspaceInvitation
	err := h.db.Where("id = ? AND workspace_id = ? AND status = ?",
		invitationID, workspaceID, models.InvitationStatusPending).First(&invitation).Error
	if err != nil {
		response.HandleError(c, apperrors.NewNotFound("No pending invitation found"))
		return
	}

	invitation.Status = models.InvitationStatusCancelled
	if err := h.db.Save(&invitation).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.OK(c, invitationToResponse(invitation))
}
