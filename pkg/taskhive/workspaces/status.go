package workspaces

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// ChangeStatusRequest represents the request to change a workspace's status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE ARCHIVED DELETED"`
}

// ChangeStatus changes a workspace's status and cascades it to every group
// and item in the workspace within one transaction. Role rules:
//   - below ADMIN may never change status
//   - only OWNER may set DELETED
//   - a DELETED workspace can only be restored by its OWNER
//
// All validation happens before the transaction opens, so a rejected call
// performs zero writes; any error inside the transaction rolls back the whole
// cascade, so a partial cascade is never observable.
// @Summary Change workspace status
// @Tags workspaces
// @Accept json
// @Produce json
// @Param id path int true "Workspace ID"
// @Param request body ChangeStatusRequest true "Target status"
// @Success 200 {object} WorkspaceResponse
// @Failure 403 {object} response.ErrorBody "Insufficient role"
// @Security BearerAuth
// @Router /workspaces/{id}/status [patch]
func (h *Handler) ChangeStatus(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	newStatus := models.EntityStatus(req.Status)

	workspace, err := ValidateWorkspaceExists(h.db, workspaceID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	member, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleAdmin)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	if newStatus == models.EntityStatusDeleted && member.Role != models.WorkspaceRoleOwner {
		response.HandleError(c, apperrors.NewPermission("Only the owner can delete a workspace"))
		return
	}
	if workspace.Status == models.EntityStatusDeleted && member.Role != models.WorkspaceRoleOwner {
		response.HandleError(c, apperrors.NewPermission("Only the owner can restore a deleted workspace"))
		return
	}

	if workspace.Status == newStatus {
		response.HandleError(c, apperrors.NewValidation("Workspace already has this status"))
		return
	}

	if err := cascadeStatus(h.db, workspace, newStatus, userID); err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	var memberCount int64
	h.db.Model(&models.WorkspaceMember{}).Where("workspace_id = ?", workspaceID).Count(&memberCount)

	response.OK(c, workspaceToResponse(*workspace, member.Role, int(memberCount)))
}

// cascadeStatus applies the status change atomically:
// workspace row + audit fields, then all child groups, then the entity_status
// of all items under those groups.
func cascadeStatus(db *gorm.DB, workspace *models.Workspace, newStatus models.EntityStatus, changedBy uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		workspace.Status = newStatus
		workspace.StatusChangedAt = &now
		workspace.StatusChangedBy = &changedBy
		if err := tx.Save(workspace).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Group{}).
			Where("workspace_id = ?", workspace.ID).
			Update("status", newStatus).Error; err != nil {
			return err
		}

		var groupIDs []uint
		if err := tx.Model(&models.Group{}).
			Where("workspace_id = ?", workspace.ID).
			Pluck("id", &groupIDs).Error; err != nil {
			return err
		}
		if len(groupIDs) == 0 {
			return nil
		}

		return tx.Model(&models.Item{}).
			Where("group_id IN ?", groupIDs).
			Update("entity_status", newStatus).Error
	})
}
