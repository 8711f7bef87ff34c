package workspaces

import (
	"errors"

	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/gorm"
)

// ValidateWorkspaceExists returns the workspace or a NotFound error.
// Read-only; gates every workspace mutation.
func ValidateWorkspaceExists(db *gorm.DB, workspaceID uint) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := db.First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Workspace not found")
		}
		return nil, apperrors.FromORM(err)
	}
	return &workspace, nil
}

// ValidateWorkspacePermission returns the caller's membership if its role
// ranks at or above minRole. No membership row at all is a permission error,
// not a not-found, so non-members cannot probe workspace existence.
func ValidateWorkspacePermission(db *gorm.DB, workspaceID, userID uint, minRole models.WorkspaceRole) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember
	err := db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewPermission("Not a member of this workspace")
		}
		return nil, apperrors.FromORM(err)
	}

	if !member.Role.AtLeast(minRole) {
		return nil, apperrors.NewPermission("Insufficient role for this operation")
	}
	return &member, nil
}
