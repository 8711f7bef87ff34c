package groups

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"github.com/taskhive/taskhive/pkg/taskhive/workspaces"
	"gorm.io/gorm"
)

// Handler handles group-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	WorkspaceID uint   `json:"workspace_id" binding:"required"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

// ChangeStatusRequest represents the request to change a group's status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE ARCHIVED DELETED"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uint   `json:"id"`
	WorkspaceID uint   `json:"workspace_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ItemCount   int    `json:"item_count,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func groupToResponse(g models.Group, itemCount int) GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		WorkspaceID: g.WorkspaceID,
		Name:        g.Name,
		Description: g.Description,
		Status:      string(g.Status),
		ItemCount:   itemCount,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// getGroup loads a group and checks the caller's workspace role
func (h *Handler) getGroup(c *gin.Context, minRole models.WorkspaceRole) (*models.Group, bool) {
	userID, _ := auth.GetUserID(c)
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	var group models.Group
	if err := h.db.First(&group, groupID).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("Group not found"))
		return nil, false
	}

	if _, err := workspaces.ValidateWorkspacePermission(h.db, group.WorkspaceID, userID, minRole); err != nil {
		response.HandleError(c, err)
		return nil, false
	}
	return &group, true
}

// List returns all groups of a workspace
// @Summary List groups
// @Tags groups
// @Produce json
// @Param id path int true "Workspace ID"
// @Security BearerAuth
// @Router /workspaces/{id}/groups [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := workspaces.ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleViewer); err != nil {
		response.HandleError(c, err)
		return
	}

	var rows []models.Group
	if err := h.db.Where("workspace_id = ?", workspaceID).Find(&rows).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch groups"))
		return
	}

	out := make([]GroupResponse, len(rows))
	for i, g := range rows {
		var itemCount int64
		h.db.Model(&models.Item{}).Where("group_id = ?", g.ID).Count(&itemCount)
		out[i] = groupToResponse(g, int(itemCount))
	}
	response.OK(c, out)
}

// Create creates a group in a workspace (ADMIN or above)
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} GroupResponse
// @Security BearerAuth
// @Router /groups [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	workspace, err := workspaces.ValidateWorkspaceExists(h.db, req.WorkspaceID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if _, err := workspaces.ValidateWorkspacePermission(h.db, req.WorkspaceID, userID, models.WorkspaceRoleAdmin); err != nil {
		response.HandleError(c, err)
		return
	}
	if workspace.Status != models.EntityStatusActive {
		response.HandleError(c, apperrors.NewValidation("Cannot add groups to an inactive workspace"))
		return
	}

	group := models.Group{
		WorkspaceID: req.WorkspaceID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      models.EntityStatusActive,
	}
	if err := h.db.Create(&group).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.Created(c, groupToResponse(group, 0))
}

// Get returns a specific group
// @Summary Get a group
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Security BearerAuth
// @Router /groups/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	group, ok := h.getGroup(c, models.WorkspaceRoleViewer)
	if !ok {
		return
	}

	var itemCount int64
	h.db.Model(&models.Item{}).Where("group_id = ?", group.ID).Count(&itemCount)
	response.OK(c, groupToResponse(*group, int(itemCount)))
}

// Update updates a group's name/description (ADMIN or above)
// @Summary Update a group
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Security BearerAuth
// @Router /groups/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	group, ok := h.getGroup(c, models.WorkspaceRoleAdmin)
	if !ok {
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.Name != "" {
		group.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != nil {
		group.Description = *req.Description
	}

	if err := h.db.Save(group).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	var itemCount int64
	h.db.Model(&models.Item{}).Where("group_id = ?", group.ID).Count(&itemCount)
	response.OK(c, groupToResponse(*group, int(itemCount)))
}

// ChangeStatus changes a group's status and cascades it to the group's items
// in one transaction (ADMIN or above). This is the group-scoped half of the
// workspace cascade; it never flows upward to the workspace.
// @Summary Change group status
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Security BearerAuth
// @Router /groups/{id}/status [patch]
func (h *Handler) ChangeStatus(c *gin.Context) {
	group, ok := h.getGroup(c, models.WorkspaceRoleAdmin)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	newStatus := models.EntityStatus(req.Status)

	if group.Status == newStatus {
		response.HandleError(c, apperrors.NewValidation("Group already has this status"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		group.Status = newStatus
		if err := tx.Save(group).Error; err != nil {
			return err
		}
		return tx.Model(&models.Item{}).
			Where("group_id = ?", group.ID).
			Update("entity_status", newStatus).Error
	})
	if err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	var itemCount int64
	h.db.Model(&models.Item{}).Where("group_id = ?", group.ID).Count(&itemCount)
	response.OK(c, groupToResponse(*group, int(itemCount)))
}

// RegisterRoutes registers group routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.ChangeStatus)
}

// RegisterWorkspaceRoutes registers the workspace-scoped group listing
func (h *Handler) RegisterWorkspaceRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/groups", h.List)
}
