package items

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/notifications"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"github.com/taskhive/taskhive/pkg/taskhive/workspaces"
	"gorm.io/gorm"
)

// Handler handles item-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new items handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateItemRequest represents the request to create an item
type CreateItemRequest struct {
	GroupID     uint       `json:"group_id" binding:"required"`
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Complexity  uint       `json:"complexity" binding:"omitempty,min=1,max=10"`
	AssignedTo  *uint      `json:"assigned_to"`
	Term        *time.Time `json:"term"`
}

// UpdateItemRequest represents the request to update an item
type UpdateItemRequest struct {
	Title       string     `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Complexity  *uint      `json:"complexity" binding:"omitempty"`
	Term        *time.Time `json:"term"`
}

// AssignRequest represents the request to assign an item.
// A null user id unassigns the item.
type AssignRequest struct {
	UserID *uint `json:"user_id"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID           uint   `json:"id"`
	GroupID      uint   `json:"group_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	Complexity   uint   `json:"complexity"`
	AssignedTo   *uint  `json:"assigned_to,omitempty"`
	Term         string `json:"term,omitempty"`
	EntityStatus string `json:"entity_status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func itemToResponse(item models.Item) ItemResponse {
	out := ItemResponse{
		ID:           item.ID,
		GroupID:      item.GroupID,
		Title:        item.Title,
		Description:  item.Description,
		Status:       string(item.Status),
		Priority:     string(item.Priority),
		Complexity:   item.Complexity,
		AssignedTo:   item.AssignedTo,
		EntityStatus: string(item.EntityStatus),
		CreatedAt:    item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if item.Term != nil {
		out.Term = item.Term.Format("2006-01-02T15:04:05Z")
	}
	return out
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// loadGroup resolves an item's group and validates the caller's role
func (h *Handler) loadGroup(c *gin.Context, groupID uint, minRole models.WorkspaceRole) (*models.Group, bool) {
	userID, _ := auth.GetUserID(c)

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

// getItem loads an item and checks the caller's role in its workspace
func (h *Handler) getItem(c *gin.Context, minRole models.WorkspaceRole) (*models.Item, bool) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	var item models.Item
	if err := h.db.First(&item, itemID).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("Item not found"))
		return nil, false
	}
	if _, ok := h.loadGroup(c, item.GroupID, minRole); !ok {
		return nil, false
	}
	return &item, true
}

// List returns all items of a group
// @Summary List items
// @Tags items
// @Produce json
// @Param id path int true "Group ID"
// @Security BearerAuth
// @Router /groups/{id}/items [get]
func (h *Handler) List(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, ok := h.loadGroup(c, groupID, models.WorkspaceRoleViewer); !ok {
		return
	}

	var rows []models.Item
	if err := h.db.Where("group_id = ?", groupID).Order("created_at").Find(&rows).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch items"))
		return
	}

	out := make([]ItemResponse, len(rows))
	for i, item := range rows {
		out[i] = itemToResponse(item)
	}
	response.OK(c, out)
}

// Create creates an item in a group (MEMBER or above)
// @Summary Create an item
// @Tags items
// @Accept json
// @Produce json
// @Param request body CreateItemRequest true "Item details"
// @Success 201 {object} ItemResponse
// @Security BearerAuth
// @Router /items [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, ok := h.loadGroup(c, req.GroupID, models.WorkspaceRoleMember)
	if !ok {
		return
	}
	if group.Status != models.EntityStatusActive {
		response.HandleError(c, apperrors.NewValidation("Cannot add items to an inactive group"))
		return
	}

	item := models.Item{
		GroupID:      req.GroupID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       models.ItemStatusTodo,
		Priority:     models.ItemPriorityMedium,
		Complexity:   1,
		Term:         req.Term,
		EntityStatus: group.Status,
	}
	if req.Priority != "" {
		item.Priority = models.ItemPriority(req.Priority)
	}
	if req.Complexity > 0 {
		item.Complexity = req.Complexity
	}

	if req.AssignedTo != nil {
		if err := h.validateAssignee(group.WorkspaceID, *req.AssignedTo); err != nil {
			response.HandleError(c, err)
			return
		}
		item.AssignedTo = req.AssignedTo
	}

	if err := h.db.Create(&item).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	if item.AssignedTo != nil {
		h.notifyAssignment(item)
	}
	response.Created(c, itemToResponse(item))
}

// Get returns a specific item
// @Summary Get an item
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Security BearerAuth
// @Router /items/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	item, ok := h.getItem(c, models.WorkspaceRoleViewer)
	if !ok {
		return
	}
	response.OK(c, itemToResponse(*item))
}

// Update updates an item (MEMBER or above)
// @Summary Update an item
// @Tags items
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Security BearerAuth
// @Router /items/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	item, ok := h.getItem(c, models.WorkspaceRoleMember)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.Title != "" {
		item.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Status != "" {
		item.Status = models.ItemStatus(req.Status)
	}
	if req.Priority != "" {
		item.Priority = models.ItemPriority(req.Priority)
	}
	if req.Complexity != nil {
		item.Complexity = *req.Complexity
	}
	if req.Term != nil {
		item.Term = req.Term
	}

	if err := h.db.Save(item).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.OK(c, itemToResponse(*item))
}

// Delete deletes an item (MEMBER or above, soft delete)
// @Summary Delete an item
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Security BearerAuth
// @Router /items/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	item, ok := h.getItem(c, models.WorkspaceRoleMember)
	if !ok {
		return
	}

	if err := h.db.Delete(item).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.Message(c, "Item deleted")
}

// Assign assigns or unassigns an item (MEMBER or above). The assignee must be
// a member of the item's workspace. Assignment dispatches a best-effort
// ITEM_ASSIGNED notification after the write.
// @Summary Assign an item
// @Tags items
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body AssignRequest true "Assignee (null to unassign)"
// @Security BearerAuth
// @Router /items/{id}/assign [post]
func (h *Handler) Assign(c *gin.Context) {
	item, ok := h.getItem(c, models.WorkspaceRoleMember)
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var group models.Group
	if err := h.db.First(&group, item.GroupID).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	if req.UserID != nil {
		if err := h.validateAssignee(group.WorkspaceID, *req.UserID); err != nil {
			response.HandleError(c, err)
			return
		}
	}

	item.AssignedTo = req.UserID
	if err := h.db.Model(item).Update("assigned_to", req.UserID).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	if item.AssignedTo != nil {
		h.notifyAssignment(*item)
	}
	response.OK(c, itemToResponse(*item))
}

// validateAssignee checks the assignee is a member of the workspace
func (h *Handler) validateAssignee(workspaceID, assigneeID uint) error {
	var member models.WorkspaceMember
	err := h.db.Where("workspace_id = ? AND user_id = ?", workspaceID, assigneeID).First(&member).Error
	if err != nil {
		return apperrors.NewRelation("Assignee is not a member of this workspace")
	}
	return nil
}

// notifyAssignment dispatches the ITEM_ASSIGNED notification, best-effort
func (h *Handler) notifyAssignment(item models.Item) {
	notifications.FanOut(h.db, []notifications.Request{{
		UserID:      *item.AssignedTo,
		Type:        models.NotificationItemAssigned,
		Message:     "You have been assigned to " + item.Title,
		ReferenceID: item.ID,
	}})
}

// RegisterRoutes registers item routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/assign", h.Assign)
}

// RegisterGroupRoutes registers the group-scoped item listing
func (h *Handler) RegisterGroupRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/items", h.List)
}
