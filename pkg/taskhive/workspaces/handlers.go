package workspaces

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/mailer"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// Handler handles workspace-related requests
type Handler struct {
	db      *gorm.DB
	mail    mailer.Sender
	baseURL string
}

// NewHandler creates a new workspaces handler
func NewHandler(db *gorm.DB, mail mailer.Sender, baseURL string) *Handler {
	return &Handler{db: db, mail: mail, baseURL: baseURL}
}

// CreateWorkspaceRequest represents the request to create a workspace
type CreateWorkspaceRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	Categories  string `json:"categories"`
	InviteeIDs  []uint `json:"invitee_ids"`
}

// UpdateWorkspaceRequest represents the request to update a workspace
type UpdateWorkspaceRequest struct {
	Title       string  `json:"title" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Categories  *string `json:"categories"`
}

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	ID          uint   `json:"id"`
	OwnerID     uint   `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Categories  string `json:"categories"`
	Role        string `json:"role,omitempty"` // caller's role in this workspace
	MemberCount int    `json:"member_count,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func workspaceToResponse(w models.Workspace, role models.WorkspaceRole, memberCount int) WorkspaceResponse {
	return WorkspaceResponse{
		ID:          w.ID,
		OwnerID:     w.OwnerID,
		Title:       w.Title,
		Description: w.Description,
		Status:      string(w.Status),
		Categories:  w.Categories,
		Role:        string(role),
		MemberCount: memberCount,
		CreatedAt:   w.CreatedAt.Format("2006-01-02T15:04:05Z"),
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

// List returns all workspaces the current user is a member of
// @Summary List workspaces
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Router /workspaces [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var memberships []models.WorkspaceMember
	if err := h.db.Preload("Workspace").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch workspaces"))
		return
	}

	out := make([]WorkspaceResponse, 0, len(memberships))
	for _, m := range memberships {
		var memberCount int64
		h.db.Model(&models.WorkspaceMember{}).Where("workspace_id = ?", m.WorkspaceID).Count(&memberCount)
		out = append(out, workspaceToResponse(m.Workspace, m.Role, int(memberCount)))
	}
	response.OK(c, out)
}

// Create creates a new workspace with the caller as OWNER. When invitee ids
// are given, the invitation rows are created in the same transaction; the
// whole creation rolls back if none of the ids resolve to existing users.
// Notification fan-out and invite emails happen after the commit and are
// best-effort.
// @Summary Create a workspace
// @Tags workspaces
// @Accept json
// @Produce json
// @Param request body CreateWorkspaceRequest true "Workspace details"
// @Success 201 {object} WorkspaceResponse
// @Failure 404 {object} response.ErrorBody "No invitee found"
// @Security BearerAuth
// @Router /workspaces [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var workspace models.Workspace
	var invited []models.User

	err := h.db.Transaction(func(tx *gorm.DB) error {
		workspace = models.Workspace{
			OwnerID:     userID,
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Status:      models.EntityStatusActive,
			Categories:  req.Categories,
		}
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}

		owner := models.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      userID,
			Role:        models.WorkspaceRoleOwner,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		if len(req.InviteeIDs) == 0 {
			return nil
		}

		var err error
		_, invited, err = createInvitations(tx, &workspace, userID, req.InviteeIDs)
		return err
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	// Post-commit fan-out: already-committed rows are never rolled back by a
	// failed notification or email.
	if len(invited) > 0 {
		h.fanOutInvites(workspace, userID, invited)
	}

	response.Created(c, workspaceToResponse(workspace, models.WorkspaceRoleOwner, 1))
}

// Get returns a specific workspace
// @Summary Get a workspace
// @Tags workspaces
// @Produce json
// @Param id path int true "Workspace ID"
// @Security BearerAuth
// @Router /workspaces/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleViewer)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	workspace, err := ValidateWorkspaceExists(h.db, workspaceID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	var memberCount int64
	h.db.Model(&models.WorkspaceMember{}).Where("workspace_id = ?", workspaceID).Count(&memberCount)

	response.OK(c, workspaceToResponse(*workspace, member.Role, int(memberCount)))
}

// Update updates a workspace's title/description/categories (ADMIN or above)
// @Summary Update a workspace
// @Tags workspaces
// @Accept json
// @Produce json
// @Param id path int true "Workspace ID"
// @Security BearerAuth
// @Router /workspaces/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := ValidateWorkspacePermission(h.db, workspaceID, userID, models.WorkspaceRoleAdmin)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	workspace, err := ValidateWorkspaceExists(h.db, workspaceID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	if req.Title != "" {
		workspace.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		workspace.Description = *req.Description
	}
	if req.Categories != nil {
		workspace.Categories = *req.Categories
	}

	if err := h.db.Save(workspace).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	var memberCount int64
	h.db.Model(&models.WorkspaceMember{}).Where("workspace_id = ?", workspaceID).Count(&memberCount)

	response.OK(c, workspaceToResponse(*workspace, member.Role, int(memberCount)))
}

// RegisterRoutes registers workspace routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.ChangeStatus)
}

// RegisterMemberRoutes registers member management routes
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/members", h.ListMembers)
	rg.PUT("/:id/members/:userId", h.UpdateMember)
	rg.DELETE("/:id/members/:userId", h.RemoveMember)
}

// RegisterInvitationRoutes registers invitation routes
func (h *Handler) RegisterInvitationRoutes(rg *gin.RouterGroup) {
	rg.GET("/invitations", h.ListMyInvitations)
	rg.POST("/invitations/:id/accept", h.AcceptInvitation)
	rg.POST("/invitations/:id/decline", h.DeclineInvitation)
	rg.GET("/:id/invitations", h.ListWorkspaceInvitations)
	rg.POST("/:id/invitations", h.Invite)
	rg.DELETE("/:id/invitations/:invitationId", h.CancelInvitation)
}
