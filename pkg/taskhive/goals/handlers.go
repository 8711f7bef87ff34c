package goals

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// Handler handles personal goal requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new goals handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateGoalRequest represents the request to create a goal
type CreateGoalRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
}

// UpdateGoalRequest represents the request to update a goal
type UpdateGoalRequest struct {
	Title       string     `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
	Progress    *uint      `json:"progress" binding:"omitempty,max=100"`
}

// GoalResponse represents a goal in API responses
type GoalResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetDate  string `json:"target_date,omitempty"`
	Progress    uint   `json:"progress"`
	Done        bool   `json:"done"`
	CreatedAt   string `json:"created_at"`
}

func goalToResponse(g models.Goal) GoalResponse {
	out := GoalResponse{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Progress:    g.Progress,
		Done:        g.Done,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if g.TargetDate != nil {
		out.TargetDate = g.TargetDate.Format("2006-01-02T15:04:05Z")
	}
	return out
}

// getGoal loads one of the caller's own goals
func (h *Handler) getGoal(c *gin.Context) (*models.Goal, bool) {
	userID, _ := auth.GetUserID(c)
	goalID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid goal ID")
		return nil, false
	}

	var goal models.Goal
	if err := h.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("Goal not found"))
		return nil, false
	}
	return &goal, true
}

// List returns the caller's goals
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var rows []models.Goal
	if err := h.db.Where("user_id = ?", userID).Order("created_at").Find(&rows).Error; err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to fetch goals"))
		return
	}

	out := make([]GoalResponse, len(rows))
	for i, g := range rows {
		out[i] = goalToResponse(g)
	}
	response.OK(c, out)
}

// Create creates a personal goal
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	goal := models.Goal{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TargetDate:  req.TargetDate,
	}
	if err := h.db.Create(&goal).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.Created(c, goalToResponse(goal))
}

// Update updates a goal; progress reaching 100 marks it done
func (h *Handler) Update(c *gin.Context) {
	goal, ok := h.getGoal(c)
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.Title != "" {
		goal.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.TargetDate != nil {
		goal.TargetDate = req.TargetDate
	}
	if req.Progress != nil {
		goal.Progress = *req.Progress
		goal.Done = goal.Progress >= 100
	}

	if err := h.db.Save(goal).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.OK(c, goalToResponse(*goal))
}

// Delete deletes a goal
func (h *Handler) Delete(c *gin.Context) {
	goal, ok := h.getGoal(c)
	if !ok {
		return
	}

	if err := h.db.Delete(goal).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.Message(c, "Goal deleted")
}

// RegisterRoutes registers goal routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
