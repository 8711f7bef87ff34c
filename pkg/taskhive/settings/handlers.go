package settings

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// Handler handles user settings requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new settings handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// UpdateSettingsRequest represents the request to update settings
type UpdateSettingsRequest struct {
	Theme              string `json:"theme" binding:"omitempty,oneof=light dark system"`
	Locale             string `json:"locale" binding:"omitempty,min=2,max=10"`
	EmailNotifications *bool  `json:"email_notifications"`
}

// SettingsResponse represents settings in API responses
type SettingsResponse struct {
	Theme              string `json:"theme"`
	Locale             string `json:"locale"`
	EmailNotifications bool   `json:"email_notifications"`
}

func toResponse(s models.UserSettings) SettingsResponse {
	return SettingsResponse{
		Theme:              s.Theme,
		Locale:             s.Locale,
		EmailNotifications: s.EmailNotifications,
	}
}

// load fetches the caller's settings row, creating defaults for accounts that
// predate the settings table
func (h *Handler) load(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := h.db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	settings = models.UserSettings{UserID: userID, Theme: "system", Locale: "en", EmailNotifications: true}
	if err := h.db.Create(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Get returns the caller's settings
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	settings, err := h.load(userID)
	if err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.OK(c, toResponse(*settings))
}

// Update updates the caller's settings
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	settings, err := h.load(userID)
	if err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	if req.Theme != "" {
		settings.Theme = req.Theme
	}
	if req.Locale != "" {
		settings.Locale = req.Locale
	}
	if req.EmailNotifications != nil {
		settings.EmailNotifications = *req.EmailNotifications
	}

	if err := h.db.Save(settings).Error; err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}
	response.OK(c, toResponse(*settings))
}

// RegisterRoutes registers settings routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.PUT("", h.Update)
}
