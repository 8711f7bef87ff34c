package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/response"
	"gorm.io/gorm"
)

// Handler handles authentication requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	SystemRole string `json:"system_role"`
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account with default settings and receive a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} response.ErrorBody "Validation error"
// @Failure 409 {object} response.ErrorBody "Email already registered"
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Check if email already exists
	var existingUser models.User
	if err := h.db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		response.HandleError(c, apperrors.NewDuplicate("Email already registered"))
		return
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to process password"))
		return
	}

	// Create user and default settings in a transaction
	user := models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		SystemRole:   models.SystemRoleUser,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		settings := models.UserSettings{UserID: user.ID}
		return tx.Create(&settings).Error
	})
	if err != nil {
		response.HandleError(c, apperrors.FromORM(err))
		return
	}

	token, err := GenerateToken(user.ID, user.Email, string(user.SystemRole))
	if err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to generate token"))
		return
	}

	response.Created(c, AuthResponse{
		Token: token,
		User: UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			SystemRole: string(user.SystemRole),
		},
	})
}

// Login handles user login
// @Summary Login
// @Description Authenticate with email and password to receive a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} response.ErrorBody "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		response.HandleError(c, apperrors.NewAuthentication("Invalid email or password"))
		return
	}

	if !user.Active {
		response.HandleError(c, apperrors.NewAuthentication("Account is deactivated"))
		return
	}

	if !CheckPassword(req.Password, user.PasswordHash) {
		response.HandleError(c, apperrors.NewAuthentication("Invalid email or password"))
		return
	}

	token, err := GenerateToken(user.ID, user.Email, string(user.SystemRole))
	if err != nil {
		response.HandleError(c, apperrors.NewInternal("Failed to generate token"))
		return
	}

	response.OK(c, AuthResponse{
		Token: token,
		User: UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			SystemRole: string(user.SystemRole),
		},
	})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, exists := GetUserID(c)
	if !exists {
		response.HandleError(c, apperrors.NewAuthentication("Authentication required"))
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		response.HandleError(c, apperrors.NewNotFound("User not found"))
		return
	}

	response.OK(c, UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		SystemRole: string(user.SystemRole),
	})
}

// Logout handles user logout (client-side token invalidation)
// @Summary Logout
// @Description Logout the current user (client-side token invalidation)
// @Tags auth
// @Produce json
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	response.Message(c, "Logged out successfully")
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", AuthMiddleware(), h.Me)
}
