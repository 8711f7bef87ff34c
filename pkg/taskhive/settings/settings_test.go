package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	settings := r.Group("/settings")
	settings.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(settings)

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		SystemRole:   models.SystemRoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Email, string(user.SystemRole))
	return "Bearer " + token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    int             `json:"code"`
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	var env envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v: %s", err, resp.Body.String())
	}
	if !env.Success {
		t.Fatalf("Expected success envelope, got: %s", resp.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
}

func doJSON(router *gin.Engine, method, path string, body any, authHeader string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGetSettingsCreatesDefaults(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	// User created without a settings row, as accounts predating the table
	user := createTestUser(t, db, "user@example.com")

	resp := doJSON(router, "GET", "/settings", nil, getAuthHeader(user))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var settings SettingsResponse
	decodeData(t, resp, &settings)
	if settings.Theme != "system" {
		t.Errorf("Expected default theme system, got %s", settings.Theme)
	}
	if settings.Locale != "en" {
		t.Errorf("Expected default locale en, got %s", settings.Locale)
	}
	if !settings.EmailNotifications {
		t.Error("Expected email notifications on by default")
	}

	var count int64
	db.Model(&models.UserSettings{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected defaults persisted, got %d rows", count)
	}
}

func TestUpdateSettings(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "user@example.com")

	off := false
	resp := doJSON(router, "PUT", "/settings", UpdateSettingsRequest{
		Theme:              "dark",
		Locale:             "pt-BR",
		EmailNotifications: &off,
	}, getAuthHeader(user))

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var settings models.UserSettings
	db.Where("user_id = ?", user.ID).First(&settings)
	if settings.Theme != "dark" {
		t.Errorf("Expected theme dark, got %s", settings.Theme)
	}
	if settings.Locale != "pt-BR" {
		t.Errorf("Expected locale pt-BR, got %s", settings.Locale)
	}
	if settings.EmailNotifications {
		t.Error("Expected email notifications off")
	}
}

func TestUpdateSettingsInvalidTheme(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "user@example.com")

	resp := doJSON(router, "PUT", "/settings", UpdateSettingsRequest{Theme: "neon"}, getAuthHeader(user))
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestUpdateSettingsPartial(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "user@example.com")
	db.Create(&models.UserSettings{UserID: user.ID, Theme: "dark", Locale: "en", EmailNotifications: true})

	// Omitted fields keep their current values
	resp := doJSON(router, "PUT", "/settings", UpdateSettingsRequest{Locale: "fr"}, getAuthHeader(user))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var settings models.UserSettings
	db.Where("user_id = ?", user.ID).First(&settings)
	if settings.Theme != "dark" {
		t.Errorf("Expected theme unchanged, got %s", settings.Theme)
	}
	if settings.Locale != "fr" {
		t.Errorf("Expected locale fr, got %s", settings.Locale)
	}
	if !settings.EmailNotifications {
		t.Error("Expected email notifications unchanged")
	}
}
