package friends

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

	friends := r.Group("/friends")
	friends.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(friends)

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

func TestFriendRequest(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	resp := doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: bob.ID}, getAuthHeader(alice))

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var friend FriendResponse
	decodeData(t, resp, &friend)
	if friend.Status != "PENDING" {
		t.Errorf("Expected PENDING, got %s", friend.Status)
	}

	var notifCount int64
	db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", bob.ID, models.NotificationFriendRequest).Count(&notifCount)
	if notifCount != 1 {
		t.Errorf("Expected 1 notification for bob, got %d", notifCount)
	}
}

func TestFriendRequestSelf(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")

	resp := doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: alice.ID}, getAuthHeader(alice))
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestFriendRequestUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")

	resp := doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: 9999}, getAuthHeader(alice))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestFriendRequestDuplicateReverseDirection(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: bob.ID}, getAuthHeader(alice))

	// The reverse direction counts as a duplicate too
	resp := doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: alice.ID}, getAuthHeader(bob))
	if resp.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.UserFriend{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 friendship row, got %d", count)
	}
}

func TestAcceptFriendRequest(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: bob.ID}, getAuthHeader(alice))

	resp := doJSON(router, "POST", "/friends/1/accept", nil, getAuthHeader(bob))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var friend models.UserFriend
	db.First(&friend, 1)
	if friend.Status != models.FriendStatusAccepted {
		t.Errorf("Expected ACCEPTED, got %s", friend.Status)
	}

	// Requester gets notified of the acceptance
	var notifCount int64
	db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", alice.ID, models.NotificationFriendAccepted).Count(&notifCount)
	if notifCount != 1 {
		t.Errorf("Expected 1 notification for alice, got %d", notifCount)
	}
}

func TestAcceptOnlyByAddressee(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: bob.ID}, getAuthHeader(alice))

	// The requester cannot accept their own request
	resp := doJSON(router, "POST", "/friends/1/accept", nil, getAuthHeader(alice))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestAcceptFriendRequestTwice(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: bob.ID}, getAuthHeader(alice))
	doJSON(router, "POST", "/friends/1/accept", nil, getAuthHeader(bob))

	resp := doJSON(router, "POST", "/friends/1/accept", nil, getAuthHeader(bob))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second accept, got %d", resp.Code)
	}
}

func TestListFriendsBothDirections(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	carol := createTestUser(t, db, "carol@example.com")

	// alice requested bob; carol requested alice
	doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: bob.ID}, getAuthHeader(alice))
	doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: alice.ID}, getAuthHeader(carol))

	resp := doJSON(router, "GET", "/friends", nil, getAuthHeader(alice))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var list []FriendResponse
	decodeData(t, resp, &list)
	if len(list) != 2 {
		t.Errorf("Expected 2 friendships for alice, got %d", len(list))
	}

	resp = doJSON(router, "GET", "/friends", nil, getAuthHeader(bob))
	decodeData(t, resp, &list)
	if len(list) != 1 {
		t.Errorf("Expected 1 friendship for bob, got %d", len(list))
	}
}

func TestRemoveFriend(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: bob.ID}, getAuthHeader(alice))

	// Either side may remove, here the addressee declines the pending request
	resp := doJSON(router, "DELETE", "/friends/1", nil, getAuthHeader(bob))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.UserFriend{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no friendship rows, got %d", count)
	}
}

func TestRemoveFriendNotInvolved(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	carol := createTestUser(t, db, "carol@example.com")

	doJSON(router, "POST", "/friends", RequestFriendRequest{UserID: bob.ID}, getAuthHeader(alice))

	resp := doJSON(router, "DELETE", "/friends/1", nil, getAuthHeader(carol))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
