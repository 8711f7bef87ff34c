package groups

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

	groups := r.Group("/groups")
	groups.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(groups)

	workspaces := r.Group("/workspaces")
	workspaces.Use(auth.AuthMiddleware())
	handler.RegisterWorkspaceRoutes(workspaces)

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

func createTestWorkspace(t *testing.T, db *gorm.DB, owner models.User) models.Workspace {
	workspace := models.Workspace{
		OwnerID: owner.ID,
		Title:   "Test Workspace",
		Status:  models.EntityStatusActive,
	}
	if err := db.Create(&workspace).Error; err != nil {
		t.Fatalf("Failed to create test workspace: %v", err)
	}
	member := models.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      owner.ID,
		Role:        models.WorkspaceRoleOwner,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("Failed to create owner membership: %v", err)
	}
	return workspace
}

func addMember(t *testing.T, db *gorm.DB, workspace models.Workspace, user models.User, role models.WorkspaceRole) {
	member := models.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      user.ID,
		Role:        role,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("Failed to create membership: %v", err)
	}
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

func TestCreateGroup(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)

	resp := doJSON(router, "POST", "/groups", CreateGroupRequest{WorkspaceID: workspace.ID, Name: "Backlog"}, getAuthHeader(owner))

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var group GroupResponse
	decodeData(t, resp, &group)
	if group.Name != "Backlog" {
		t.Errorf("Expected name Backlog, got %s", group.Name)
	}
	if group.Status != "ACTIVE" {
		t.Errorf("Expected status ACTIVE, got %s", group.Status)
	}
}

func TestCreateGroupRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	member := createTestUser(t, db, "member@example.com")
	workspace := createTestWorkspace(t, db, owner)
	addMember(t, db, workspace, member, models.WorkspaceRoleMember)

	resp := doJSON(router, "POST", "/groups", CreateGroupRequest{WorkspaceID: workspace.ID, Name: "Backlog"}, getAuthHeader(member))

	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}

	var count int64
	db.Model(&models.Group{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no group rows, got %d", count)
	}
}

func TestCreateGroupInactiveWorkspace(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)
	db.Model(&models.Workspace{}).Where("id = ?", workspace.ID).Update("status", models.EntityStatusArchived)

	resp := doJSON(router, "POST", "/groups", CreateGroupRequest{WorkspaceID: workspace.ID, Name: "Backlog"}, getAuthHeader(owner))

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListGroups(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	workspace := createTestWorkspace(t, db, owner)

	db.Create(&models.Group{WorkspaceID: workspace.ID, Name: "Backlog", Status: models.EntityStatusActive})
	db.Create(&models.Group{WorkspaceID: workspace.ID, Name: "Sprint", Status: models.EntityStatusActive})

	resp := doJSON(router, "GET", "/workspaces/1/groups", nil, getAuthHeader(owner))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var list []GroupResponse
	decodeData(t, resp, &list)
	if len(list) != 2 {
		t.Errorf("Expected 2 groups, got %d", len(list))
	}

	resp = doJSON(router, "GET", "/workspaces/1/groups", nil, getAuthHeader(outsider))
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for non-member, got %d", resp.Code)
	}
}

func TestUpdateGroup(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)
	db.Create(&models.Group{WorkspaceID: workspace.ID, Name: "Backlog", Status: models.EntityStatusActive})

	resp := doJSON(router, "PUT", "/groups/1", UpdateGroupRequest{Name: "Icebox"}, getAuthHeader(owner))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var group models.Group
	db.First(&group, 1)
	if group.Name != "Icebox" {
		t.Errorf("Expected name Icebox, got %s", group.Name)
	}
}

func TestChangeGroupStatusCascadesToItems(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)

	group := models.Group{WorkspaceID: workspace.ID, Name: "Backlog", Status: models.EntityStatusActive}
	db.Create(&group)
	other := models.Group{WorkspaceID: workspace.ID, Name: "Sprint", Status: models.EntityStatusActive}
	db.Create(&other)
	db.Create(&models.Item{GroupID: group.ID, Title: "Task 1", EntityStatus: models.EntityStatusActive})
	db.Create(&models.Item{GroupID: other.ID, Title: "Task 2", EntityStatus: models.EntityStatusActive})

	resp := doJSON(router, "PATCH", "/groups/1/status", ChangeStatusRequest{Status: "ARCHIVED"}, getAuthHeader(owner))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var items []models.Item
	db.Where("group_id = ?", group.ID).Find(&items)
	for _, item := range items {
		if item.EntityStatus != models.EntityStatusArchived {
			t.Errorf("Expected item %d ARCHIVED, got %s", item.ID, item.EntityStatus)
		}
	}

	// Sibling group and its items are untouched
	var sibling models.Group
	db.First(&sibling, other.ID)
	if sibling.Status != models.EntityStatusActive {
		t.Errorf("Expected sibling group ACTIVE, got %s", sibling.Status)
	}
	var siblingItem models.Item
	db.Where("group_id = ?", other.ID).First(&siblingItem)
	if siblingItem.EntityStatus != models.EntityStatusActive {
		t.Errorf("Expected sibling item ACTIVE, got %s", siblingItem.EntityStatus)
	}

	// Workspace status never changes from a group cascade
	var ws models.Workspace
	db.First(&ws, workspace.ID)
	if ws.Status != models.EntityStatusActive {
		t.Errorf("Expected workspace ACTIVE, got %s", ws.Status)
	}
}

func TestChangeGroupStatusSameStatus(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)
	db.Create(&models.Group{WorkspaceID: workspace.ID, Name: "Backlog", Status: models.EntityStatusActive})

	resp := doJSON(router, "PATCH", "/groups/1/status", ChangeStatusRequest{Status: "ACTIVE"}, getAuthHeader(owner))
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestChangeGroupStatusRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	member := createTestUser(t, db, "member@example.com")
	workspace := createTestWorkspace(t, db, owner)
	addMember(t, db, workspace, member, models.WorkspaceRoleMember)
	db.Create(&models.Group{WorkspaceID: workspace.ID, Name: "Backlog", Status: models.EntityStatusActive})

	resp := doJSON(router, "PATCH", "/groups/1/status", ChangeStatusRequest{Status: "ARCHIVED"}, getAuthHeader(member))
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}

	var group models.Group
	db.First(&group, 1)
	if group.Status != models.EntityStatusActive {
		t.Errorf("Expected group unchanged, got %s", group.Status)
	}
}

func TestGetGroupNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "user@example.com")

	resp := doJSON(router, "GET", "/groups/999", nil, getAuthHeader(user))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
