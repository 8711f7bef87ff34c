package main

import (
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/taskhive/taskhive/pkg/taskhive/admin"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/config"
	"github.com/taskhive/taskhive/pkg/taskhive/database"
	"github.com/taskhive/taskhive/pkg/taskhive/friends"
	"github.com/taskhive/taskhive/pkg/taskhive/goals"
	"github.com/taskhive/taskhive/pkg/taskhive/groups"
	"github.com/taskhive/taskhive/pkg/taskhive/items"
	"github.com/taskhive/taskhive/pkg/taskhive/logging"
	"github.com/taskhive/taskhive/pkg/taskhive/mailer"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/notifications"
	"github.com/taskhive/taskhive/pkg/taskhive/settings"
	"github.com/taskhive/taskhive/pkg/taskhive/workspaces"

	_ "github.com/taskhive/taskhive/api/swagger"
)

// @title Taskhive API
// @version 1.0
// @description Multi-tenant workspace and task management API.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	log := logging.Log

	configPath := os.Getenv("TASKHIVE_CONFIG")
	if configPath == "" {
		configPath = "./etc/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	auth.SetSecret(cfg.JWT.Secret)
	auth.SetTokenTTL(cfg.JWT.TTL)

	if err := database.Connect(cfg.DBPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := database.GetDB()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	if err := ensureAdminExists(); err != nil {
		log.Fatalf("Failed to ensure admin user exists: %v", err)
	}

	mail := mailer.NewSender(cfg)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok", "service": "taskhive"})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		authed := auth.AuthMiddleware()

		// Workspace routes, including members and invitations
		workspacesHandler := workspaces.NewHandler(db, mail, cfg.BaseURL)
		workspacesGroup := api.Group("/workspaces")
		workspacesGroup.Use(authed)
		workspacesHandler.RegisterRoutes(workspacesGroup)
		workspacesHandler.RegisterMemberRoutes(workspacesGroup)
		workspacesHandler.RegisterInvitationRoutes(workspacesGroup)

		// Group routes; the workspace-scoped listing hangs off /workspaces
		groupsHandler := groups.NewHandler(db)
		groupsGroup := api.Group("/groups")
		groupsGroup.Use(authed)
		groupsHandler.RegisterRoutes(groupsGroup)
		groupsHandler.RegisterWorkspaceRoutes(workspacesGroup)

		// Item routes; the group-scoped listing hangs off /groups
		itemsHandler := items.NewHandler(db)
		itemsGroup := api.Group("/items")
		itemsGroup.Use(authed)
		itemsHandler.RegisterRoutes(itemsGroup)
		itemsHandler.RegisterGroupRoutes(groupsGroup)

		// Notification routes
		notificationsHandler := notifications.NewHandler(db)
		notificationsHandler.RegisterRoutes(api.Group("/notifications", authed))

		// Friend routes
		friendsHandler := friends.NewHandler(db)
		friendsHandler.RegisterRoutes(api.Group("/friends", authed))

		// Goal routes
		goalsHandler := goals.NewHandler(db)
		goalsHandler.RegisterRoutes(api.Group("/goals", authed))

		// Settings routes
		settingsHandler := settings.NewHandler(db)
		settingsHandler.RegisterRoutes(api.Group("/settings", authed))

		// Admin routes (system admins only)
		adminHandler := admin.NewHandler(db)
		adminHandler.RegisterRoutes(api.Group("/admin", authed, auth.RequireAdmin()))
	}

	log.Infof("Starting taskhive server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists creates a default admin user if no admin exists in the
// database, along with the admin's default settings row.
func ensureAdminExists() error {
	db := database.GetDB()

	var count int64
	if err := db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	adminUser := models.User{
		Email:        "admin@taskhive.local",
		Name:         "Admin",
		PasswordHash: hashedPassword,
		SystemRole:   models.SystemRoleAdmin,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	adminSettings := models.UserSettings{UserID: adminUser.ID}
	if err := db.Create(&adminSettings).Error; err != nil {
		return err
	}

	logging.Log.Info("Created default admin user: admin@taskhive.local (password: changeme)")
	return nil
}
