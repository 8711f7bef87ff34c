package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: User and Workspace must be migrated before the tables that reference them
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserSettings{},
		&Workspace{},
		&WorkspaceMember{},
		&WorkspaceInvitation{},
		&Group{},
		&Item{},
		&Notification{},
		&UserFriend{},
		&Goal{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
