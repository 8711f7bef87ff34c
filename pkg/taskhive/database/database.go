package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

// Open opens a database connection and returns it. Callers own the instance;
// tests open their own in-memory databases and never touch the shared one.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
}

// Connect initializes the shared database connection used by the server.
func Connect(dsn string) error {
	var err error
	db, err = Open(dsn)
	return err
}

// GetDB returns the shared database instance.
func GetDB() *gorm.DB {
	return db
}
