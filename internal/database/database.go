package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"valora/server/internal/models"
)

// Open connects to the sqlite database with foreign keys enabled.
func Open(path string, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	log.WithField("path", path).Info("Database opened")
	return db, nil
}

// RunMigrations creates or updates the schema for all persisted models.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.StudyRecord{}, &models.Project{}, &models.Unit{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
