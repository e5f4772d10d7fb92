package db

import (
	"aura_oracle/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		logrus.WithField("error", err.Error()).Error("migration failed")
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
