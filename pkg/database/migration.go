package database

import (
	"fmt"

	"github.com/streamhub/accounts/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate keeps the schema in sync with the model definitions.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
