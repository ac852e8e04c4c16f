package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/models"
)

// indexes are composite indexes that gorm tags cannot express.
// Each statement must be valid for both SQLite and PostgreSQL.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver_unread ON messages (receiver_id, is_read)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_featured ON properties (is_featured, status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_inquiries_status_date ON inquiries (status, request_date)`,
}

// migrate creates or updates the tables for every model, then adds indexes.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	for i, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}

	return nil
}
