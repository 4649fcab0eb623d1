package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/contentflow-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureWorkflowIndexes adds indexes gorm tags cannot express.
func EnsureWorkflowIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_content_request_status_deadline ON content_request(status, deadline);`).Error; err != nil {
		return fmt.Errorf("create idx_content_request_status_deadline: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_notification_user_created ON notification(user_id, created_at DESC);`).Error; err != nil {
		return fmt.Errorf("create idx_notification_user_created: %w", err)
	}
	return nil
}
