package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for the marketplace listing and map views
		{"tasks", "idx_tasks_creator_id", "creator_id"},
		{"tasks", "idx_tasks_assignee_id", "assignee_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_created_at", "created_at"},
		{"tasks", "idx_tasks_scheduled_at", "scheduled_at"},

		// Application lookups by task and by worker
		{"applications", "idx_applications_task_id", "task_id"},
		{"applications", "idx_applications_worker_id", "worker_id"},

		// Reputation lookups
		{"ratings", "idx_ratings_target_id", "target_id"},
		{"reports", "idx_reports_worker_id", "worker_id"},

		// Referral code lookup at signup
		{"profiles", "idx_profiles_referral_code", "referral_code"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
