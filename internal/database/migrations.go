package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/task-service/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by list filters and cascades.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   any
		name    string
		columns string
	}{
		// Task filters
		{&models.Task{}, "idx_tasks_creator_id", "creator_id"},
		{&models.Task{}, "idx_tasks_executor_id", "executor_id"},
		{&models.Task{}, "idx_tasks_status", "status"},
		{&models.Task{}, "idx_tasks_priority", "priority"},

		// Comment lookups
		{&models.Comment{}, "idx_comments_task_id", "task_id"},
		{&models.Comment{}, "idx_comments_owner_id", "owner_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to resolve table for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, stmt.Schema.Table, idx.columns)
	}

	return nil
}
