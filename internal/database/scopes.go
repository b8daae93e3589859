package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/task-service/internal/utils"
)

// Paginate applies offset pagination and fetches one extra row so callers can tell
// whether another page follows.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset()).Limit(params.Size + 1)
	}
}
