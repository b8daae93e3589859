package repository

import (
	"github.com/yukikurage/task-service/internal/database"
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

// Create creates a new comment
func (r *GormCommentRepository) Create(comment *models.Comment) error {
	return r.db.Omit(clause.Associations).Create(comment).Error
}

// FindByID finds a comment by ID
func (r *GormCommentRepository) FindByID(id uint64) (*models.Comment, error) {
	return r.find(r.db, id)
}

// FindByIDForUpdate finds a comment by ID and locks its row for the surrounding transaction
func (r *GormCommentRepository) FindByIDForUpdate(id uint64) (*models.Comment, error) {
	return r.find(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormCommentRepository) find(query *gorm.DB, id uint64) (*models.Comment, error) {
	var comment models.Comment
	if err := query.Preload("Owner").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByTaskID retrieves comments of a task in creation order
func (r *GormCommentRepository) ListByTaskID(taskID uint64, page utils.PaginationParams) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Owner").
		Where("task_id = ?", taskID).
		Order("comments.id ASC").
		Scopes(database.Paginate(page)).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update overwrites a comment's own columns
func (r *GormCommentRepository) Update(comment *models.Comment) error {
	return r.db.Omit(clause.Associations).Save(comment).Error
}

// Delete removes a comment
func (r *GormCommentRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
