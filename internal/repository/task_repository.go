package repository

import (
	"github.com/yukikurage/task-service/internal/database"
	"github.com/yukikurage/task-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with creator, executor and comments loaded
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	return r.find(r.db, id)
}

// FindByIDForUpdate finds a task by ID and locks its row for the surrounding transaction
func (r *GormTaskRepository) FindByIDForUpdate(id uint64) (*models.Task, error) {
	return r.find(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// Exists reports whether a task with the given ID is stored
func (r *GormTaskRepository) Exists(id uint64) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LockByID locks a task row. It returns gorm.ErrRecordNotFound when the task does not exist.
func (r *GormTaskRepository) LockByID(id uint64) error {
	var task models.Task
	return r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&task, id).Error
}

func (r *GormTaskRepository) find(query *gorm.DB, id uint64) (*models.Task, error) {
	var task models.Task
	if err := withTaskRelations(query).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	switch filter.Relation {
	case TaskRelationCreator:
		query = query.Where("tasks.creator_id = ?", filter.UserID)
	case TaskRelationExecutor:
		query = query.Where("tasks.executor_id = ?", filter.UserID)
	default:
		query = query.Where("(tasks.creator_id = ? OR tasks.executor_id = ?)", filter.UserID, filter.UserID)
	}

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	err := withTaskRelations(query).
		Order("tasks.id ASC").
		Scopes(database.Paginate(filter.Page)).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update overwrites a task's own columns. Associations are never written through a task.
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete removes a task and its comments
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

func withTaskRelations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Creator").
		Preload("Executor").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Preload("Comments.Owner")
}
