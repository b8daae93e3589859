package repository

import (
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/utils"
)

// TaskRelation selects which ownership relation a task list filters on.
type TaskRelation string

const (
	TaskRelationCreator  TaskRelation = "creator"
	TaskRelationExecutor TaskRelation = "executor"
	TaskRelationEither   TaskRelation = "either"
)

// TaskFilter holds filtering options for listing tasks.
// Nil Status and Priority mean "no filter".
type TaskFilter struct {
	Relation TaskRelation
	UserID   uint64
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Page     utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// ExistsByEmailOrUsername reports whether either value is already registered
	ExistsByEmailOrUsername(email, username string) (bool, error)

	// Delete removes a user together with every task and comment it owns
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with creator, executor and comments loaded
	FindByID(id uint64) (*models.Task, error)

	// FindByIDForUpdate finds a task by ID and locks its row until the transaction ends
	FindByIDForUpdate(id uint64) (*models.Task, error)

	// Exists reports whether a task with the given ID is stored
	Exists(id uint64) (bool, error)

	// LockByID locks a task row without loading relations
	LockByID(id uint64) error

	// List retrieves one slice of tasks plus one look-ahead row
	List(filter TaskFilter) ([]models.Task, error)

	// Update overwrites the task's columns
	Update(task *models.Task) error

	// Delete removes a task and its comments
	Delete(id uint64) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID with its owner loaded
	FindByID(id uint64) (*models.Comment, error)

	// FindByIDForUpdate finds a comment by ID and locks its row until the transaction ends
	FindByIDForUpdate(id uint64) (*models.Comment, error)

	// ListByTaskID retrieves one slice of a task's comments plus one look-ahead row
	ListByTaskID(taskID uint64, page utils.PaginationParams) ([]models.Comment, error)

	// Update overwrites the comment's columns
	Update(comment *models.Comment) error

	// Delete removes a comment
	Delete(id uint64) error
}

// Store groups the repositories and runs units of work atomically.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	Comments() CommentRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(fn func(tx Store) error) error
}
