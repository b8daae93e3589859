package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/policy"
	"github.com/yukikurage/task-service/internal/repository"
	"github.com/yukikurage/task-service/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = apierrors.New(apierrors.KindNotFound, "task not found")
	ErrExecutorNotFound  = apierrors.New(apierrors.KindNotFound, "executor not found")
	ErrTaskAccessDenied  = apierrors.New(apierrors.KindAccessDenied, "no access to this task")
	ErrTitleRequired     = apierrors.New(apierrors.KindValidation, "title can't be blank")
	ErrInvalidPriority   = apierrors.New(apierrors.KindValidation, "priority must be one of LOW, MEDIUM, HIGH")
	ErrInvalidStatus     = apierrors.New(apierrors.KindValidation, "status must be one of TODO, IN_PROGRESS, DONE")
	ErrDeadlineNotFuture = apierrors.New(apierrors.KindValidation, "deadline must be in the future")
	ErrExecutorRequired  = apierrors.New(apierrors.KindValidation, "executor id is required")
	ErrInvalidRelation   = apierrors.New(apierrors.KindValidation, "unknown task relation")
)

// TaskService handles task lifecycle business logic
type TaskService struct {
	store repository.Store
	now   func() time.Time
}

// NewTaskService creates a new TaskService. A nil clock defaults to time.Now.
func NewTaskService(store repository.Store, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		store: store,
		now:   now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Deadline    time.Time
	ExecutorID  uint64
}

// UpdateTaskInput represents input for updating a task.
// Every mutable field is overwritten; a nil Status leaves the status unchanged.
type UpdateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Status      *models.TaskStatus
	Deadline    time.Time
	ExecutorID  uint64
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Relation repository.TaskRelation
	// UserID defaults to the requesting principal when nil
	UserID   *uint64
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Page     utils.PaginationParams
}

// TaskSlice is one page of tasks.
type TaskSlice struct {
	Tasks   []models.Task
	Page    int
	Size    int
	HasNext bool
}

// CreateTask creates a task owned by the principal and assigned to the given executor
func (s *TaskService) CreateTask(p models.Principal, input CreateTaskInput) (*models.Task, error) {
	if p.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	title := strings.TrimSpace(input.Title)
	if err := s.validateFields(title, input.Priority, input.Deadline, input.ExecutorID); err != nil {
		return nil, err
	}

	var created *models.Task
	err := s.store.Transaction(func(tx repository.Store) error {
		if err := ensureExecutor(tx, input.ExecutorID); err != nil {
			return err
		}

		task := &models.Task{
			Title:       title,
			Description: input.Description,
			Status:      models.TaskStatusTodo,
			Priority:    input.Priority,
			Deadline:    input.Deadline,
			CreatorID:   p.ID,
			ExecutorID:  input.ExecutorID,
		}
		if err := tx.Tasks().Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		reloaded, err := tx.Tasks().FindByID(task.ID)
		if err != nil {
			return fmt.Errorf("failed to reload task: %w", err)
		}
		created = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateTask overwrites the mutable fields of a task. Only the creator may update.
func (s *TaskService) UpdateTask(p models.Principal, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if err := s.validateFields(title, input.Priority, input.Deadline, input.ExecutorID); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	var updated *models.Task
	err := s.store.Transaction(func(tx repository.Store) error {
		task, err := lockTask(tx, taskID)
		if err != nil {
			return err
		}

		if !policy.CanModifyTask(p, task) {
			return ErrTaskAccessDenied
		}

		if err := ensureExecutor(tx, input.ExecutorID); err != nil {
			return err
		}

		task.Title = title
		task.Description = input.Description
		task.Priority = input.Priority
		task.Deadline = input.Deadline
		task.ExecutorID = input.ExecutorID
		if input.Status != nil {
			task.Status = *input.Status
		}

		if err := tx.Tasks().Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		updated, err = tx.Tasks().FindByID(task.ID)
		if err != nil {
			return fmt.Errorf("failed to reload task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ChangeStatus sets a task's status. Only the executor may change it, to any status.
func (s *TaskService) ChangeStatus(p models.Principal, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var updated *models.Task
	err := s.store.Transaction(func(tx repository.Store) error {
		task, err := lockTask(tx, taskID)
		if err != nil {
			return err
		}

		if !policy.CanChangeTaskStatus(p, task) {
			return ErrTaskAccessDenied
		}

		task.Status = status
		if err := tx.Tasks().Update(task); err != nil {
			return fmt.Errorf("failed to change task status: %w", err)
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTask removes a task and its comments. Only the creator may delete.
// The task as it was before deletion is returned.
func (s *TaskService) DeleteTask(p models.Principal, taskID uint64) (*models.Task, error) {
	var deleted *models.Task
	err := s.store.Transaction(func(tx repository.Store) error {
		task, err := lockTask(tx, taskID)
		if err != nil {
			return err
		}

		if !policy.CanDeleteTask(p, task) {
			return ErrTaskAccessDenied
		}

		if err := tx.Tasks().Delete(task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		deleted = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// GetTask returns a task with creator, executor and comments. Any principal may view any task.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListTasks returns one page of tasks related to a user.
// An explicit user that does not exist is NotFound.
func (s *TaskService) ListTasks(p models.Principal, input ListTasksInput) (*TaskSlice, error) {
	if err := input.Page.Validate(); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	relation := input.Relation
	switch relation {
	case "":
		relation = repository.TaskRelationEither
	case repository.TaskRelationCreator, repository.TaskRelationExecutor, repository.TaskRelationEither:
	default:
		return nil, ErrInvalidRelation
	}

	userID := p.ID
	if input.UserID != nil {
		userID = *input.UserID
		if _, err := s.store.Users().FindByID(userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
	} else if p.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	tasks, err := s.store.Tasks().List(repository.TaskFilter{
		Relation: relation,
		UserID:   userID,
		Status:   input.Status,
		Priority: input.Priority,
		Page:     input.Page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks, hasNext := utils.TrimPage(tasks, input.Page.Size)
	return &TaskSlice{
		Tasks:   tasks,
		Page:    input.Page.Page,
		Size:    input.Page.Size,
		HasNext: hasNext,
	}, nil
}

func (s *TaskService) validateFields(title string, priority models.TaskPriority, deadline time.Time, executorID uint64) error {
	if title == "" {
		return ErrTitleRequired
	}
	if !priority.Valid() {
		return ErrInvalidPriority
	}
	if !deadline.After(s.now()) {
		return ErrDeadlineNotFuture
	}
	if executorID == 0 {
		return ErrExecutorRequired
	}
	return nil
}

// lockTask loads a task for the surrounding transaction and maps a missing row to ErrTaskNotFound.
func lockTask(tx repository.Store, taskID uint64) (*models.Task, error) {
	task, err := tx.Tasks().FindByIDForUpdate(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func ensureExecutor(tx repository.Store, executorID uint64) error {
	if _, err := tx.Users().FindByID(executorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExecutorNotFound
		}
		return fmt.Errorf("failed to find executor: %w", err)
	}
	return nil
}
